package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
)

func newBookingService(db *gorm.DB) *BookingService {
	svc := NewBookingService(
		repository.NewGormCarWashRepository(db),
		repository.NewGormServiceRepository(db),
		repository.NewGormAppointmentRepository(db),
		nil,
		SlotOptions{OpenHour: 9, CloseHour: 21, StepMin: 60, MaxSlots: 10, Loc: time.UTC},
	)
	svc.now = fixedNow
	return svc
}

func TestAvailableSlots_SkipsBookedHour(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Занимаем 10:00-11:00.
	if _, err := svc.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, day.Add(10*time.Hour)); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	starts, err := svc.AvailableSlots(ctx, f.washID, f.serviceID, day)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(starts) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(starts))
	}

	seen := map[string]bool{}
	for _, s := range starts {
		seen[s.Format("15:04")] = true
	}
	if seen["10:00"] {
		t.Fatalf("10:00 is booked, must not be offered")
	}
	if !seen["09:00"] || !seen["11:00"] {
		t.Fatalf("adjacent slots must stay free: %v", seen)
	}
}

func TestAvailableSlots_PastDayEmpty(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)

	yesterday := fixedNow().AddDate(0, 0, -1)
	starts, err := svc.AvailableSlots(context.Background(), f.washID, f.serviceID, yesterday)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("past day must have no slots, got %d", len(starts))
	}
}

func TestAvailableSlots_UnknownOrForeignServiceEmpty(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	starts, err := svc.AvailableSlots(ctx, f.washID, uuid.New(), day)
	if err != nil {
		t.Fatalf("AvailableSlots unknown: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("unknown service must yield no slots")
	}

	// Услуга чужой мойки.
	otherWash := uuid.New()
	if err := db.Create(&model.CarWash{ID: otherWash, Name: "other"}).Error; err != nil {
		t.Fatalf("seed other wash: %v", err)
	}
	starts, err = svc.AvailableSlots(ctx, otherWash, f.serviceID, day)
	if err != nil {
		t.Fatalf("AvailableSlots foreign: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("foreign service must yield no slots")
	}
}

func TestAvailableSlots_ClosedDay(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)

	hours := datatypes.JSON(`{"mon": "closed"}`)
	if err := db.Model(&model.CarWash{}).Where("id = ?", f.washID).Update("working_hours", hours).Error; err != nil {
		t.Fatalf("set working hours: %v", err)
	}

	// 2 марта 2026 — понедельник.
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	starts, err := svc.AvailableSlots(context.Background(), f.washID, f.serviceID, day)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("closed day must have no slots, got %d", len(starts))
	}
}

func TestCreateBooking_ConcurrentAttemptsOneWinner(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)
	ctx := context.Background()

	// Одно соединение: каждое новое соединение к sqlite :memory: видит
	// свою пустую базу, а не общую схему.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	second := uuid.New()
	if err := db.Create(&model.User{ID: second, TelegramID: 300003, CarWashID: f.washID, Role: model.UserRoleClient}).Error; err != nil {
		t.Fatalf("seed second client: %v", err)
	}

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// Оба клиента видели слот свободным и подтверждают одновременно.
	users := []uuid.UUID{f.clientID, second}
	results := make([]error, len(users))
	var wg sync.WaitGroup
	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			_, results[i] = svc.CreateBooking(ctx, userID, f.washID, f.serviceID, start)
		}(i, userID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, repository.ErrSlotTaken):
			lost++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected exactly one winner and one ErrSlotTaken, got won=%d lost=%d", won, lost)
	}

	// В календаре ровно одна запись на интервал.
	var n int64
	if err := db.Model(&model.Appointment{}).
		Where("car_wash_id = ? AND starts_at = ?", f.washID, start).
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single appointment for the slot, got %d", n)
	}
}

func TestCreateBooking_SnapshotsDuration(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appt, err := svc.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, start)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if !appt.EndsAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("ends_at must be start+duration, got %s", appt.EndsAt)
	}
	if appt.Status != model.AppointmentStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", appt.Status)
	}

	// Правка тарифа не двигает уже созданную запись.
	if err := db.Model(&model.Service{}).Where("id = ?", f.serviceID).Update("duration_min", 120).Error; err != nil {
		t.Fatalf("update service: %v", err)
	}
	got, err := repository.NewGormAppointmentRepository(db).GetByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.EndsAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("interval must stay snapshotted, got %s", got.EndsAt)
	}
}

func TestCreateBooking_InactiveService(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)
	ctx := context.Background()

	if err := db.Model(&model.Service{}).Where("id = ?", f.serviceID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate service: %v", err)
	}

	_, err := svc.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inactive service, got %v", err)
	}
}

func TestCompleteAppointment_WrongWash(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)
	ctx := context.Background()

	appt, err := svc.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	err = svc.CompleteAppointment(ctx, appt.ID, uuid.New())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign wash must not complete, got %v", err)
	}

	if err := svc.CompleteAppointment(ctx, appt.ID, f.washID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	err = svc.CompleteAppointment(ctx, appt.ID, f.washID)
	if !errors.Is(err, repository.ErrAlreadyProcessed) {
		t.Fatalf("double complete must fail, got %v", err)
	}
}

func TestCancelAppointment_OnlyOwner(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := newBookingService(db)
	ctx := context.Background()

	appt, err := svc.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	err = svc.CancelAppointment(ctx, appt.ID, uuid.New())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("stranger must not cancel, got %v", err)
	}
	if err := svc.CancelAppointment(ctx, appt.ID, f.clientID); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}

	// Слот освободился.
	if _, err := svc.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, appt.StartsAt); err != nil {
		t.Fatalf("slot must be free after cancel: %v", err)
	}
}
