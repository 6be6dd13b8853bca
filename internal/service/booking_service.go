package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/washhub/carwash-platform/internal/events"
	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
	"github.com/washhub/carwash-platform/internal/schedule"
)

// SlotOptions — окно записи по умолчанию. Мойка может переопределить график
// рабочими часами, а шаг сетки — полем slot_duration_min.
type SlotOptions struct {
	OpenHour  int
	CloseHour int
	StepMin   int
	MaxSlots  int
	Loc       *time.Location
}

// BookingService — выдача свободных слотов и создание записей.
type BookingService struct {
	washes       repository.CarWashRepository
	services     repository.ServiceRepository
	appointments repository.AppointmentRepository
	pub          *events.Publisher
	opts         SlotOptions

	now func() time.Time
}

func NewBookingService(
	washes repository.CarWashRepository,
	services repository.ServiceRepository,
	appointments repository.AppointmentRepository,
	pub *events.Publisher,
	opts SlotOptions,
) *BookingService {
	if opts.Loc == nil {
		opts.Loc = time.UTC
	}
	return &BookingService{
		washes:       washes,
		services:     services,
		appointments: appointments,
		pub:          pub,
		opts:         opts,
		now:          time.Now,
	}
}

// Today — текущие сутки в таймзоне мойки.
func (s *BookingService) Today() time.Time {
	return s.now().In(s.opts.Loc)
}

// ListActiveServices возвращает активные тарифы мойки.
func (s *BookingService) ListActiveServices(ctx context.Context, carWashID uuid.UUID) ([]model.Service, error) {
	return s.services.List(ctx, carWashID, true)
}

// AvailableSlots перечисляет свободные времена начала на дату day.
// Неактивная/чужая услуга или дата в прошлом — пустой список, решает вызывающий,
// как это показать.
func (s *BookingService) AvailableSlots(ctx context.Context, carWashID, serviceID uuid.UUID, day time.Time) ([]time.Time, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []time.Time{}, nil
		}
		return nil, err
	}
	if !svc.IsActive || svc.CarWashID != carWashID {
		return []time.Time{}, nil
	}

	wash, err := s.washes.GetByID(ctx, carWashID)
	if err != nil {
		return nil, err
	}

	loc := s.opts.Loc
	if schedule.DateOnly(day, loc).Before(schedule.DateOnly(s.now(), loc)) {
		return []time.Time{}, nil
	}

	window, open, err := s.dayWindow(wash, day)
	if err != nil {
		return nil, err
	}
	if !open {
		return []time.Time{}, nil
	}

	busy, err := s.busyRanges(ctx, carWashID, day.In(loc))
	if err != nil {
		return nil, err
	}

	stepMin := wash.SlotDurationMin
	if stepMin <= 0 {
		stepMin = s.opts.StepMin
	}

	free, err := schedule.FreeSlots(
		window,
		time.Duration(stepMin)*time.Minute,
		time.Duration(svc.DurationMin)*time.Minute,
		busy,
		s.opts.MaxSlots,
	)
	if err != nil {
		return nil, err
	}

	starts := make([]time.Time, 0, len(free))
	for _, tr := range free {
		starts = append(starts, tr.Start)
	}
	return starts, nil
}

// CreateBooking перепроверяет занятость интервала и создаёт подтверждённую
// запись в одной БД-транзакции. Слот, занятый между выдачей списка и
// подтверждением, даёт repository.ErrSlotTaken — клиент выбирает заново.
func (s *BookingService) CreateBooking(ctx context.Context, userID, carWashID, serviceID uuid.UUID, startsAt time.Time) (*model.Appointment, error) {
	if startsAt.IsZero() {
		return nil, invalidf("start time is required")
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	// Услуга должна принадлежать мойке вызывающего.
	if svc.CarWashID != carWashID {
		return nil, repository.ErrNotFound
	}
	if !svc.IsActive {
		return nil, invalidf("service is not active")
	}

	// Длительность фиксируется на момент записи.
	appt := &model.Appointment{
		UserID:    userID,
		ServiceID: serviceID,
		CarWashID: carWashID,
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(time.Duration(svc.DurationMin) * time.Minute),
		Status:    model.AppointmentStatusConfirmed,
	}
	if err := s.appointments.CreateIfFree(ctx, appt); err != nil {
		return nil, err
	}

	log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("car_wash_id", carWashID.String()).
		Time("starts_at", appt.StartsAt).
		Msg("booking created")

	_ = s.pub.PublishJSON(ctx, events.KeyBookingCreated, map[string]any{
		"appointment_id": appt.ID.String(),
		"user_id":        userID.String(),
		"car_wash_id":    carWashID.String(),
		"starts_at":      appt.StartsAt.Unix(),
		"ends_at":        appt.EndsAt.Unix(),
	})
	return appt, nil
}

// ListUserAppointments — записи пользователя, свежие первыми.
func (s *BookingService) ListUserAppointments(ctx context.Context, userID uuid.UUID, limit int) ([]model.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID, limit)
}

// ListDay — активные записи мойки за сутки (админ/мойщик).
func (s *BookingService) ListDay(ctx context.Context, carWashID uuid.UUID, day time.Time) ([]model.Appointment, error) {
	return s.appointments.ListForDay(ctx, carWashID, day.In(s.opts.Loc), model.ActiveAppointmentStatuses)
}

// CompleteAppointment отмечает запись выполненной (поток мойщика).
// Повторная отметка — repository.ErrAlreadyProcessed.
func (s *BookingService) CompleteAppointment(ctx context.Context, apptID, carWashID uuid.UUID) error {
	appt, err := s.appointments.GetByID(ctx, apptID)
	if err != nil {
		return err
	}
	if appt.CarWashID != carWashID {
		return repository.ErrNotFound
	}

	now := s.now()
	err = s.appointments.UpdateStatus(ctx, apptID,
		model.ActiveAppointmentStatuses,
		model.AppointmentStatusCompleted, &now)
	if err != nil {
		return err
	}

	_ = s.pub.PublishJSON(ctx, events.KeyAppointmentCompleted, map[string]any{
		"appointment_id": apptID.String(),
		"car_wash_id":    carWashID.String(),
	})
	return nil
}

// CancelAppointment отменяет запись её владельцем.
func (s *BookingService) CancelAppointment(ctx context.Context, apptID, userID uuid.UUID) error {
	appt, err := s.appointments.GetByID(ctx, apptID)
	if err != nil {
		return err
	}
	if appt.UserID != userID {
		return repository.ErrNotFound
	}

	err = s.appointments.UpdateStatus(ctx, apptID,
		model.ActiveAppointmentStatuses,
		model.AppointmentStatusCancelled, nil)
	if err != nil {
		return err
	}

	_ = s.pub.PublishJSON(ctx, events.KeyBookingCancelled, map[string]any{
		"appointment_id": apptID.String(),
	})
	return nil
}

func (s *BookingService) dayWindow(wash *model.CarWash, day time.Time) (schedule.TimeRange, bool, error) {
	var hours schedule.WorkingHours
	if len(wash.WorkingHours) > 0 {
		if err := json.Unmarshal(wash.WorkingHours, &hours); err != nil {
			return schedule.TimeRange{}, false, fmt.Errorf("working hours of %s: %w", wash.ID, err)
		}
	}
	return hours.WindowFor(day, s.opts.OpenHour, s.opts.CloseHour, s.opts.Loc)
}

func (s *BookingService) busyRanges(ctx context.Context, carWashID uuid.UUID, day time.Time) ([]schedule.TimeRange, error) {
	appts, err := s.appointments.ListForDay(ctx, carWashID, day, model.ActiveAppointmentStatuses)
	if err != nil {
		return nil, err
	}
	busy := make([]schedule.TimeRange, 0, len(appts))
	for _, a := range appts {
		busy = append(busy, schedule.TimeRange{Start: a.StartsAt, End: a.EndsAt})
	}
	return busy, nil
}
