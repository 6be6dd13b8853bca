package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
)

func TestDashboard(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)

	booking := newBookingService(db)
	payments := newPaymentService(db)
	stats := NewStatsService(
		repository.NewGormAppointmentRepository(db),
		repository.NewGormTransactionRepository(db),
		repository.NewGormUserRepository(db),
		time.UTC,
	)
	stats.now = fixedNow
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Две записи на сегодня, одна выполнена.
	done, err := booking.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, day.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := booking.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, day.Add(12*time.Hour)); err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := booking.CompleteAppointment(ctx, done.ID, f.washID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Необработанный платёж.
	if _, err := payments.CreateTransaction(ctx, f.clientID, f.washID, decimal.NewFromInt(100), model.TransactionKindBalanceTopup, nil); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	d, err := stats.Dashboard(ctx, f.washID)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !d.RevenueToday.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected revenue today 500, got %s", d.RevenueToday)
	}
	if !d.RevenueWeek.Equal(d.RevenueToday) || !d.RevenueMonth.Equal(d.RevenueToday) {
		t.Fatalf("week/month revenue must include today: %+v", d)
	}
	if d.AppointmentsToday != 2 {
		t.Fatalf("expected 2 appointments today, got %d", d.AppointmentsToday)
	}
	if d.Clients != 1 {
		t.Fatalf("expected 1 client, got %d", d.Clients)
	}
	if d.PendingPayments != 1 {
		t.Fatalf("expected 1 pending payment, got %d", d.PendingPayments)
	}
}

func TestWasherStats(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)

	booking := newBookingService(db)
	stats := NewStatsService(
		repository.NewGormAppointmentRepository(db),
		repository.NewGormTransactionRepository(db),
		repository.NewGormUserRepository(db),
		time.UTC,
	)
	stats.now = fixedNow
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	appt, err := booking.CreateBooking(ctx, f.clientID, f.washID, f.serviceID, day.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := booking.CompleteAppointment(ctx, appt.ID, f.washID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	st, err := stats.WasherStats(ctx, f.washID)
	if err != nil {
		t.Fatalf("WasherStats: %v", err)
	}
	if st.CompletedWeek != 1 {
		t.Fatalf("expected 1 completed this week, got %d", st.CompletedWeek)
	}
}
