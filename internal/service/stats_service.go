package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washhub/carwash-platform/internal/repository"
	"github.com/washhub/carwash-platform/internal/schedule"
)

// Dashboard — сводка владельца по мойке.
type Dashboard struct {
	RevenueToday decimal.Decimal `json:"revenue_today"`
	RevenueWeek  decimal.Decimal `json:"revenue_week"`
	RevenueMonth decimal.Decimal `json:"revenue_month"`

	AppointmentsToday int64 `json:"appointments_today"`
	Clients           int64 `json:"clients"`
	PendingPayments   int64 `json:"pending_payments"`
}

// WasherStats — личная статистика мойщика.
type WasherStats struct {
	CompletedToday int64 `json:"completed_today"`
	CompletedWeek  int64 `json:"completed_week"`
}

type StatsService struct {
	appointments repository.AppointmentRepository
	txns         repository.TransactionRepository
	users        repository.UserRepository
	loc          *time.Location

	now func() time.Time
}

func NewStatsService(
	appointments repository.AppointmentRepository,
	txns repository.TransactionRepository,
	users repository.UserRepository,
	loc *time.Location,
) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{
		appointments: appointments,
		txns:         txns,
		users:        users,
		loc:          loc,
		now:          time.Now,
	}
}

// Dashboard собирает выручку и счётчики мойки.
func (s *StatsService) Dashboard(ctx context.Context, carWashID uuid.UUID) (*Dashboard, error) {
	now := s.now().In(s.loc)
	todayStart := schedule.DateOnly(now, s.loc)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	var (
		d   Dashboard
		err error
	)
	if d.RevenueToday, err = s.appointments.RevenueCompletedSince(ctx, carWashID, todayStart); err != nil {
		return nil, err
	}
	if d.RevenueWeek, err = s.appointments.RevenueCompletedSince(ctx, carWashID, weekAgo); err != nil {
		return nil, err
	}
	if d.RevenueMonth, err = s.appointments.RevenueCompletedSince(ctx, carWashID, monthAgo); err != nil {
		return nil, err
	}
	if d.AppointmentsToday, err = s.appointments.CountForDay(ctx, carWashID, now); err != nil {
		return nil, err
	}
	if d.Clients, err = s.users.CountClients(ctx, carWashID); err != nil {
		return nil, err
	}
	if d.PendingPayments, err = s.txns.CountPending(ctx, carWashID); err != nil {
		return nil, err
	}
	return &d, nil
}

// WasherStats — выполнено за сегодня и за неделю.
func (s *StatsService) WasherStats(ctx context.Context, carWashID uuid.UUID) (*WasherStats, error) {
	now := s.now().In(s.loc)
	todayStart := schedule.DateOnly(now, s.loc)
	weekAgo := now.AddDate(0, 0, -7)

	var (
		st  WasherStats
		err error
	)
	if st.CompletedToday, err = s.appointments.CountCompletedSince(ctx, carWashID, todayStart); err != nil {
		return nil, err
	}
	if st.CompletedWeek, err = s.appointments.CountCompletedSince(ctx, carWashID, weekAgo); err != nil {
		return nil, err
	}
	return &st, nil
}
