package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/washhub/carwash-platform/internal/model"
)

type AppointmentRepository interface {
	// CreateIfFree атомарно перепроверяет занятость интервала и создаёт
	// запись. При пересечении с активной записью возвращает ErrSlotTaken,
	// ничего не записывая.
	CreateIfFree(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// Записи мойки за сутки day в указанных статусах, по времени начала.
	ListForDay(ctx context.Context, carWashID uuid.UUID, day time.Time, statuses []model.AppointmentStatus) ([]model.Appointment, error)
	// Записи пользователя, свежие первыми.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Appointment, error)
	// UpdateStatus переводит запись из одного из статусов from в to.
	// Из другого состояния — ErrAlreadyProcessed: статусы не откатываются.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus, completedAt *time.Time) error
	CountCompletedSince(ctx context.Context, carWashID uuid.UUID, since time.Time) (int64, error)
	CountForDay(ctx context.Context, carWashID uuid.UUID, day time.Time) (int64, error)
	// Выручка по завершённым записям с момента since (сумма цен услуг).
	RevenueCompletedSince(ctx context.Context, carWashID uuid.UUID, since time.Time) (decimal.Decimal, error)
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// forUpdate навешивает блокировку строк там, где диалект её поддерживает.
// sqlite (тесты) сериализует записи сам, FOR UPDATE он не знает.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *GormAppointmentRepository) CreateIfFree(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Блокируем потенциально конфликтующие строки и перепроверяем
		// пересечение по полуоткрытым интервалам.
		var existing model.Appointment
		err := forUpdate(tx.Model(&model.Appointment{})).
			Where("car_wash_id = ? AND status IN ?", appt.CarWashID, model.ActiveAppointmentStatuses).
			Where("starts_at < ? AND ends_at > ?", appt.EndsAt, appt.StartsAt).
			Take(&existing).Error

		if err == nil {
			return ErrSlotTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if appt.ID == uuid.Nil {
			appt.ID = uuid.New()
		}
		return tx.Create(appt).Error
	})
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *GormAppointmentRepository) ListForDay(
	ctx context.Context,
	carWashID uuid.UUID,
	day time.Time,
	statuses []model.AppointmentStatus,
) ([]model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	q := r.db.WithContext(ctx).
		Where("car_wash_id = ?", carWashID).
		Where("starts_at >= ? AND starts_at < ?", dayStart, dayEnd)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var appts []model.Appointment
	// Связанные клиент и услуга выбираются сразу, а не по одному на строку.
	err := q.Preload("User").Preload("Service").
		Order("starts_at ASC").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *GormAppointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 10
	}
	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Service").
		Order("starts_at DESC").
		Limit(limit).
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *GormAppointmentRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from []model.AppointmentStatus,
	to model.AppointmentStatus,
	completedAt *time.Time,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Appointment
		if err := forUpdate(tx).First(&a, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		allowed := false
		for _, s := range from {
			if a.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrAlreadyProcessed
		}

		update := map[string]any{"status": to}
		if completedAt != nil {
			update["completed_at"] = *completedAt
		}
		return tx.Model(&model.Appointment{}).Where("id = ?", id).Updates(update).Error
	})
}

func (r *GormAppointmentRepository) CountCompletedSince(ctx context.Context, carWashID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("car_wash_id = ? AND status = ?", carWashID, model.AppointmentStatusCompleted).
		Where("completed_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *GormAppointmentRepository) CountForDay(ctx context.Context, carWashID uuid.UUID, day time.Time) (int64, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("car_wash_id = ?", carWashID).
		Where("starts_at >= ? AND starts_at < ?", dayStart, dayEnd).
		Count(&n).Error
	return n, err
}

func (r *GormAppointmentRepository) RevenueCompletedSince(ctx context.Context, carWashID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).
		Table("appointments").
		Select("COALESCE(SUM(services.price), 0)").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.car_wash_id = ?", carWashID).
		Where("appointments.status = ?", model.AppointmentStatusCompleted).
		Where("appointments.completed_at >= ?", since).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
