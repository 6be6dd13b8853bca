package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/model"
)

// PendingTransactionStatuses — статусы, видимые админу в очереди платежей.
var PendingTransactionStatuses = []model.TransactionStatus{
	model.TransactionStatusPending,
	model.TransactionStatusClientConfirmed,
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	// Необработанные транзакции мойки, свежие первыми.
	ListPending(ctx context.Context, carWashID uuid.UUID) ([]model.Transaction, error)
	CountPending(ctx context.Context, carWashID uuid.UUID) (int64, error)
	// Transition атомарно переводит транзакцию в новый статус: строка
	// блокируется, статус сверяется с from, mutate выполняет сам переход и
	// побочные эффекты в той же БД-транзакции. Статус вне from —
	// ErrAlreadyProcessed, никакие эффекты не повторяются.
	Transition(ctx context.Context, id uuid.UUID, from []model.TransactionStatus, mutate func(tx *gorm.DB, txn *model.Transaction) error) (*model.Transaction, error)
}

type GormTransactionRepository struct {
	db *gorm.DB
}

func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.Status == "" {
		txn.Status = model.TransactionStatusPending
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *GormTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *GormTransactionRepository) ListPending(ctx context.Context, carWashID uuid.UUID) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := r.db.WithContext(ctx).
		Where("car_wash_id = ? AND status IN ?", carWashID, PendingTransactionStatuses).
		Preload("User").
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *GormTransactionRepository) CountPending(ctx context.Context, carWashID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("car_wash_id = ? AND status IN ?", carWashID, PendingTransactionStatuses).
		Count(&n).Error
	return n, err
}

func (r *GormTransactionRepository) Transition(
	ctx context.Context,
	id uuid.UUID,
	from []model.TransactionStatus,
	mutate func(tx *gorm.DB, txn *model.Transaction) error,
) (*model.Transaction, error) {
	var result *model.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Transaction
		if err := forUpdate(tx).First(&t, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		allowed := false
		for _, s := range from {
			if t.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrAlreadyProcessed
		}

		if err := mutate(tx, &t); err != nil {
			return err
		}
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		result = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
