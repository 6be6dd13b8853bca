package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/model"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subscription, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.Subscription, error)
	// Redeem списывает одну мойку с абонемента. remaining_washes не
	// опускается ниже нуля; исчерпанный абонемент деактивируется.
	Redeem(ctx context.Context, id uuid.UUID) (*model.Subscription, error)
}

type GormSubscriptionRepository struct {
	db *gorm.DB
}

func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

func (r *GormSubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *GormSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subscription, error) {
	var s model.Subscription
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *GormSubscriptionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *GormSubscriptionRepository) Redeem(ctx context.Context, id uuid.UUID) (*model.Subscription, error) {
	var result *model.Subscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.Subscription
		if err := forUpdate(tx).First(&s, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if !s.IsActive || s.RemainingWashes <= 0 {
			return ErrAlreadyProcessed
		}

		s.RemainingWashes--
		if s.RemainingWashes == 0 {
			s.IsActive = false
		}
		if err := tx.Save(&s).Error; err != nil {
			return err
		}
		result = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
