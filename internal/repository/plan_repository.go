package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/model"
)

type SubscriptionPlanRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error)
	Create(ctx context.Context, plan *model.SubscriptionPlan) error
	ListActive(ctx context.Context, carWashID uuid.UUID) ([]model.SubscriptionPlan, error)
	Save(ctx context.Context, plan *model.SubscriptionPlan) error
}

type GormSubscriptionPlanRepository struct {
	db *gorm.DB
}

func NewGormSubscriptionPlanRepository(db *gorm.DB) *GormSubscriptionPlanRepository {
	return &GormSubscriptionPlanRepository{db: db}
}

func (r *GormSubscriptionPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionPlan, error) {
	var p model.SubscriptionPlan
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *GormSubscriptionPlanRepository) Create(ctx context.Context, plan *model.SubscriptionPlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *GormSubscriptionPlanRepository) ListActive(ctx context.Context, carWashID uuid.UUID) ([]model.SubscriptionPlan, error) {
	var plans []model.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("car_wash_id = ? AND is_active = ?", carWashID, true).
		Order("price ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *GormSubscriptionPlanRepository) Save(ctx context.Context, plan *model.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}
