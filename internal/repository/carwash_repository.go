package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/model"
)

type CarWashRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.CarWash, error)
	Create(ctx context.Context, wash *model.CarWash) error
}

// Реализация на GORM.
type GormCarWashRepository struct {
	db *gorm.DB
}

func NewGormCarWashRepository(db *gorm.DB) *GormCarWashRepository {
	return &GormCarWashRepository{db: db}
}

func (r *GormCarWashRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CarWash, error) {
	var w model.CarWash
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r *GormCarWashRepository) Create(ctx context.Context, wash *model.CarWash) error {
	if wash.ID == uuid.Nil {
		wash.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(wash).Error
}
