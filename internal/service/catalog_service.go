package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
)

// CatalogService — управление тарифами и шаблонами абонементов (админ/владелец).
type CatalogService struct {
	services repository.ServiceRepository
	plans    repository.SubscriptionPlanRepository
}

func NewCatalogService(services repository.ServiceRepository, plans repository.SubscriptionPlanRepository) *CatalogService {
	return &CatalogService{services: services, plans: plans}
}

// ServiceInput — данные нового тарифа.
type ServiceInput struct {
	Name               string
	Description        string
	Price              decimal.Decimal
	DurationMin        int
	CarCategory        model.CarCategory
	MaxDiscountPercent int
}

// CreateService валидирует ввод и создаёт тариф. Любая ошибка валидации —
// до записи в БД.
func (s *CatalogService) CreateService(ctx context.Context, carWashID uuid.UUID, in ServiceInput) (*model.Service, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("service name is required")
	}
	if in.Price.IsNegative() {
		return nil, invalidf("price must not be negative, got %s", in.Price)
	}
	if in.DurationMin <= 0 {
		return nil, invalidf("duration must be positive, got %d", in.DurationMin)
	}
	if in.CarCategory == "" {
		in.CarCategory = model.CarCategorySedan
	}
	if !model.KnownCarCategory(in.CarCategory) {
		return nil, invalidf("unknown car category %q", in.CarCategory)
	}
	if in.MaxDiscountPercent < 0 || in.MaxDiscountPercent > 100 {
		return nil, invalidf("max discount must be within 0-100, got %d", in.MaxDiscountPercent)
	}

	svc := &model.Service{
		CarWashID:          carWashID,
		Name:               strings.TrimSpace(in.Name),
		Description:        in.Description,
		Price:              in.Price,
		DurationMin:        in.DurationMin,
		IsActive:           true,
		CarCategory:        in.CarCategory,
		MaxDiscountPercent: in.MaxDiscountPercent,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// ListServices — все тарифы мойки, включая выключенные.
func (s *CatalogService) ListServices(ctx context.Context, carWashID uuid.UUID) ([]model.Service, error) {
	return s.services.List(ctx, carWashID, false)
}

// DisableService выключает тариф. Тарифы не удаляются: на них ссылаются
// прошедшие записи.
func (s *CatalogService) DisableService(ctx context.Context, carWashID, serviceID uuid.UUID) error {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if svc.CarWashID != carWashID {
		return repository.ErrNotFound
	}
	return s.services.SetActive(ctx, serviceID, false)
}

// PlanInput — данные шаблона абонемента.
type PlanInput struct {
	Name         string
	Washes       int
	Price        decimal.Decimal
	ValidityDays int
}

func (s *CatalogService) CreatePlan(ctx context.Context, carWashID uuid.UUID, in PlanInput) (*model.SubscriptionPlan, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("plan name is required")
	}
	if in.Washes <= 0 {
		return nil, invalidf("washes must be positive, got %d", in.Washes)
	}
	if !in.Price.IsPositive() {
		return nil, invalidf("price must be positive, got %s", in.Price)
	}
	if in.ValidityDays <= 0 {
		return nil, invalidf("validity days must be positive, got %d", in.ValidityDays)
	}

	plan := &model.SubscriptionPlan{
		CarWashID:    carWashID,
		Name:         strings.TrimSpace(in.Name),
		Washes:       in.Washes,
		Price:        in.Price,
		ValidityDays: in.ValidityDays,
		IsActive:     true,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans — активные шаблоны абонементов мойки для витрины клиента.
func (s *CatalogService) ListPlans(ctx context.Context, carWashID uuid.UUID) ([]model.SubscriptionPlan, error) {
	return s.plans.ListActive(ctx, carWashID)
}
