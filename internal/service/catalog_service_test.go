package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
)

func TestCreateService_Validation(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := NewCatalogService(
		repository.NewGormServiceRepository(db),
		repository.NewGormSubscriptionPlanRepository(db),
	)
	ctx := context.Background()

	cases := []struct {
		name string
		in   ServiceInput
	}{
		{"empty name", ServiceInput{Price: decimal.NewFromInt(100), DurationMin: 30}},
		{"negative price", ServiceInput{Name: "x", Price: decimal.NewFromInt(-1), DurationMin: 30}},
		{"zero duration", ServiceInput{Name: "x", Price: decimal.NewFromInt(100)}},
		{"bad category", ServiceInput{Name: "x", Price: decimal.NewFromInt(100), DurationMin: 30, CarCategory: "truck"}},
		{"bad discount", ServiceInput{Name: "x", Price: decimal.NewFromInt(100), DurationMin: 30, MaxDiscountPercent: 101}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateService(ctx, f.washID, tc.in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}

	created, err := svc.CreateService(ctx, f.washID, ServiceInput{
		Name:        "  premium wash  ",
		Price:       decimal.NewFromInt(900),
		DurationMin: 90,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "premium wash" {
		t.Fatalf("name not trimmed: %q", created.Name)
	}
	if created.CarCategory != model.CarCategorySedan {
		t.Fatalf("default category must be sedan, got %s", created.CarCategory)
	}
	if !created.IsActive {
		t.Fatalf("new service must be active")
	}
}

func TestDisableService_HidesFromClients(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	catalog := NewCatalogService(
		repository.NewGormServiceRepository(db),
		repository.NewGormSubscriptionPlanRepository(db),
	)
	booking := newBookingService(db)
	ctx := context.Background()

	if err := catalog.DisableService(ctx, f.washID, f.serviceID); err != nil {
		t.Fatalf("disable: %v", err)
	}

	active, err := booking.ListActiveServices(ctx, f.washID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("disabled service still visible to clients")
	}

	// Для админа тариф остаётся в списке.
	all, err := catalog.ListServices(ctx, f.washID)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("disabled service must stay in the catalog, got %d", len(all))
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := NewCatalogService(
		repository.NewGormServiceRepository(db),
		repository.NewGormSubscriptionPlanRepository(db),
	)
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, f.washID, PlanInput{Name: "p", Washes: 0, Price: decimal.NewFromInt(100), ValidityDays: 30}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero washes must fail, got %v", err)
	}
	if _, err := svc.CreatePlan(ctx, f.washID, PlanInput{Name: "p", Washes: 5, Price: decimal.Zero, ValidityDays: 30}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero price must fail, got %v", err)
	}

	plan, err := svc.CreatePlan(ctx, f.washID, PlanInput{Name: "5 washes", Washes: 5, Price: decimal.NewFromInt(2000), ValidityDays: 30})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if !plan.IsActive {
		t.Fatalf("new plan must be active")
	}

	plans, err := svc.ListPlans(ctx, f.washID)
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}
}

func TestIdentity_ResolveAndBlock(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := NewIdentityService(
		repository.NewGormUserRepository(db),
		repository.NewGormCarWashRepository(db),
	)
	ctx := context.Background()

	u, err := svc.Resolve(ctx, 300001)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.ID != f.clientID {
		t.Fatalf("resolved wrong user")
	}

	if err := db.Model(&model.User{}).Where("id = ?", f.clientID).Update("is_blocked", true).Error; err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := svc.Resolve(ctx, 300001); !errors.Is(err, ErrValidation) {
		t.Fatalf("blocked user must not resolve, got %v", err)
	}

	if _, err := svc.Resolve(ctx, 999999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown telegram id, got %v", err)
	}
}

func TestIdentity_SetRole(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := NewIdentityService(
		repository.NewGormUserRepository(db),
		repository.NewGormCarWashRepository(db),
	)
	ctx := context.Background()

	if err := svc.SetRole(ctx, f.clientID, f.washID, "superuser"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown role must fail, got %v", err)
	}
	if err := svc.SetRole(ctx, f.clientID, f.washID, model.UserRoleWasher); err != nil {
		t.Fatalf("set role: %v", err)
	}

	u, err := repository.NewGormUserRepository(db).GetByID(ctx, f.clientID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Role != model.UserRoleWasher {
		t.Fatalf("role not updated: %s", u.Role)
	}
}
