package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/model"
)

// openTestDB поднимает sqlite в памяти со схемой, накатанной руками:
// postgres-дефолты вроде gen_random_uuid() sqlite не понимает.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE car_washes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT,
			phone TEXT,
			working_hours TEXT,
			slot_duration_min INTEGER NOT NULL DEFAULT 60,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			telegram_id INTEGER NOT NULL UNIQUE,
			car_wash_id TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'client',
			full_name TEXT,
			username TEXT,
			phone TEXT,
			balance NUMERIC NOT NULL DEFAULT 0,
			is_blocked INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE services (
			id TEXT PRIMARY KEY,
			car_wash_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			price NUMERIC NOT NULL,
			duration_min INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			car_category TEXT NOT NULL DEFAULT 'sedan',
			max_discount_percent INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE appointments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			car_wash_id TEXT NOT NULL,
			starts_at DATETIME NOT NULL,
			ends_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME,
			completed_at DATETIME
		);`,
		`CREATE TABLE subscription_plans (
			id TEXT PRIMARY KEY,
			car_wash_id TEXT NOT NULL,
			name TEXT NOT NULL,
			washes INTEGER NOT NULL,
			price NUMERIC NOT NULL,
			validity_days INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE subscriptions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			car_wash_id TEXT NOT NULL,
			name TEXT NOT NULL,
			total_washes INTEGER NOT NULL,
			remaining_washes INTEGER NOT NULL,
			purchase_price NUMERIC NOT NULL,
			valid_until DATE,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME
		);`,
		`CREATE TABLE transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			car_wash_id TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			template_snapshot TEXT,
			admin_id TEXT,
			approved_at DATETIME,
			subscription_id TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type fixture struct {
	washID    uuid.UUID
	clientID  uuid.UUID
	adminID   uuid.UUID
	serviceID uuid.UUID
}

// seedFixture заводит мойку, клиента, админа и часовую услугу за 500.
func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		washID:    uuid.New(),
		clientID:  uuid.New(),
		adminID:   uuid.New(),
		serviceID: uuid.New(),
	}

	if err := db.Create(&model.CarWash{ID: f.washID, Name: "test wash", SlotDurationMin: 60}).Error; err != nil {
		t.Fatalf("seed wash: %v", err)
	}
	if err := db.Create(&model.User{ID: f.clientID, TelegramID: 300001, CarWashID: f.washID, Role: model.UserRoleClient}).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	if err := db.Create(&model.User{ID: f.adminID, TelegramID: 300002, CarWashID: f.washID, Role: model.UserRoleAdmin}).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	svc := &model.Service{
		ID:          f.serviceID,
		CarWashID:   f.washID,
		Name:        "basic wash",
		Price:       decimal.NewFromInt(500),
		DurationMin: 60,
		IsActive:    true,
		CarCategory: model.CarCategorySedan,
	}
	if err := db.Create(svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return f
}

// fixedNow — детерминированное "сейчас" для тестов: утро 2 марта 2026.
func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
}
