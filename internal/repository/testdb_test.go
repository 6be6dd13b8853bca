package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB поднимает sqlite в памяти и накатывает схему руками:
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
