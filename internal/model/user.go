package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Роль пользователя внутри мойки.
type UserRole string

const (
	UserRoleClient UserRole = "client"
	UserRoleWasher UserRole = "washer"
	UserRoleAdmin  UserRole = "admin"
	UserRoleOwner  UserRole = "owner"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	TelegramID int64     `gorm:"not null;uniqueIndex"`
	CarWashID  uuid.UUID `gorm:"type:uuid;not null;index"`

	Role UserRole `gorm:"type:varchar(32);not null;default:'client';index"`

	FullName string `gorm:"type:varchar(255)"`
	Username string `gorm:"type:varchar(255)"`
	Phone    string `gorm:"type:varchar(32)"`

	// Пополняется только approve-ом транзакции balance_topup.
	Balance decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	IsBlocked bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	CarWash *CarWash `gorm:"foreignKey:CarWashID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
