package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// subscription_plans — шаблон абонемента в каталоге мойки.
// При покупке в транзакцию снимается снапшот, поэтому правка шаблона
// не влияет на уже запущенные покупки.
type SubscriptionPlan struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CarWashID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name         string          `gorm:"type:varchar(255);not null"`
	Washes       int             `gorm:"not null"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ValidityDays int             `gorm:"not null"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	CarWash *CarWash `gorm:"foreignKey:CarWashID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// subscriptions — купленный абонемент. Появляется только как результат
// approve транзакции subscription_purchase.
type Subscription struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CarWashID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name string `gorm:"type:varchar(255);not null"`

	TotalWashes int `gorm:"not null"`
	// 0 <= RemainingWashes <= TotalWashes.
	RemainingWashes int `gorm:"not null"`

	PurchasePrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	ValidUntil *datatypes.Date `gorm:"type:date"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
