package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Категория автомобиля, на которую рассчитан тариф.
type CarCategory string

const (
	CarCategorySedan     CarCategory = "sedan"
	CarCategoryCrossover CarCategory = "crossover"
	CarCategorySUV       CarCategory = "suv"
)

// KnownCarCategory — валидация категории на входе.
func KnownCarCategory(c CarCategory) bool {
	switch c {
	case CarCategorySedan, CarCategoryCrossover, CarCategorySUV:
		return true
	}
	return false
}

// services — тариф мойки. Никогда не удаляется, только is_active = false.
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CarWashID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	Price decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	// Длительность в минутах. Фиксируется в записи при бронировании.
	DurationMin int `gorm:"not null"`

	IsActive bool `gorm:"not null;default:true;index"`

	CarCategory        CarCategory `gorm:"type:varchar(32);not null;default:'sedan'"`
	MaxDiscountPercent int         `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	CarWash *CarWash `gorm:"foreignKey:CarWashID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
