package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// carwashes — мойка (тенант). Создаётся при онбординге, почти не меняется.
type CarWash struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name    string `gorm:"type:varchar(255);not null"`
	Address string `gorm:"type:text"`
	Phone   string `gorm:"type:varchar(32)"`

	// График работы по дням недели: {"mon": "09:00-21:00", "sun": "closed"}.
	// Пустое значение — используется окно по умолчанию из конфига.
	WorkingHours datatypes.JSON `gorm:"type:jsonb"`

	// Шаг сетки слотов в минутах.
	SlotDurationMin int `gorm:"not null;default:60"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Users    []User    `gorm:"foreignKey:CarWashID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Services []Service `gorm:"foreignKey:CarWashID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
