package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус записи. Движется только вперёд:
// pending/confirmed -> completed или -> cancelled, обратных переходов нет.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// ActiveAppointmentStatuses — статусы, занимающие интервал в календаре мойки.
// Инвариант: для одной мойки два таких интервала не пересекаются.
var ActiveAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

// appointments
type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	CarWashID uuid.UUID `gorm:"type:uuid;not null;index"`

	// EndsAt = StartsAt + длительность услуги на момент создания.
	// При последующем изменении тарифа интервал не пересчитывается.
	StartsAt time.Time `gorm:"type:timestamp with time zone;not null;index"`
	EndsAt   time.Time `gorm:"type:timestamp with time zone;not null"`

	Status AppointmentStatus `gorm:"type:varchar(32);not null;index"`

	CreatedAt   time.Time  `gorm:"not null;default:now()"`
	CompletedAt *time.Time `gorm:"type:timestamp with time zone"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Service *Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CarWash *CarWash `gorm:"foreignKey:CarWashID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
