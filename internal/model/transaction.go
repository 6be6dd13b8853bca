package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Вид транзакции.
type TransactionKind string

const (
	TransactionKindBalanceTopup         TransactionKind = "balance_topup"
	TransactionKindSubscriptionPurchase TransactionKind = "subscription_purchase"
)

func KnownTransactionKind(k TransactionKind) bool {
	switch k {
	case TransactionKindBalanceTopup, TransactionKindSubscriptionPurchase:
		return true
	}
	return false
}

// Статус транзакции. Переходы односторонние:
// pending -> client_confirmed -> approved|rejected,
// либо pending -> approved|rejected напрямую (админ может не ждать клиента).
// approved и rejected — терминальные.
type TransactionStatus string

const (
	TransactionStatusPending         TransactionStatus = "pending"
	TransactionStatusClientConfirmed TransactionStatus = "client_confirmed"
	TransactionStatusApproved        TransactionStatus = "approved"
	TransactionStatusRejected        TransactionStatus = "rejected"
)

// PlanSnapshot — неизменяемая копия шаблона абонемента на момент покупки.
type PlanSnapshot struct {
	PlanID       uuid.UUID       `json:"plan_id"`
	Name         string          `json:"name"`
	Washes       int             `json:"washes"`
	Price        decimal.Decimal `json:"price"`
	ValidityDays int             `json:"validity_days"`
}

// transactions
type Transaction struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CarWashID uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Kind   TransactionKind   `gorm:"type:varchar(32);not null"`
	Status TransactionStatus `gorm:"type:varchar(32);not null;default:'pending';index"`

	// Для subscription_purchase — снапшот выбранного шаблона.
	TemplateSnapshot datatypes.JSON `gorm:"type:jsonb"`

	// Проставляются при approve/reject.
	AdminID    *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time `gorm:"type:timestamp with time zone"`

	// Ссылка на выпущенный абонемент (для approved subscription_purchase).
	SubscriptionID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	User  *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Admin *User `gorm:"foreignKey:AdminID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// Terminal сообщает, достигла ли транзакция терминального статуса.
func (t *Transaction) Terminal() bool {
	return t.Status == TransactionStatusApproved || t.Status == TransactionStatusRejected
}

// Snapshot распаковывает TemplateSnapshot.
func (t *Transaction) Snapshot() (*PlanSnapshot, error) {
	if len(t.TemplateSnapshot) == 0 {
		return nil, nil
	}
	var s PlanSnapshot
	if err := json.Unmarshal(t.TemplateSnapshot, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// EncodeSnapshot упаковывает снапшот для хранения в jsonb.
func EncodeSnapshot(s PlanSnapshot) (datatypes.JSON, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
