package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Income types
const (
	IncomeTypeBooking = "booking"
	IncomeTypeService = "service"
	IncomeTypeOther   = "other"
)

// Payment methods
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "bank_transfer"
	PaymentOnline   = "online"
)

// Income is money entering an account, optionally paying a reservation
type Income struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"location_id"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	ReservationID *uuid.UUID      `gorm:"type:uuid;index" json:"reservation_id"`
	IncomeType    string          `gorm:"type:varchar(20);not null;default:'booking'" json:"income_type"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Date          time.Time       `gorm:"type:date;not null;index" json:"date"`
	Note          string          `gorm:"type:text" json:"note"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName keeps the singular table name the dashboards query.
func (Income) TableName() string {
	return "income"
}
