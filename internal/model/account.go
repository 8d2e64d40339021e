package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account types
const (
	AccountTypeCash   = "cash"
	AccountTypeBank   = "bank"
	AccountTypeCard   = "card"
	AccountTypeOnline = "online"
)

// Account is a cash drawer or bank account money flows through
type Account struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LocationID     *uuid.UUID      `gorm:"type:uuid;index" json:"location_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	AccountType    string          `gorm:"type:varchar(20);not null;default:'cash'" json:"account_type"`
	Currency       string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"initial_balance"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}
