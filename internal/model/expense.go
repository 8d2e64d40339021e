package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense categories
const (
	ExpenseCategoryUtilities   = "utilities"
	ExpenseCategorySalaries    = "salaries"
	ExpenseCategoryMaintenance = "maintenance"
	ExpenseCategorySupplies    = "supplies"
	ExpenseCategoryCommission  = "commission"
	ExpenseCategoryMarketing   = "marketing"
	ExpenseCategoryTaxes       = "taxes"
	ExpenseCategoryOther       = "other"
)

// Expense is money leaving an account
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"location_id"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	Category    string          `gorm:"type:varchar(30);not null;default:'other'" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency    string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ValidExpenseCategory reports whether c is a known expense category.
func ValidExpenseCategory(c string) bool {
	switch c {
	case ExpenseCategoryUtilities, ExpenseCategorySalaries, ExpenseCategoryMaintenance, ExpenseCategorySupplies,
		ExpenseCategoryCommission, ExpenseCategoryMarketing, ExpenseCategoryTaxes, ExpenseCategoryOther:
		return true
	}
	return false
}
