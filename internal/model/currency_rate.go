package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyRate converts one unit of FromCurrency into Rate units of ToCurrency
type CurrencyRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_currency_rates_pair_date" json:"tenant_id"`
	FromCurrency  string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_currency_rates_pair_date" json:"from_currency"`
	ToCurrency    string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_currency_rates_pair_date" json:"to_currency"`
	Rate          decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"rate"`
	EffectiveDate time.Time       `gorm:"type:date;not null;uniqueIndex:idx_currency_rates_pair_date" json:"effective_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
