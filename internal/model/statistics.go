package model

import "github.com/shopspring/decimal"

// LocationTotals is one row of a per-location aggregate
type LocationTotals struct {
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
}

// CategoryTotal is the sum of expenses in one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// SourceCount counts reservations per booking source
type SourceCount struct {
	BookingSource string `json:"booking_source"`
	Count         int64  `json:"count"`
}
