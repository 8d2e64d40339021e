package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RevenueDataRow struct {
	Period       string          `gorm:"column:period"`
	TotalIncome  decimal.Decimal `gorm:"column:total_income"`
	TotalExpense decimal.Decimal `gorm:"column:total_expense"`
}

type RevenueRepository interface {
	GetRevenueStatistics(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, within []uuid.UUID, groupBy string, start, end time.Time) ([]RevenueDataRow, error)
}

type revenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &revenueRepository{db: db}
}

// GetRevenueStatistics buckets income and expenses by day, week or month over [start, end).
// A nil locationID with a non-nil within limits the series to those locations.
func (r *revenueRepository) GetRevenueStatistics(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, within []uuid.UUID, groupBy string, start, end time.Time) ([]RevenueDataRow, error) {
	switch groupBy {
	case "day", "week", "month":
	default:
		return nil, fmt.Errorf("invalid group_by %q", groupBy)
	}

	locFilter := ""
	args := map[string]interface{}{"group": groupBy, "tenant": tenantID, "start": start, "end": end}
	switch {
	case locationID != nil:
		locFilter = " AND location_id = @location"
		args["location"] = *locationID
	case within != nil:
		locFilter = " AND location_id IN @within"
		args["within"] = within
	}

	// GROUP BY 1: every @group occurrence becomes its own bind parameter
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC(@group, t.date), 'YYYY-MM-DD') AS period,
			COALESCE(SUM(t.income), 0) AS total_income,
			COALESCE(SUM(t.expense), 0) AS total_expense
		FROM (
			SELECT date, amount AS income, 0 AS expense FROM income
			WHERE tenant_id = @tenant AND date >= @start AND date < @end` + locFilter + `
			UNION ALL
			SELECT date, 0 AS income, amount AS expense FROM expenses
			WHERE tenant_id = @tenant AND date >= @start AND date < @end` + locFilter + `
		) t
		GROUP BY 1
		ORDER BY period
	`

	var rows []RevenueDataRow
	if err := GetDB(ctx, r.db).Raw(query, args).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query revenue statistics: %w", err)
	}
	return rows, nil
}
