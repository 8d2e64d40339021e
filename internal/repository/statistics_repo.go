package repository

import (
	"context"
	"fmt"
	"time"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardFilter scopes dashboard aggregates to a tenant, date range and optional location.
type DashboardFilter struct {
	TenantID   uuid.UUID
	LocationID *uuid.UUID
	Within     []uuid.UUID // when LocationID is nil and Within is non-nil, only these locations
	From       time.Time   // inclusive
	To         time.Time   // exclusive
}

type StatisticsRepository interface {
	SumIncome(ctx context.Context, f DashboardFilter) (decimal.Decimal, error)
	SumExpense(ctx context.Context, f DashboardFilter) (decimal.Decimal, error)
	CountReservations(ctx context.Context, f DashboardFilter) (int64, error)
	OccupiedNights(ctx context.Context, f DashboardFilter) (int64, error)
	CountArrivals(ctx context.Context, f DashboardFilter, day time.Time) (int64, error)
	CountDepartures(ctx context.Context, f DashboardFilter, day time.Time) (int64, error)
	ExpensesByCategory(ctx context.Context, f DashboardFilter) ([]model.CategoryTotal, error)
	ReservationsBySource(ctx context.Context, f DashboardFilter) ([]model.SourceCount, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (f DashboardFilter) scope(q *gorm.DB) *gorm.DB {
	if f.LocationID == nil && f.Within != nil {
		return q.Where("location_id IN ?", f.Within)
	}
	return scopeLocation(q, f.LocationID)
}

func scopeLocation(q *gorm.DB, locationID *uuid.UUID) *gorm.DB {
	if locationID != nil {
		return q.Where("location_id = ?", *locationID)
	}
	return q
}

func (r *statisticsRepository) SumIncome(ctx context.Context, f DashboardFilter) (decimal.Decimal, error) {
	var sum decimal.Decimal
	q := GetDB(ctx, r.db).Model(&model.Income{}).Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND date >= ? AND date < ?", f.TenantID, f.From, f.To)
	if err := f.scope(q).Row().Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum income: %w", err)
	}
	return sum, nil
}

func (r *statisticsRepository) SumExpense(ctx context.Context, f DashboardFilter) (decimal.Decimal, error) {
	var sum decimal.Decimal
	q := GetDB(ctx, r.db).Model(&model.Expense{}).Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND date >= ? AND date < ?", f.TenantID, f.From, f.To)
	if err := f.scope(q).Row().Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return sum, nil
}

func (r *statisticsRepository) CountReservations(ctx context.Context, f DashboardFilter) (int64, error) {
	var n int64
	q := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Where("tenant_id = ? AND status <> ?", f.TenantID, model.StatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", f.To, f.From)
	err := f.scope(q).Count(&n).Error
	return n, err
}

// OccupiedNights counts room-nights inside [From, To) covered by non-cancelled stays.
func (r *statisticsRepository) OccupiedNights(ctx context.Context, f DashboardFilter) (int64, error) {
	var n int64
	q := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Select("COALESCE(SUM(LEAST(check_out_date, ?::date) - GREATEST(check_in_date, ?::date)), 0)", f.To, f.From).
		Where("tenant_id = ? AND status <> ?", f.TenantID, model.StatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", f.To, f.From)
	if err := f.scope(q).Row().Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count occupied nights: %w", err)
	}
	return n, nil
}

func (r *statisticsRepository) CountArrivals(ctx context.Context, f DashboardFilter, day time.Time) (int64, error) {
	var n int64
	q := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Where("tenant_id = ? AND check_in_date = ? AND status IN ?", f.TenantID, day,
			[]string{model.StatusTentative, model.StatusConfirmed, model.StatusCheckedIn})
	err := f.scope(q).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) CountDepartures(ctx context.Context, f DashboardFilter, day time.Time) (int64, error) {
	var n int64
	q := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Where("tenant_id = ? AND check_out_date = ? AND status IN ?", f.TenantID, day,
			[]string{model.StatusConfirmed, model.StatusCheckedIn, model.StatusCheckedOut})
	err := f.scope(q).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) ExpensesByCategory(ctx context.Context, f DashboardFilter) ([]model.CategoryTotal, error) {
	var rows []model.CategoryTotal
	q := GetDB(ctx, r.db).Model(&model.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND date >= ? AND date < ?", f.TenantID, f.From, f.To)
	if err := f.scope(q).Group("category").Order("total DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group expenses: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) ReservationsBySource(ctx context.Context, f DashboardFilter) ([]model.SourceCount, error) {
	var rows []model.SourceCount
	q := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Select("booking_source, COUNT(*) AS count").
		Where("tenant_id = ? AND status <> ?", f.TenantID, model.StatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", f.To, f.From)
	if err := f.scope(q).Group("booking_source").Order("count DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group reservations: %w", err)
	}
	return rows, nil
}
