package repository

import (
	"context"
	"time"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerFilter narrows income and expense listings.
type LedgerFilter struct {
	LocationID *uuid.UUID
	Within     []uuid.UUID // when LocationID is nil and Within is non-nil, only these locations
	AccountID  *uuid.UUID
	Category   string
	From       *time.Time
	To         *time.Time // inclusive
	Page       int
	Limit      int
}

func applyLedgerFilter(q *gorm.DB, f LedgerFilter) *gorm.DB {
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	} else if f.Within != nil {
		q = q.Where("location_id IN ?", f.Within)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	return q
}

type IncomeRepository interface {
	Create(ctx context.Context, i *model.Income) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Income, error)
	List(ctx context.Context, tenantID uuid.UUID, f LedgerFilter) ([]model.Income, int64, error)
	SumForReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (decimal.Decimal, error)
}

type incomeRepository struct {
	db *gorm.DB
}

func NewIncomeRepository(db *gorm.DB) IncomeRepository {
	return &incomeRepository{db: db}
}

func (r *incomeRepository) Create(ctx context.Context, i *model.Income) error {
	return GetDB(ctx, r.db).Create(i).Error
}

func (r *incomeRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Income{}).Error
}

func (r *incomeRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Income, error) {
	var i model.Income
	if err := GetDB(ctx, r.db).First(&i, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *incomeRepository) List(ctx context.Context, tenantID uuid.UUID, f LedgerFilter) ([]model.Income, int64, error) {
	var list []model.Income
	var total int64

	q := applyLedgerFilter(GetDB(ctx, r.db).Model(&model.Income{}).Where("tenant_id = ?", tenantID), f)
	if f.Category != "" {
		q = q.Where("income_type = ?", f.Category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := q.Order("date desc, created_at desc").Offset(offset).Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// SumForReservation totals every payment recorded against a reservation.
func (r *incomeRepository) SumForReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := GetDB(ctx, r.db).Model(&model.Income{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND reservation_id = ?", tenantID, reservationID).
		Row().Scan(&sum)
	return sum, err
}
