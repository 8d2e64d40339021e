package repository

import (
	"context"
	"time"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CurrencyRateRepository interface {
	Upsert(ctx context.Context, rate *model.CurrencyRate) error
	List(ctx context.Context, tenantID uuid.UUID) ([]model.CurrencyRate, error)
	FindLatest(ctx context.Context, tenantID uuid.UUID, from, to string, asOf time.Time) (*model.CurrencyRate, error)
}

type currencyRateRepository struct {
	db *gorm.DB
}

func NewCurrencyRateRepository(db *gorm.DB) CurrencyRateRepository {
	return &currencyRateRepository{db: db}
}

func (r *currencyRateRepository) Upsert(ctx context.Context, rate *model.CurrencyRate) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "from_currency"}, {Name: "to_currency"}, {Name: "effective_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(rate).Error
}

func (r *currencyRateRepository) List(ctx context.Context, tenantID uuid.UUID) ([]model.CurrencyRate, error) {
	var rates []model.CurrencyRate
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).
		Order("effective_date desc, from_currency, to_currency").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// FindLatest returns the most recent rate for the pair effective on or before asOf.
func (r *currencyRateRepository) FindLatest(ctx context.Context, tenantID uuid.UUID, from, to string, asOf time.Time) (*model.CurrencyRate, error) {
	var rate model.CurrencyRate
	if err := GetDB(ctx, r.db).
		Where("tenant_id = ? AND from_currency = ? AND to_currency = ? AND effective_date <= ?", tenantID, from, to, asOf).
		Order("effective_date desc").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}
