package repository

import (
	"context"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	Update(ctx context.Context, a *model.Account) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Account, error)
	List(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]model.Account, error)
	Movements(ctx context.Context, tenantID, id uuid.UUID) (income, expense decimal.Decimal, err error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *accountRepository) Update(ctx context.Context, a *model.Account) error {
	return GetDB(ctx, r.db).Save(a).Error
}

func (r *accountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Account{}).Error
}

func (r *accountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Account, error) {
	var a model.Account
	if err := GetDB(ctx, r.db).First(&a, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) List(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]model.Account, error) {
	q := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID)
	if locationID != nil {
		q = q.Where("location_id IS NULL OR location_id = ?", *locationID)
	}
	var list []model.Account
	if err := q.Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Movements sums all income into and all expenses out of the account.
func (r *accountRepository) Movements(ctx context.Context, tenantID, id uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	db := GetDB(ctx, r.db)

	var in, out decimal.Decimal
	if err := db.Model(&model.Income{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND account_id = ?", tenantID, id).
		Row().Scan(&in); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if err := db.Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND account_id = ?", tenantID, id).
		Row().Scan(&out); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return in, out, nil
}
