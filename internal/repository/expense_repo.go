package repository

import (
	"context"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, tenantID uuid.UUID, f LedgerFilter) ([]model.Expense, int64, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) tenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return GetDB(ctx, r.db).Model(&model.Expense{}).Where("tenant_id = ?", tenantID)
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

// Delete returns gorm.ErrRecordNotFound when no expense of the tenant matched.
func (r *expenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.tenant(ctx, tenantID).Where("id = ?", id).Delete(&model.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *expenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Expense, error) {
	expense := new(model.Expense)
	if err := r.tenant(ctx, tenantID).Where("id = ?", id).Take(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *expenseRepository) List(ctx context.Context, tenantID uuid.UUID, f LedgerFilter) ([]model.Expense, int64, error) {
	q := applyLedgerFilter(r.tenant(ctx, tenantID), f)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	expenses := make([]model.Expense, 0, f.Limit)
	err := q.Order("date desc").Order("created_at desc").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&expenses).Error
	return expenses, total, err
}
