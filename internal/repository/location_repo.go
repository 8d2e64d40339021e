package repository

import (
	"context"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	Update(ctx context.Context, loc *model.Location) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Location, error)
	List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]model.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, loc *model.Location) error {
	return GetDB(ctx, r.db).Create(loc).Error
}

func (r *locationRepository) Update(ctx context.Context, loc *model.Location) error {
	return GetDB(ctx, r.db).Save(loc).Error
}

func (r *locationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Location{}).Error
}

func (r *locationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Location, error) {
	var loc model.Location
	if err := GetDB(ctx, r.db).First(&loc, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]model.Location, error) {
	q := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var locs []model.Location
	if err := q.Order("name").Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}
