package repository

import (
	"context"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PermissionRepository interface {
	ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]model.UserPermission, error)
	ReplaceForUser(ctx context.Context, tenantID, userID uuid.UUID, records []model.UserPermission) error
	DeleteForUser(ctx context.Context, tenantID, userID uuid.UUID) error
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]model.UserPermission, error) {
	var records []model.UserPermission
	if err := GetDB(ctx, r.db).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("location_id NULLS FIRST").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceForUser swaps the user's permission rows. Call inside a transaction.
func (r *permissionRepository) ReplaceForUser(ctx context.Context, tenantID, userID uuid.UUID, records []model.UserPermission) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("tenant_id = ? AND user_id = ?", tenantID, userID).Delete(&model.UserPermission{}).Error; err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		records[i].TenantID = tenantID
		records[i].UserID = userID
	}
	return db.Create(&records).Error
}

func (r *permissionRepository) DeleteForUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND user_id = ?", tenantID, userID).Delete(&model.UserPermission{}).Error
}
