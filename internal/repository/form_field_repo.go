package repository

import (
	"context"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FormFieldRepository interface {
	ListByForm(ctx context.Context, tenantID uuid.UUID, formName string) ([]model.FormFieldPreference, error)
	Upsert(ctx context.Context, prefs []model.FormFieldPreference) error
}

type formFieldRepository struct {
	db *gorm.DB
}

func NewFormFieldRepository(db *gorm.DB) FormFieldRepository {
	return &formFieldRepository{db: db}
}

func (r *formFieldRepository) ListByForm(ctx context.Context, tenantID uuid.UUID, formName string) ([]model.FormFieldPreference, error) {
	var prefs []model.FormFieldPreference
	if err := GetDB(ctx, r.db).Where("tenant_id = ? AND form_name = ?", tenantID, formName).
		Order("field_name").Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *formFieldRepository) Upsert(ctx context.Context, prefs []model.FormFieldPreference) error {
	if len(prefs) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "form_name"}, {Name: "field_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_visible", "is_required", "updated_at"}),
	}).Create(&prefs).Error
}
