package model

import (
	"time"

	"github.com/google/uuid"
)

// FormFieldPreference toggles visibility and requiredness of optional form fields per tenant
type FormFieldPreference struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_form_field_pref" json:"tenant_id"`
	FormName   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_form_field_pref" json:"form_name"`
	FieldName  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_form_field_pref" json:"field_name"`
	IsVisible  bool      `gorm:"not null;default:true" json:"is_visible"`
	IsRequired bool      `gorm:"not null;default:false" json:"is_required"`
	UpdatedAt  time.Time `json:"updated_at"`
}
