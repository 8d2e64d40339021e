package service

import (
	"context"
	"fmt"
	"strings"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"
)

type FormFieldSetting struct {
	FieldName  string `json:"field_name" binding:"required"`
	IsVisible  bool   `json:"is_visible"`
	IsRequired bool   `json:"is_required"`
}

type UpdateFormFieldsRequest struct {
	Fields []FormFieldSetting `json:"fields" binding:"required,dive"`
}

// Forms whose fields may be configured per tenant.
var configurableForms = map[string]bool{
	"reservation": true,
	"income":      true,
	"expense":     true,
	"room":        true,
	"guest":       true,
}

type FormFieldService interface {
	GetFormFields(ctx context.Context, sess *session.Session, form string) ([]FormFieldSetting, error)
	UpdateFormFields(ctx context.Context, sess *session.Session, form string, req UpdateFormFieldsRequest) ([]FormFieldSetting, error)
}

type formFieldService struct {
	repo repository.FormFieldRepository
}

func NewFormFieldService(repo repository.FormFieldRepository) FormFieldService {
	return &formFieldService{repo: repo}
}

func (s *formFieldService) GetFormFields(ctx context.Context, sess *session.Session, form string) ([]FormFieldSetting, error) {
	if !configurableForms[form] {
		return nil, invalid("unknown form %q", form)
	}
	prefs, err := s.repo.ListByForm(ctx, sess.TenantID, form)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form fields: %w", err)
	}
	out := make([]FormFieldSetting, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, FormFieldSetting{FieldName: p.FieldName, IsVisible: p.IsVisible, IsRequired: p.IsRequired})
	}
	return out, nil
}

func (s *formFieldService) UpdateFormFields(ctx context.Context, sess *session.Session, form string, req UpdateFormFieldsRequest) ([]FormFieldSetting, error) {
	if !configurableForms[form] {
		return nil, invalid("unknown form %q", form)
	}

	prefs := make([]model.FormFieldPreference, 0, len(req.Fields))
	for _, f := range req.Fields {
		name := strings.TrimSpace(f.FieldName)
		if name == "" {
			return nil, invalid("field_name is required")
		}
		if f.IsRequired && !f.IsVisible {
			return nil, invalid("field %s cannot be required while hidden", name)
		}
		prefs = append(prefs, model.FormFieldPreference{
			TenantID:   sess.TenantID,
			FormName:   form,
			FieldName:  name,
			IsVisible:  f.IsVisible,
			IsRequired: f.IsRequired,
		})
	}
	if err := s.repo.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to save form fields: %w", err)
	}
	return s.GetFormFields(ctx, sess, form)
}
