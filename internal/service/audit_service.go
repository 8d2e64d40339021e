package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"
)

// --- DTOs ---

type AuditLogQuery struct {
	Action   string `form:"action"`
	EntityID string `form:"entity_id"`
	UserID   string `form:"user_id"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id,omitempty"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name,omitempty"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  string          `json:"created_at"`
}

// --- Interface ---

type AuditService interface {
	GetAuditLogs(ctx context.Context, sess *session.Session, q AuditLogQuery) ([]AuditLogResponse, int64, error)
}

// --- Implementation ---

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs pages through the tenant's audit trail, newest first. The to date is inclusive.
func (s *auditService) GetAuditLogs(ctx context.Context, sess *session.Session, q AuditLogQuery) ([]AuditLogResponse, int64, error) {
	f, err := toAuditFilter(q)
	if err != nil {
		return nil, 0, err
	}

	logs, total, err := s.repo.List(ctx, sess.TenantID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	out := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toAuditLogResponse(l))
	}
	return out, total, nil
}

// --- Helpers ---

func toAuditFilter(q AuditLogQuery) (repository.AuditFilter, error) {
	page, limit := normalizePage(q.Page, q.Limit, 20)
	f := repository.AuditFilter{EntityID: strings.TrimSpace(q.EntityID), Page: page, Limit: limit}

	if a := strings.ToUpper(strings.TrimSpace(q.Action)); a != "" {
		if !model.IsAuditAction(a) {
			return f, invalid("unknown action %q", q.Action)
		}
		f.Action = a
	}

	var err error
	if f.UserID, err = parseOptionalID(q.UserID, "user_id"); err != nil {
		return f, err
	}
	if q.From != "" {
		from, err := parseDateField(q.From, "from")
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := parseDateField(q.To, "to")
		if err != nil {
			return f, err
		}
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, invalid("from must not be after to")
	}
	return f, nil
}

func toAuditLogResponse(l model.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         l.ID.String(),
		Actor:      "System",
		Action:     l.Action,
		EntityID:   l.EntityID,
		EntityName: l.EntityName,
		Details:    json.RawMessage("{}"),
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.UserID != nil {
		resp.UserID = l.UserID.String()
	}
	if l.User != nil {
		resp.Actor = l.User.FullName
	}
	if json.Valid([]byte(l.Details)) {
		resp.Details = json.RawMessage(l.Details)
	}
	return resp
}
