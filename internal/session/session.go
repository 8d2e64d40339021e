// Package session carries the authenticated caller through a request.
//
// A Session is built once by the auth middleware from the access token and
// passed explicitly to services; nothing reads tenant or user identity from
// globals.
package session

import (
	"context"

	"github.com/google/uuid"

	"stayhub/internal/model"
)

type ctxKey struct{}

// Session identifies who is calling and on behalf of which tenant.
type Session struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     string

	// LocationID is the location selected by the client, nil for "all locations".
	LocationID *uuid.UUID

	// Scope limits an "all locations" request to the locations the caller may see.
	// Nil means no limit.
	Scope []uuid.UUID
}

// IsTenantAdmin reports whether the caller administers the tenant.
func (s *Session) IsTenantAdmin() bool {
	return s != nil && s.Role == model.RoleTenantAdmin
}

// WithLocation returns a copy of the session scoped to locationID.
func (s Session) WithLocation(locationID *uuid.UUID) *Session {
	s.LocationID = locationID
	return &s
}

// WithScope returns a copy of the session limited to ids.
func (s Session) WithScope(ids []uuid.UUID) *Session {
	s.Scope = ids
	return &s
}

// CanSee reports whether data of locationID is visible to the session.
func (s *Session) CanSee(locationID uuid.UUID) bool {
	if s.IsTenantAdmin() {
		return true
	}
	if s.LocationID != nil {
		return *s.LocationID == locationID
	}
	if s.Scope == nil {
		return true
	}
	for _, id := range s.Scope {
		if id == locationID {
			return true
		}
	}
	return false
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
