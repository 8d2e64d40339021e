package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"stayhub/internal/model"
)

func TestCanSee(t *testing.T) {
	locA, locB := uuid.New(), uuid.New()
	base := Session{UserID: uuid.New(), TenantID: uuid.New(), Role: model.RoleStaff}

	tests := []struct {
		name string
		sess *Session
		loc  uuid.UUID
		want bool
	}{
		{"unscoped", &base, locB, true},
		{"inside scope", base.WithScope([]uuid.UUID{locA}), locA, true},
		{"outside scope", base.WithScope([]uuid.UUID{locA}), locB, false},
		{"empty scope", base.WithScope([]uuid.UUID{}), locA, false},
		{"selected location", base.WithLocation(&locA), locB, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sess.CanSee(tt.loc))
		})
	}

	admin := Session{Role: model.RoleTenantAdmin}
	assert.True(t, admin.WithScope([]uuid.UUID{}).CanSee(locB))
}
