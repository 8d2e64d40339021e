package auth

import (
	"testing"
	"time"

	"stayhub/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	user := &model.User{ID: uuid.New(), TenantID: uuid.New(), Role: model.RoleManager, Email: "m@example.com"}

	signed, err := tokens.Issue(user)
	require.NoError(t, err)

	sess, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, user.TenantID, sess.TenantID)
	assert.Equal(t, model.RoleManager, sess.Role)
	assert.Equal(t, "m@example.com", sess.Email)
	assert.Nil(t, sess.LocationID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	user := &model.User{ID: uuid.New(), TenantID: uuid.New(), Role: model.RoleStaff}
	signed, err := NewTokens("one", time.Hour).Issue(user)
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, err := tokens.Issue(&model.User{ID: uuid.New(), TenantID: uuid.New(), Role: model.RoleStaff})
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Minute).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingTenant(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": model.RoleStaff,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
