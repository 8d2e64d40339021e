package service

import (
	"context"
	"testing"
	"time"

	"stayhub/internal/auth"
	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userFixture struct {
	repo    *mockUserRepo
	tenants *mockTenantRepo
	audit   *mockAuditRepo
	tokens  *auth.Tokens
	svc     *userService
	now     time.Time
}

func newUserFixture() *userFixture {
	f := &userFixture{
		repo:    new(mockUserRepo),
		tenants: new(mockTenantRepo),
		audit:   new(mockAuditRepo),
		tokens:  auth.NewTokens("test-secret", 15*time.Minute),
		now:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	svc := NewUserService(f.repo, f.tenants, new(mockPermissionRepo), f.audit, inlineTx{}, f.tokens,
		24*time.Hour, nil, nil, zerolog.Nop()).(*userService)
	svc.now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

func hashedUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &model.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "anna@example.com",
		Password: string(hash),
		Role:     model.RoleStaff,
		IsActive: true,
	}
}

func TestSignup_CreatesTenantAndAdmin(t *testing.T) {
	f := newUserFixture()

	f.tenants.On("FindBySlug", mock.Anything, "river-inn").Return(nil, gorm.ErrRecordNotFound)
	f.repo.On("GetByEmail", mock.Anything, "owner@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.tenants.On("Create", mock.Anything, mock.AnythingOfType("*model.Tenant")).Return(nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = uuid.New() }).Return(nil)
	f.audit.On("Log", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("SaveRefreshToken", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	out, err := f.svc.Signup(context.Background(), SignupRequest{
		TenantName: "River Inn",
		TenantSlug: " River-Inn ",
		Email:      "Owner@Example.com",
		FullName:   "Owner",
		Password:   "long-enough",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleTenantAdmin, out.User.Role)
	assert.Equal(t, "owner@example.com", out.User.Email)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, int64(900), out.ExpiresIn)

	sess, err := f.tokens.Parse(out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.TenantID, sess.TenantID)
	assert.NotEqual(t, uuid.Nil, sess.TenantID)
}

func TestSignup_Rejections(t *testing.T) {
	t.Run("taken slug", func(t *testing.T) {
		f := newUserFixture()
		f.tenants.On("FindBySlug", mock.Anything, "river-inn").Return(&model.Tenant{Slug: "river-inn"}, nil)

		_, err := f.svc.Signup(context.Background(), SignupRequest{
			TenantName: "River Inn", TenantSlug: "river-inn", Email: "owner@example.com", FullName: "Owner", Password: "long-enough",
		})
		assert.ErrorIs(t, err, ErrValidation)
		f.tenants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("bad slug", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.svc.Signup(context.Background(), SignupRequest{
			TenantName: "River Inn", TenantSlug: "x", Email: "owner@example.com", FullName: "Owner", Password: "long-enough",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		f := newUserFixture()
		user := hashedUser(t, "correct-horse")
		f.repo.On("GetByEmail", mock.Anything, "anna@example.com").Return(user, nil)
		f.repo.On("Update", mock.Anything, user).Return(nil)
		f.repo.On("SaveRefreshToken", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.UserID == user.ID && rt.ExpiresAt.Equal(f.now.Add(24*time.Hour))
		})).Return(nil)

		out, err := f.svc.Login(context.Background(), LoginUserRequest{Email: " ANNA@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		require.NotNil(t, user.LastLoginAt)
		assert.Equal(t, f.now, *user.LastLoginAt)
		assert.Equal(t, user.ID, out.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newUserFixture()
		f.repo.On("GetByEmail", mock.Anything, "anna@example.com").Return(hashedUser(t, "correct-horse"), nil)

		_, err := f.svc.Login(context.Background(), LoginUserRequest{Email: "anna@example.com", Password: "battery-staple"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		f.repo.AssertNotCalled(t, "SaveRefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("disabled account", func(t *testing.T) {
		f := newUserFixture()
		user := hashedUser(t, "correct-horse")
		user.IsActive = false
		f.repo.On("GetByEmail", mock.Anything, "anna@example.com").Return(user, nil)

		_, err := f.svc.Login(context.Background(), LoginUserRequest{Email: "anna@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newUserFixture()
		f.repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Login(context.Background(), LoginUserRequest{Email: "ghost@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestRefreshToken_Rotates(t *testing.T) {
	f := newUserFixture()
	user := hashedUser(t, "correct-horse")
	stored := &model.RefreshToken{UserID: user.ID, User: *user, Token: "old-token", ExpiresAt: f.now.Add(time.Hour)}

	f.repo.On("FindRefreshToken", mock.Anything, "old-token").Return(stored, nil)
	f.repo.On("DeleteRefreshToken", mock.Anything, "old-token").Return(nil)
	f.repo.On("SaveRefreshToken", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	out, err := f.svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-token", out.RefreshToken)
	assert.Len(t, out.RefreshToken, 64)
	f.repo.AssertExpectations(t)
}

func TestRefreshToken_ExpiredIsConsumed(t *testing.T) {
	f := newUserFixture()
	user := hashedUser(t, "correct-horse")
	stored := &model.RefreshToken{UserID: user.ID, User: *user, Token: "old-token", ExpiresAt: f.now.Add(-time.Minute)}

	f.repo.On("FindRefreshToken", mock.Anything, "old-token").Return(stored, nil)
	f.repo.On("DeleteRefreshToken", mock.Anything, "old-token").Return(nil)

	_, err := f.svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: "old-token"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	f.repo.AssertCalled(t, "DeleteRefreshToken", mock.Anything, "old-token")
	f.repo.AssertNotCalled(t, "SaveRefreshToken", mock.Anything, mock.Anything)
}
