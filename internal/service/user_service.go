package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"stayhub/internal/auth"
	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserRequest struct {
	Email           string `json:"email" binding:"required,email"`
	FullName        string `json:"full_name" binding:"required"`
	Phone           string `json:"phone"`
	Password        string `json:"password" binding:"omitempty,min=8"` // Generated when empty
	Role            string `json:"role" binding:"required,oneof=tenant_admin manager staff"`
	SendCredentials bool   `json:"send_credentials"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"omitempty,oneof=tenant_admin manager staff"`
	IsActive *bool  `json:"is_active"`
	Password string `json:"password" binding:"omitempty,min=8"`
}

type SignupRequest struct {
	TenantName string `json:"tenant_name" binding:"required"`
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	FullName   string `json:"full_name" binding:"required"`
	Password   string `json:"password" binding:"required,min=8"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserResponse hides the password hash.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	PhoneVerified bool      `json:"phone_verified"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"is_active"`
	LastLoginAt   *string   `json:"last_login_at"`
	CreatedAt     string    `json:"created_at"`
	UpdatedAt     string    `json:"updated_at"`
}

// CredentialsMailer delivers login details to a new user.
type CredentialsMailer interface {
	SendCredentials(ctx context.Context, req CredentialsEmailRequest) error
}

// --- Interface ---

type UserService interface {
	Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error

	CreateUser(ctx context.Context, sess *session.Session, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, sess *session.Session, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, sess *session.Session, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, sess *session.Session, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, sess *session.Session, id string) error
	MarkPhoneVerified(ctx context.Context, sess *session.Session, phone string) error
}

// --- Implementation ---

var (
	emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]{1,98}[a-z0-9]$`)
)

type userService struct {
	repo        repository.UserRepository
	tenantRepo  repository.TenantRepository
	permRepo    repository.PermissionRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	tokens      *auth.Tokens
	refreshTTL  time.Duration
	mailer      CredentialsMailer
	permissions PermissionService
	log         zerolog.Logger
	now         func() time.Time
}

func NewUserService(
	repo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	permRepo repository.PermissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	tokens *auth.Tokens,
	refreshTTL time.Duration,
	mailer CredentialsMailer,
	permissions PermissionService,
	log zerolog.Logger,
) UserService {
	return &userService{
		repo:        repo,
		tenantRepo:  tenantRepo,
		permRepo:    permRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		tokens:      tokens,
		refreshTTL:  refreshTTL,
		mailer:      mailer,
		permissions: permissions,
		log:         log,
		now:         time.Now,
	}
}

// Signup creates a tenant together with its first administrator.
func (s *userService) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if !emailRegex.MatchString(email) {
		return nil, invalid("invalid email format")
	}
	slug := strings.ToLower(strings.TrimSpace(req.TenantSlug))
	if !slugRegex.MatchString(slug) {
		return nil, invalid("tenant_slug must be 3-100 lowercase letters, digits or dashes")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.tenantRepo.FindBySlug(txCtx, slug); err == nil {
			return invalid("tenant slug already exists")
		}
		if _, err := s.repo.GetByEmail(txCtx, email); err == nil {
			return invalid("email already exists")
		}

		tenant := &model.Tenant{Name: strings.TrimSpace(req.TenantName), Slug: slug, IsActive: true}
		if err := s.tenantRepo.Create(txCtx, tenant); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		user = &model.User{
			TenantID: tenant.ID,
			Email:    email,
			FullName: strings.TrimSpace(req.FullName),
			Password: string(hashed),
			Role:     model.RoleTenantAdmin,
			IsActive: true,
		}
		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(tenant.ID, user.ID, model.ActionCreateUser, user.ID.String(), user.Email,
			map[string]interface{}{"role": user.Role, "signup": true}))
	})
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.repo.Update(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates the refresh token: the presented one is deleted and a new pair issued.
func (s *userService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.repo.FindRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	if err := s.repo.DeleteRefreshToken(ctx, stored.Token); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("%w: refresh token expired", ErrUnauthorized)
	}

	user := stored.User
	if user.ID == uuid.Nil || !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}
	return s.issueTokens(ctx, &user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) CreateUser(ctx context.Context, sess *session.Session, req CreateUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, invalid("invalid role: must be tenant_admin, manager or staff")
	}
	email := normalizeEmail(req.Email)
	if !emailRegex.MatchString(email) {
		return nil, invalid("invalid email format")
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, invalid("email already exists")
	}

	password := req.Password
	if password == "" {
		var err error
		if password, err = generatePassword(); err != nil {
			return nil, err
		}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		TenantID: sess.TenantID,
		Email:    email,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		Password: string(hashed),
		Role:     req.Role,
		IsActive: true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionCreateUser, user.ID.String(), user.Email,
			map[string]interface{}{"role": user.Role, "full_name": user.FullName}))
	})
	if err != nil {
		return nil, err
	}

	if req.SendCredentials && s.mailer != nil {
		// The user exists either way; a failed email is reported in the log only.
		if err := s.mailer.SendCredentials(ctx, CredentialsEmailRequest{
			To:       user.Email,
			FullName: user.FullName,
			Password: password,
		}); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to send credentials email")
		}
	}

	return mapToResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, sess *session.Session, id string) (*UserResponse, error) {
	uid, err := parseID(id, "user id")
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, sess.TenantID, uid)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, sess *session.Session, page, limit int) ([]UserResponse, int64, error) {
	page, limit = normalizePage(page, limit, 10)

	users, total, err := s.repo.List(ctx, sess.TenantID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, sess *session.Session, id string, req UpdateUserRequest) (*UserResponse, error) {
	uid, err := parseID(id, "user id")
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err = s.repo.GetByID(txCtx, sess.TenantID, uid)
		if err != nil {
			return notFoundOr(err, "user")
		}

		changes := map[string]interface{}{}
		if req.Role != "" && req.Role != user.Role {
			if !model.ValidRole(req.Role) {
				return invalid("invalid role: must be tenant_admin, manager or staff")
			}
			if uid == sess.UserID && user.Role == model.RoleTenantAdmin {
				return invalid("you cannot change your own administrator role")
			}
			changes["role"] = req.Role
			user.Role = req.Role
		}
		if email := normalizeEmail(req.Email); email != "" && email != user.Email {
			if !emailRegex.MatchString(email) {
				return invalid("invalid email format")
			}
			if _, err := s.repo.GetByEmail(txCtx, email); err == nil {
				return invalid("email already exists")
			}
			changes["email"] = email
			user.Email = email
		}
		if req.FullName != "" {
			user.FullName = strings.TrimSpace(req.FullName)
		}
		if req.Phone != "" && req.Phone != user.Phone {
			user.Phone = req.Phone
			user.PhoneVerified = false
		}
		if req.IsActive != nil {
			if !*req.IsActive && uid == sess.UserID {
				return invalid("you cannot deactivate your own account")
			}
			changes["is_active"] = *req.IsActive
			user.IsActive = *req.IsActive
		}
		if req.Password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return errors.New("failed to hash password")
			}
			user.Password = string(hashed)
			changes["password"] = "changed"
		}

		if err := s.repo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionUpdateUser, user.ID.String(), user.Email, changes))
	})
	if err != nil {
		return nil, err
	}

	if s.permissions != nil {
		s.permissions.ClearCache(uid)
	}
	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, sess *session.Session, id string) error {
	uid, err := parseID(id, "user id")
	if err != nil {
		return err
	}
	if uid == sess.UserID {
		return invalid("you cannot delete your own account")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.repo.GetByID(txCtx, sess.TenantID, uid)
		if err != nil {
			return notFoundOr(err, "user")
		}
		if err := s.permRepo.DeleteForUser(txCtx, sess.TenantID, uid); err != nil {
			return fmt.Errorf("failed to delete permissions: %w", err)
		}
		if err := s.repo.Delete(txCtx, sess.TenantID, uid); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionDeleteUser, uid.String(), user.Email, nil))
	})
	if err != nil {
		return err
	}

	if s.permissions != nil {
		s.permissions.ClearCache(uid)
	}
	return nil
}

// MarkPhoneVerified records that the caller proved ownership of phone.
func (s *userService) MarkPhoneVerified(ctx context.Context, sess *session.Session, phone string) error {
	user, err := s.repo.GetByID(ctx, sess.TenantID, sess.UserID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	user.Phone = phone
	user.PhoneVerified = true
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	access, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.repo.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &TokenResponse{
		Token:        access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		User:         *mapToResponse(user),
	}, nil
}

func generatePassword() (string, error) {
	raw := make([]byte, 9)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:            user.ID,
		TenantID:      user.TenantID,
		Email:         user.Email,
		FullName:      user.FullName,
		Phone:         user.Phone,
		PhoneVerified: user.PhoneVerified,
		Role:          user.Role,
		IsActive:      user.IsActive,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     user.UpdatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		ts := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &ts
	}
	return resp
}
