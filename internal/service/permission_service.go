package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/permission"
	"stayhub/internal/repository"
	"stayhub/internal/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type PermissionRecord struct {
	LocationID   *string  `json:"location_id"`
	AccessLevel  string   `json:"access_level" binding:"omitempty,oneof=admin manager staff viewer"`
	Capabilities []string `json:"capabilities"`
}

type ReplacePermissionsRequest struct {
	Records []PermissionRecord `json:"records" binding:"dive"`
}

type NavigationResponse struct {
	Landing string               `json:"landing"`
	Items   []permission.NavItem `json:"items"`
}

// --- Interface ---

// PermissionService loads capability records and resolves them for a session.
type PermissionService interface {
	Effective(ctx context.Context, sess *session.Session) (permission.Set, error)
	Locations(ctx context.Context, sess *session.Session, caps ...permission.Capability) ([]uuid.UUID, bool, error)
	Navigation(ctx context.Context, sess *session.Session) (NavigationResponse, error)
	GetUserPermissions(ctx context.Context, sess *session.Session, userID string) ([]PermissionRecord, error)
	ReplaceUserPermissions(ctx context.Context, sess *session.Session, userID string, req ReplacePermissionsRequest) ([]PermissionRecord, error)
	ClearCache(userID uuid.UUID)
}

// --- Implementation ---

type permCacheEntry struct {
	records   []model.UserPermission
	expiresAt time.Time
}

type permissionService struct {
	repo         repository.PermissionRepository
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager

	cache sync.Map // userID -> permCacheEntry
	ttl   time.Duration
	now   func() time.Time

	// gen is bumped by ClearCache; a load that started under an older gen is not stored.
	mu  sync.Mutex
	gen uint64
}

func NewPermissionService(
	repo repository.PermissionRepository,
	userRepo repository.UserRepository,
	locationRepo repository.LocationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	ttl time.Duration,
) PermissionService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &permissionService{
		repo:         repo,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Effective returns the capabilities granted to the session at its selected location.
// Tenant admins hold every capability. Errors are returned, never an empty set, so
// callers can deny.
func (s *permissionService) Effective(ctx context.Context, sess *session.Session) (permission.Set, error) {
	if sess.IsTenantAdmin() {
		return permission.All(), nil
	}
	records, err := s.records(ctx, sess.TenantID, sess.UserID)
	if err != nil {
		return nil, err
	}
	return permission.Resolve(records, sess.LocationID), nil
}

// Locations lists the locations where the session holds every capability in caps.
// all is true for tenant admins and tenant-wide grants.
func (s *permissionService) Locations(ctx context.Context, sess *session.Session, caps ...permission.Capability) ([]uuid.UUID, bool, error) {
	if sess.IsTenantAdmin() {
		return nil, true, nil
	}
	records, err := s.records(ctx, sess.TenantID, sess.UserID)
	if err != nil {
		return nil, false, err
	}
	ids, all := permission.Locations(records, caps...)
	return ids, all, nil
}

func (s *permissionService) Navigation(ctx context.Context, sess *session.Session) (NavigationResponse, error) {
	set, err := s.Effective(ctx, sess)
	if err != nil {
		return NavigationResponse{}, err
	}
	admin := sess.IsTenantAdmin()
	return NavigationResponse{
		Landing: permission.LandingRoute(set, admin),
		Items:   permission.Navigation(set, admin),
	}, nil
}

func (s *permissionService) GetUserPermissions(ctx context.Context, sess *session.Session, userID string) ([]PermissionRecord, error) {
	uid, err := parseID(userID, "user id")
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, sess.TenantID, uid); err != nil {
		return nil, notFoundOr(err, "user")
	}
	records, err := s.repo.ListByUser(ctx, sess.TenantID, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	return toPermissionRecords(records), nil
}

func (s *permissionService) ReplaceUserPermissions(ctx context.Context, sess *session.Session, userID string, req ReplacePermissionsRequest) ([]PermissionRecord, error) {
	uid, err := parseID(userID, "user id")
	if err != nil {
		return nil, err
	}

	records := make([]model.UserPermission, 0, len(req.Records))
	seen := make(map[string]bool, len(req.Records))
	for _, rec := range req.Records {
		row := model.UserPermission{
			TenantID:    sess.TenantID,
			UserID:      uid,
			AccessLevel: rec.AccessLevel,
		}
		if row.AccessLevel == "" {
			row.AccessLevel = model.AccessLevelStaff
		}

		key := "*"
		if rec.LocationID != nil && *rec.LocationID != "" {
			locID, err := parseID(*rec.LocationID, "location_id")
			if err != nil {
				return nil, err
			}
			row.LocationID = &locID
			key = locID.String()
		}
		if seen[key] {
			return nil, invalid("duplicate permission record for location %s", key)
		}
		seen[key] = true

		set := permission.Set{}
		for _, name := range rec.Capabilities {
			c, ok := permission.Parse(name)
			if !ok {
				return nil, invalid("unknown capability %q", name)
			}
			set[c] = true
		}
		set.ApplyToRecord(&row)
		records = append(records, row)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByID(txCtx, sess.TenantID, uid)
		if err != nil {
			return notFoundOr(err, "user")
		}
		for _, row := range records {
			if row.LocationID == nil {
				continue
			}
			if _, err := s.locationRepo.FindByID(txCtx, sess.TenantID, *row.LocationID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("location %s does not belong to this tenant", *row.LocationID)
				}
				return fmt.Errorf("failed to check location: %w", err)
			}
		}
		if err := s.repo.ReplaceForUser(txCtx, sess.TenantID, uid, records); err != nil {
			return fmt.Errorf("failed to save permissions: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionUpdatePermissions,
			uid.String(), user.Email, req.Records))
	})
	if err != nil {
		return nil, err
	}

	s.ClearCache(uid)
	return toPermissionRecords(records), nil
}

// ClearCache drops the cached records of one user, or of everyone when userID is uuid.Nil.
func (s *permissionService) ClearCache(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if userID == uuid.Nil {
		s.cache.Range(func(key, _ interface{}) bool {
			s.cache.Delete(key)
			return true
		})
		return
	}
	s.cache.Delete(userID)
}

// --- Helpers ---

// locationScope resolves the location filter of a read. An explicit location must be
// visible to the session; otherwise the selected location applies, then the session scope.
func locationScope(sess *session.Session, requested *uuid.UUID) (*uuid.UUID, []uuid.UUID, error) {
	if requested != nil {
		if !sess.CanSee(*requested) {
			return nil, nil, fmt.Errorf("location %w", ErrForbidden)
		}
		return requested, nil, nil
	}
	if sess.LocationID != nil {
		return sess.LocationID, nil, nil
	}
	return nil, sess.Scope, nil
}

func (s *permissionService) records(ctx context.Context, tenantID, userID uuid.UUID) ([]model.UserPermission, error) {
	if entry, ok := s.cache.Load(userID); ok {
		cached := entry.(permCacheEntry)
		if s.now().Before(cached.expiresAt) {
			return cached.records, nil
		}
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	records, err := s.repo.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}

	s.mu.Lock()
	if gen == s.gen {
		s.cache.Store(userID, permCacheEntry{records: records, expiresAt: s.now().Add(s.ttl)})
	}
	s.mu.Unlock()
	return records, nil
}

func toPermissionRecords(records []model.UserPermission) []PermissionRecord {
	out := make([]PermissionRecord, 0, len(records))
	for _, r := range records {
		rec := PermissionRecord{AccessLevel: r.AccessLevel, Capabilities: []string{}}
		if r.LocationID != nil {
			id := r.LocationID.String()
			rec.LocationID = &id
		}
		for _, c := range permission.FromRecord(r).Granted() {
			rec.Capabilities = append(rec.Capabilities, string(c))
		}
		out = append(out, rec)
	}
	return out
}
