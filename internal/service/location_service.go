package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"
)

// --- DTOs ---

type LocationRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"omitempty,email"`
	IsActive *bool  `json:"is_active"`
}

type LocationResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type LocationService interface {
	CreateLocation(ctx context.Context, sess *session.Session, req LocationRequest) (LocationResponse, error)
	UpdateLocation(ctx context.Context, sess *session.Session, id string, req LocationRequest) (LocationResponse, error)
	DeleteLocation(ctx context.Context, sess *session.Session, id string) (deactivated bool, err error)
	GetLocation(ctx context.Context, sess *session.Session, id string) (LocationResponse, error)
	ListLocations(ctx context.Context, sess *session.Session, activeOnly bool) ([]LocationResponse, error)
}

// --- Implementation ---

type locationService struct {
	repo            repository.LocationRepository
	reservationRepo repository.ReservationRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
}

func NewLocationService(
	repo repository.LocationRepository,
	reservationRepo repository.ReservationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) LocationService {
	return &locationService{repo: repo, reservationRepo: reservationRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *locationService) CreateLocation(ctx context.Context, sess *session.Session, req LocationRequest) (LocationResponse, error) {
	loc := model.Location{
		TenantID: sess.TenantID,
		Name:     strings.TrimSpace(req.Name),
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: true,
	}
	if loc.Name == "" {
		return LocationResponse{}, invalid("name is required")
	}
	if req.IsActive != nil {
		loc.IsActive = *req.IsActive
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &loc); err != nil {
			return fmt.Errorf("failed to create location: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionCreateLocation, loc.ID.String(), loc.Name, req))
	})
	if err != nil {
		return LocationResponse{}, err
	}
	return toLocationResponse(loc), nil
}

func (s *locationService) UpdateLocation(ctx context.Context, sess *session.Session, id string, req LocationRequest) (LocationResponse, error) {
	locID, err := parseID(id, "location id")
	if err != nil {
		return LocationResponse{}, err
	}

	var loc *model.Location
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		loc, err = s.repo.FindByID(txCtx, sess.TenantID, locID)
		if err != nil {
			return notFoundOr(err, "location")
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			loc.Name = name
		}
		loc.Address = req.Address
		loc.Phone = req.Phone
		loc.Email = req.Email
		if req.IsActive != nil {
			loc.IsActive = *req.IsActive
		}
		if err := s.repo.Update(txCtx, loc); err != nil {
			return fmt.Errorf("failed to update location: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionUpdateLocation, loc.ID.String(), loc.Name, req))
	})
	if err != nil {
		return LocationResponse{}, err
	}
	return toLocationResponse(*loc), nil
}

// DeleteLocation removes a location, or only deactivates it while it still has active reservations.
func (s *locationService) DeleteLocation(ctx context.Context, sess *session.Session, id string) (bool, error) {
	locID, err := parseID(id, "location id")
	if err != nil {
		return false, err
	}

	deactivated := false
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		loc, err := s.repo.FindByID(txCtx, sess.TenantID, locID)
		if err != nil {
			return notFoundOr(err, "location")
		}
		active, err := s.reservationRepo.CountActiveForLocation(txCtx, sess.TenantID, locID)
		if err != nil {
			return fmt.Errorf("failed to count reservations: %w", err)
		}

		if active > 0 {
			deactivated = true
			loc.IsActive = false
			if err := s.repo.Update(txCtx, loc); err != nil {
				return fmt.Errorf("failed to deactivate location: %w", err)
			}
		} else if err := s.repo.Delete(txCtx, sess.TenantID, locID); err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}

		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionDeleteLocation, loc.ID.String(), loc.Name,
			map[string]interface{}{"deactivated": deactivated, "active_reservations": active}))
	})
	return deactivated, err
}

func (s *locationService) GetLocation(ctx context.Context, sess *session.Session, id string) (LocationResponse, error) {
	locID, err := parseID(id, "location id")
	if err != nil {
		return LocationResponse{}, err
	}
	loc, err := s.repo.FindByID(ctx, sess.TenantID, locID)
	if err != nil {
		return LocationResponse{}, notFoundOr(err, "location")
	}
	return toLocationResponse(*loc), nil
}

func (s *locationService) ListLocations(ctx context.Context, sess *session.Session, activeOnly bool) ([]LocationResponse, error) {
	list, err := s.repo.List(ctx, sess.TenantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}
	out := make([]LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLocationResponse(l))
	}
	return out, nil
}

func toLocationResponse(l model.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID.String(),
		Name:      l.Name,
		Address:   l.Address,
		Phone:     l.Phone,
		Email:     l.Email,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
}
