package service

import (
	"context"
	"fmt"
	"strings"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"
)

// --- DTOs ---

type RoomRequest struct {
	LocationID  string `json:"location_id" binding:"required"`
	RoomNo      string `json:"room_no" binding:"required"`
	RoomType    string `json:"room_type" binding:"omitempty,oneof=single double twin family suite dorm"`
	Capacity    int    `json:"capacity" binding:"omitempty,min=1"`
	BasePrice   string `json:"base_price"` // Decimal string
	Currency    string `json:"currency"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type RoomResponse struct {
	ID           string `json:"id"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name,omitempty"`
	RoomNo       string `json:"room_no"`
	RoomType     string `json:"room_type"`
	Capacity     int    `json:"capacity"`
	BasePrice    string `json:"base_price"`
	Currency     string `json:"currency"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
}

// --- Interface ---

type RoomService interface {
	CreateRoom(ctx context.Context, sess *session.Session, req RoomRequest) (RoomResponse, error)
	UpdateRoom(ctx context.Context, sess *session.Session, id string, req RoomRequest) (RoomResponse, error)
	DeleteRoom(ctx context.Context, sess *session.Session, id string) (deactivated bool, err error)
	GetRoom(ctx context.Context, sess *session.Session, id string) (RoomResponse, error)
	ListRooms(ctx context.Context, sess *session.Session, locationID string, activeOnly bool) ([]RoomResponse, error)
}

// --- Implementation ---

type roomService struct {
	repo            repository.RoomRepository
	locationRepo    repository.LocationRepository
	reservationRepo repository.ReservationRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
}

func NewRoomService(
	repo repository.RoomRepository,
	locationRepo repository.LocationRepository,
	reservationRepo repository.ReservationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) RoomService {
	return &roomService{
		repo:            repo,
		locationRepo:    locationRepo,
		reservationRepo: reservationRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, sess *session.Session, req RoomRequest) (RoomResponse, error) {
	room := model.Room{
		TenantID:    sess.TenantID,
		RoomNo:      strings.TrimSpace(req.RoomNo),
		RoomType:    model.RoomTypeDouble,
		Capacity:    2,
		Currency:    "USD",
		Description: req.Description,
		IsActive:    true,
	}
	if err := applyRoomRequest(&room, req); err != nil {
		return RoomResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		loc, err := s.locationRepo.FindByID(txCtx, sess.TenantID, room.LocationID)
		if err != nil {
			return notFoundOr(err, "location")
		}
		room.Location = loc
		if err := s.repo.Create(txCtx, &room); err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionCreateRoom, room.ID.String(), room.RoomNo, req))
	})
	if err != nil {
		return RoomResponse{}, err
	}
	return toRoomResponse(room), nil
}

func (s *roomService) UpdateRoom(ctx context.Context, sess *session.Session, id string, req RoomRequest) (RoomResponse, error) {
	roomID, err := parseID(id, "room id")
	if err != nil {
		return RoomResponse{}, err
	}

	var room *model.Room
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		room, err = s.repo.LockByID(txCtx, sess.TenantID, roomID)
		if err != nil {
			return notFoundOr(err, "room")
		}
		previousLocation := room.LocationID
		if err := applyRoomRequest(room, req); err != nil {
			return err
		}
		if room.LocationID != previousLocation {
			active, err := s.reservationRepo.CountActiveForRoom(txCtx, sess.TenantID, roomID)
			if err != nil {
				return fmt.Errorf("failed to count reservations: %w", err)
			}
			if active > 0 {
				return invalid("room has %d active reservations and cannot move to another location", active)
			}
		}
		loc, err := s.locationRepo.FindByID(txCtx, sess.TenantID, room.LocationID)
		if err != nil {
			return notFoundOr(err, "location")
		}
		room.Location = loc

		if err := s.repo.Update(txCtx, room); err != nil {
			return fmt.Errorf("failed to update room: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionUpdateRoom, room.ID.String(), room.RoomNo, req))
	})
	if err != nil {
		return RoomResponse{}, err
	}
	return toRoomResponse(*room), nil
}

// DeleteRoom removes a room, or only deactivates it while it still has active reservations.
func (s *roomService) DeleteRoom(ctx context.Context, sess *session.Session, id string) (bool, error) {
	roomID, err := parseID(id, "room id")
	if err != nil {
		return false, err
	}

	deactivated := false
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		room, err := s.repo.LockByID(txCtx, sess.TenantID, roomID)
		if err != nil {
			return notFoundOr(err, "room")
		}
		active, err := s.reservationRepo.CountActiveForRoom(txCtx, sess.TenantID, roomID)
		if err != nil {
			return fmt.Errorf("failed to count reservations: %w", err)
		}

		if active > 0 {
			deactivated = true
			room.IsActive = false
			if err := s.repo.Update(txCtx, room); err != nil {
				return fmt.Errorf("failed to deactivate room: %w", err)
			}
		} else if err := s.repo.Delete(txCtx, sess.TenantID, roomID); err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}

		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionDeleteRoom, room.ID.String(), room.RoomNo,
			map[string]interface{}{"deactivated": deactivated, "active_reservations": active}))
	})
	return deactivated, err
}

func (s *roomService) GetRoom(ctx context.Context, sess *session.Session, id string) (RoomResponse, error) {
	roomID, err := parseID(id, "room id")
	if err != nil {
		return RoomResponse{}, err
	}
	room, err := s.repo.FindByID(ctx, sess.TenantID, roomID)
	if err != nil {
		return RoomResponse{}, notFoundOr(err, "room")
	}
	if !sess.CanSee(room.LocationID) {
		return RoomResponse{}, fmt.Errorf("room %w", ErrNotFound)
	}
	return toRoomResponse(*room), nil
}

func (s *roomService) ListRooms(ctx context.Context, sess *session.Session, locationID string, activeOnly bool) ([]RoomResponse, error) {
	requested, err := parseOptionalID(locationID, "location_id")
	if err != nil {
		return nil, err
	}
	locID, _, err := locationScope(sess, requested)
	if err != nil {
		return nil, err
	}
	rooms, err := s.repo.List(ctx, sess.TenantID, locID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		if !sess.CanSee(r.LocationID) {
			continue
		}
		out = append(out, toRoomResponse(r))
	}
	return out, nil
}

// --- Helpers ---

func applyRoomRequest(room *model.Room, req RoomRequest) error {
	locID, err := parseID(req.LocationID, "location_id")
	if err != nil {
		return err
	}
	room.LocationID = locID

	if no := strings.TrimSpace(req.RoomNo); no != "" {
		room.RoomNo = no
	}
	if room.RoomNo == "" {
		return invalid("room_no is required")
	}
	if req.RoomType != "" {
		room.RoomType = req.RoomType
	}
	if req.Capacity > 0 {
		room.Capacity = req.Capacity
	}
	if req.BasePrice != "" {
		price, err := parseAmount(req.BasePrice, "base_price")
		if err != nil {
			return err
		}
		room.BasePrice = price
	}
	if req.Currency != "" {
		room.Currency = strings.ToUpper(req.Currency)
	}
	if req.Description != "" {
		room.Description = req.Description
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	return nil
}

func toRoomResponse(r model.Room) RoomResponse {
	resp := RoomResponse{
		ID:          r.ID.String(),
		LocationID:  r.LocationID.String(),
		RoomNo:      r.RoomNo,
		RoomType:    r.RoomType,
		Capacity:    r.Capacity,
		BasePrice:   r.BasePrice.StringFixed(2),
		Currency:    r.Currency,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
	if r.Location != nil {
		resp.LocationName = r.Location.Name
	}
	return resp
}
