package service

import (
	"context"
	"sort"
	"time"

	"stayhub/internal/metrics"
	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// --- DTOs ---

type ConflictResponse struct {
	ReservationID string `json:"reservation_id"`
	ReservationNo string `json:"reservation_no"`
	GuestName     string `json:"guest_name"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
	Status        string `json:"status"`
}

type AvailabilityResult struct {
	RoomID       string             `json:"room_id"`
	CheckInDate  string             `json:"check_in_date"`
	CheckOutDate string             `json:"check_out_date"`
	IsAvailable  bool               `json:"is_available"`
	Conflicts    []ConflictResponse `json:"conflicts"`
	// Degraded is set when the lookup failed and the result defaulted to available.
	Degraded bool `json:"degraded,omitempty"`
}

type RoomAvailability struct {
	RoomID       string             `json:"room_id"`
	RoomNo       string             `json:"room_no"`
	RoomType     string             `json:"room_type"`
	Capacity     int                `json:"capacity"`
	BasePrice    string             `json:"base_price"`
	Currency     string             `json:"currency"`
	LocationID   string             `json:"location_id"`
	LocationName string             `json:"location_name"`
	IsAvailable  bool               `json:"is_available"`
	Conflicts    []ConflictResponse `json:"conflicts"`
	Degraded     bool               `json:"degraded,omitempty"`
}

type AlternativesResponse struct {
	Requested      AvailabilityResult `json:"requested"`
	SameLocation   []RoomAvailability `json:"same_location"`
	OtherLocations []RoomAvailability `json:"other_locations"`
}

// --- Interface ---

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, sess *session.Session, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) (*AvailabilityResult, error)
	GetAvailableRooms(ctx context.Context, sess *session.Session, checkIn, checkOut time.Time, locationID *uuid.UUID) ([]RoomAvailability, error)
	SuggestAlternatives(ctx context.Context, sess *session.Session, roomID uuid.UUID, checkIn, checkOut time.Time) (*AlternativesResponse, error)
}

// --- Implementation ---

const defaultAvailabilityConcurrency = 8

type availabilityService struct {
	reservationRepo repository.ReservationRepository
	roomRepo        repository.RoomRepository
	concurrency     int
	log             zerolog.Logger
}

func NewAvailabilityService(
	reservationRepo repository.ReservationRepository,
	roomRepo repository.RoomRepository,
	concurrency int,
	log zerolog.Logger,
) AvailabilityService {
	if concurrency <= 0 {
		concurrency = defaultAvailabilityConcurrency
	}
	return &availabilityService{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		concurrency:     concurrency,
		log:             log,
	}
}

// CheckAvailability is advisory: when the lookup fails the room is reported available
// with no conflicts and Degraded set. Reservation writes re-check inside their transaction.
func (s *availabilityService) CheckAvailability(ctx context.Context, sess *session.Session, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) (*AvailabilityResult, error) {
	checkIn, checkOut = model.DateOnly(checkIn), model.DateOnly(checkOut)
	if err := ValidateStayDates(checkIn, checkOut); err != nil {
		return nil, err
	}

	conflicts, degraded, err := s.conflictsFor(ctx, sess.TenantID, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResult{
		RoomID:       roomID.String(),
		CheckInDate:  formatDate(checkIn),
		CheckOutDate: formatDate(checkOut),
		IsAvailable:  len(conflicts) == 0,
		Conflicts:    conflicts,
		Degraded:     degraded,
	}, nil
}

// GetAvailableRooms checks every active room (optionally of one location) concurrently.
// Cancelling ctx abandons the remaining checks.
func (s *availabilityService) GetAvailableRooms(ctx context.Context, sess *session.Session, checkIn, checkOut time.Time, locationID *uuid.UUID) ([]RoomAvailability, error) {
	checkIn, checkOut = model.DateOnly(checkIn), model.DateOnly(checkOut)
	if err := ValidateStayDates(checkIn, checkOut); err != nil {
		return nil, err
	}

	listed, err := s.roomRepo.List(ctx, sess.TenantID, locationID, true)
	if err != nil {
		return nil, notFoundOr(err, "rooms")
	}
	rooms := listed[:0:0]
	for _, room := range listed {
		if room.Bookable() {
			rooms = append(rooms, room)
		}
	}

	results := make([]RoomAvailability, len(rooms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, room := range rooms {
		g.Go(func() error {
			conflicts, degraded, err := s.conflictsFor(gctx, sess.TenantID, room.ID, checkIn, checkOut, nil)
			if err != nil {
				return err
			}
			results[i] = toRoomAvailability(room, conflicts, degraded)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *availabilityService) SuggestAlternatives(ctx context.Context, sess *session.Session, roomID uuid.UUID, checkIn, checkOut time.Time) (*AlternativesResponse, error) {
	room, err := s.roomRepo.FindByID(ctx, sess.TenantID, roomID)
	if err != nil {
		return nil, notFoundOr(err, "room")
	}

	requested, err := s.CheckAvailability(ctx, sess, roomID, checkIn, checkOut, nil)
	if err != nil {
		return nil, err
	}

	all, err := s.GetAvailableRooms(ctx, sess, checkIn, checkOut, nil)
	if err != nil {
		return nil, err
	}

	resp := &AlternativesResponse{
		Requested:      *requested,
		SameLocation:   []RoomAvailability{},
		OtherLocations: []RoomAvailability{},
	}
	for _, ra := range all {
		if ra.RoomID == room.ID.String() || !ra.IsAvailable {
			continue
		}
		if ra.LocationID == room.LocationID.String() {
			resp.SameLocation = append(resp.SameLocation, ra)
		} else {
			resp.OtherLocations = append(resp.OtherLocations, ra)
		}
	}

	// rooms of the same type first
	byType := func(list []RoomAvailability) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].RoomType == room.RoomType && list[j].RoomType != room.RoomType
		})
	}
	byType(resp.SameLocation)
	byType(resp.OtherLocations)

	return resp, nil
}

// --- Helpers ---

// conflictsFor returns the blocking reservations of a room. A failed lookup yields no
// conflicts and degraded=true; only a cancelled context is returned as an error.
func (s *availabilityService) conflictsFor(ctx context.Context, tenantID, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]ConflictResponse, bool, error) {
	existing, err := s.reservationRepo.FindOverlapping(ctx, tenantID, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		s.log.Warn().Err(err).
			Str("tenant_id", tenantID.String()).
			Str("room_id", roomID.String()).
			Msg("availability lookup failed, reporting room as available")
		metrics.AvailabilityChecks.WithLabelValues("degraded").Inc()
		return []ConflictResponse{}, true, nil
	}

	conflicts := filterConflicts(existing, checkIn, checkOut, excludeID)
	if len(conflicts) == 0 {
		metrics.AvailabilityChecks.WithLabelValues("available").Inc()
	} else {
		metrics.AvailabilityChecks.WithLabelValues("unavailable").Inc()
	}
	return conflicts, false, nil
}

// filterConflicts keeps reservations that block the room, overlap [checkIn, checkOut)
// and are not the excluded one.
func filterConflicts(existing []model.Reservation, checkIn, checkOut time.Time, excludeID *uuid.UUID) []ConflictResponse {
	out := make([]ConflictResponse, 0, len(existing))
	for _, r := range existing {
		if !r.Blocks() || !r.OverlapsWith(checkIn, checkOut) {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		out = append(out, toConflictResponse(r))
	}
	return out
}

func toConflictResponse(r model.Reservation) ConflictResponse {
	return ConflictResponse{
		ReservationID: r.ID.String(),
		ReservationNo: r.ReservationNo,
		GuestName:     r.GuestName,
		CheckInDate:   formatDate(r.CheckInDate),
		CheckOutDate:  formatDate(r.CheckOutDate),
		Status:        r.Status,
	}
}

func toRoomAvailability(room model.Room, conflicts []ConflictResponse, degraded bool) RoomAvailability {
	ra := RoomAvailability{
		RoomID:      room.ID.String(),
		RoomNo:      room.RoomNo,
		RoomType:    room.RoomType,
		Capacity:    room.Capacity,
		BasePrice:   room.BasePrice.StringFixed(2),
		Currency:    room.Currency,
		LocationID:  room.LocationID.String(),
		IsAvailable: len(conflicts) == 0,
		Conflicts:   conflicts,
		Degraded:    degraded,
	}
	if room.Location != nil {
		ra.LocationName = room.Location.Name
	}
	return ra
}
