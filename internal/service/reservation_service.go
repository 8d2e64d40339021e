package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"stayhub/internal/metrics"
	"stayhub/internal/model"
	"stayhub/internal/queue"
	"stayhub/internal/repository"
	"stayhub/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateReservationRequest struct {
	RoomID           string `json:"room_id" binding:"required"`
	CheckInDate      string `json:"check_in_date" binding:"required"`
	CheckOutDate     string `json:"check_out_date" binding:"required"`
	Status           string `json:"status" binding:"omitempty,oneof=tentative confirmed"`
	BookingSource    string `json:"booking_source" binding:"omitempty,oneof=direct beds24 booking_com airbnb other"`
	GuestName        string `json:"guest_name" binding:"required"`
	GuestEmail       string `json:"guest_email" binding:"omitempty,email"`
	GuestPhone       string `json:"guest_phone"`
	GuestNationality string `json:"guest_nationality"`
	Adults           int    `json:"adults" binding:"omitempty,min=1"`
	Children         int    `json:"children" binding:"omitempty,min=0"`
	RoomRate         string `json:"room_rate"`      // Decimal string, defaults to the room's base price
	TotalAmount      string `json:"total_amount"`   // Decimal string, defaults to nights * room_rate
	AdvanceAmount    string `json:"advance_amount"` // Decimal string
	Currency         string `json:"currency"`
	SpecialRequests  string `json:"special_requests"`
}

// UpdateReservationRequest changes only the fields that are set.
type UpdateReservationRequest struct {
	RoomID           string  `json:"room_id"`
	CheckInDate      string  `json:"check_in_date"`
	CheckOutDate     string  `json:"check_out_date"`
	BookingSource    string  `json:"booking_source" binding:"omitempty,oneof=direct beds24 booking_com airbnb other"`
	GuestName        string  `json:"guest_name"`
	GuestEmail       string  `json:"guest_email" binding:"omitempty,email"`
	GuestPhone       string  `json:"guest_phone"`
	GuestNationality string  `json:"guest_nationality"`
	Adults           int     `json:"adults" binding:"omitempty,min=1"`
	Children         *int    `json:"children" binding:"omitempty,min=0"`
	RoomRate         string  `json:"room_rate"`
	TotalAmount      string  `json:"total_amount"`
	AdvanceAmount    string  `json:"advance_amount"`
	Currency         string  `json:"currency"`
	SpecialRequests  *string `json:"special_requests"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=tentative confirmed checked_in checked_out cancelled"`
}

type ListReservationsQuery struct {
	LocationID string `form:"location_id"`
	RoomID     string `form:"room_id"`
	Status     string `form:"status"`
	From       string `form:"from"`
	To         string `form:"to"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type ReservationResponse struct {
	ID               string `json:"id"`
	ReservationNo    string `json:"reservation_no"`
	LocationID       string `json:"location_id"`
	RoomID           string `json:"room_id"`
	RoomNo           string `json:"room_no"`
	CheckInDate      string `json:"check_in_date"`
	CheckOutDate     string `json:"check_out_date"`
	Nights           int    `json:"nights"`
	Status           string `json:"status"`
	BookingSource    string `json:"booking_source"`
	GuestName        string `json:"guest_name"`
	GuestEmail       string `json:"guest_email"`
	GuestPhone       string `json:"guest_phone"`
	GuestNationality string `json:"guest_nationality"`
	Adults           int    `json:"adults"`
	Children         int    `json:"children"`
	RoomRate         string `json:"room_rate"`
	TotalAmount      string `json:"total_amount"`
	AdvanceAmount    string `json:"advance_amount"`
	PaidAmount       string `json:"paid_amount"`
	BalanceAmount    string `json:"balance_amount"`
	Currency         string `json:"currency"`
	SpecialRequests  string `json:"special_requests"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type CalendarEntry struct {
	ReservationID string `json:"reservation_id"`
	ReservationNo string `json:"reservation_no"`
	GuestName     string `json:"guest_name"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
	Status        string `json:"status"`
}

type CalendarRoom struct {
	RoomID       string          `json:"room_id"`
	RoomNo       string          `json:"room_no"`
	RoomType     string          `json:"room_type"`
	LocationID   string          `json:"location_id"`
	Reservations []CalendarEntry `json:"reservations"`
}

type CalendarResponse struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Rooms []CalendarRoom `json:"rooms"`
}

// --- Interface ---

type ReservationService interface {
	CreateReservation(ctx context.Context, sess *session.Session, req CreateReservationRequest) (ReservationResponse, error)
	UpdateReservation(ctx context.Context, sess *session.Session, id string, req UpdateReservationRequest) (ReservationResponse, error)
	UpdateStatus(ctx context.Context, sess *session.Session, id string, req UpdateStatusRequest) (ReservationResponse, error)
	CancelReservation(ctx context.Context, sess *session.Session, id string) (ReservationResponse, error)
	GetReservation(ctx context.Context, sess *session.Session, id string) (ReservationResponse, error)
	ListReservations(ctx context.Context, sess *session.Session, q ListReservationsQuery) ([]ReservationResponse, int64, error)
	GetCalendar(ctx context.Context, sess *session.Session, from, to string, locationID string) (CalendarResponse, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	roomRepo        repository.RoomRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	notify          notifier
	now             func() time.Time
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	roomRepo repository.RoomRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	broadcaster Broadcaster,
	log zerolog.Logger,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		notify:          notifier{publisher: publisher, broadcaster: broadcaster, log: log},
		now:             time.Now,
	}
}

// --- Implementation ---

func (s *reservationService) CreateReservation(ctx context.Context, sess *session.Session, req CreateReservationRequest) (ReservationResponse, error) {
	roomID, err := parseID(req.RoomID, "room_id")
	if err != nil {
		return ReservationResponse{}, err
	}
	checkIn, err := parseDateField(req.CheckInDate, "check_in_date")
	if err != nil {
		return ReservationResponse{}, err
	}
	checkOut, err := parseDateField(req.CheckOutDate, "check_out_date")
	if err != nil {
		return ReservationResponse{}, err
	}
	if err := ValidateStayDates(checkIn, checkOut); err != nil {
		return ReservationResponse{}, err
	}

	res := model.Reservation{
		TenantID:         sess.TenantID,
		RoomID:           roomID,
		CheckInDate:      checkIn,
		CheckOutDate:     checkOut,
		Status:           model.StatusTentative,
		BookingSource:    model.SourceDirect,
		GuestName:        strings.TrimSpace(req.GuestName),
		GuestEmail:       req.GuestEmail,
		GuestPhone:       req.GuestPhone,
		GuestNationality: req.GuestNationality,
		Adults:           1,
		Children:         req.Children,
		Currency:         strings.ToUpper(req.Currency),
		SpecialRequests:  req.SpecialRequests,
	}
	if req.Status != "" {
		res.Status = req.Status
	}
	if req.BookingSource != "" {
		res.BookingSource = req.BookingSource
	}
	if req.Adults > 0 {
		res.Adults = req.Adults
	}
	if res.GuestName == "" {
		return ReservationResponse{}, invalid("guest_name is required")
	}
	if sess.UserID != uuid.Nil {
		uid := sess.UserID
		res.CreatedBy = &uid
	}

	var room *model.Room
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		room, err = s.lockBookableRoom(txCtx, sess, roomID, res.Adults+res.Children)
		if err != nil {
			return err
		}
		if err := s.ensureNoConflicts(txCtx, sess.TenantID, roomID, checkIn, checkOut, nil); err != nil {
			return err
		}

		res.LocationID = room.LocationID
		if res.Currency == "" {
			res.Currency = room.Currency
		}
		if err := applyPricing(&res, room, req.RoomRate, req.TotalAmount, req.AdvanceAmount, true); err != nil {
			return err
		}

		seq, err := s.reservationRepo.NextSequence(txCtx, sess.TenantID, s.now().Year())
		if err != nil {
			return fmt.Errorf("failed to allocate reservation number: %w", err)
		}
		res.ReservationNo = fmt.Sprintf("RES-%d-%06d", s.now().Year(), seq)

		if err := s.reservationRepo.Create(txCtx, &res); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionCreateReservation,
			res.ID.String(), res.ReservationNo, map[string]interface{}{
				"room_id":        res.RoomID.String(),
				"check_in_date":  formatDate(res.CheckInDate),
				"check_out_date": formatDate(res.CheckOutDate),
				"guest_name":     res.GuestName,
				"total_amount":   res.TotalAmount.StringFixed(2),
			}))
	})
	if err != nil {
		metrics.ReservationWrites.WithLabelValues("create", resultLabel(err)).Inc()
		return ReservationResponse{}, err
	}
	metrics.ReservationWrites.WithLabelValues("create", "ok").Inc()

	res.Room = room
	resp := toReservationResponse(res)
	s.notify.reservationChanged(ctx, queue.EventReservationCreated, "", &res, resp)
	return resp, nil
}

func (s *reservationService) UpdateReservation(ctx context.Context, sess *session.Session, id string, req UpdateReservationRequest) (ReservationResponse, error) {
	resID, err := parseID(id, "reservation id")
	if err != nil {
		return ReservationResponse{}, err
	}

	var res *model.Reservation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		res, err = s.reservationRepo.FindByIDForUpdate(txCtx, sess.TenantID, resID)
		if err != nil {
			return notFoundOr(err, "reservation")
		}
		if !sess.CanSee(res.LocationID) {
			return fmt.Errorf("reservation %w", ErrNotFound)
		}
		if res.Status == model.StatusCancelled || res.Status == model.StatusCheckedOut {
			return invalid("reservation is %s and can no longer be changed", res.Status)
		}

		before := map[string]interface{}{
			"room_id":        res.RoomID.String(),
			"check_in_date":  formatDate(res.CheckInDate),
			"check_out_date": formatDate(res.CheckOutDate),
			"total_amount":   res.TotalAmount.StringFixed(2),
		}

		roomID, checkIn, checkOut := res.RoomID, res.CheckInDate, res.CheckOutDate
		if req.RoomID != "" {
			if roomID, err = parseID(req.RoomID, "room_id"); err != nil {
				return err
			}
		}
		if req.CheckInDate != "" {
			if checkIn, err = parseDateField(req.CheckInDate, "check_in_date"); err != nil {
				return err
			}
		}
		if req.CheckOutDate != "" {
			if checkOut, err = parseDateField(req.CheckOutDate, "check_out_date"); err != nil {
				return err
			}
		}
		if err := ValidateStayDates(checkIn, checkOut); err != nil {
			return err
		}

		applyGuestChanges(res, req)

		stayChanged := roomID != res.RoomID || !checkIn.Equal(res.CheckInDate) || !checkOut.Equal(res.CheckOutDate)
		room := res.Room
		if stayChanged || room == nil {
			room, err = s.lockBookableRoom(txCtx, sess, roomID, res.Adults+res.Children)
			if err != nil {
				return err
			}
		} else if err := checkCapacity(room, res.Adults+res.Children); err != nil {
			return err
		}
		if stayChanged {
			if err := s.ensureNoConflicts(txCtx, sess.TenantID, roomID, checkIn, checkOut, &res.ID); err != nil {
				return err
			}
			res.RoomID, res.LocationID = room.ID, room.LocationID
			res.CheckInDate, res.CheckOutDate = checkIn, checkOut
		}
		res.Room = room

		repriced := stayChanged || req.RoomRate != "" || req.TotalAmount != ""
		if err := applyPricing(res, room, req.RoomRate, req.TotalAmount, req.AdvanceAmount, repriced); err != nil {
			return err
		}
		if req.Currency != "" {
			res.Currency = strings.ToUpper(req.Currency)
		}

		if err := s.reservationRepo.Update(txCtx, res); err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}

		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionUpdateReservation,
			res.ID.String(), res.ReservationNo, map[string]interface{}{
				"before": before,
				"after": map[string]interface{}{
					"room_id":        res.RoomID.String(),
					"check_in_date":  formatDate(res.CheckInDate),
					"check_out_date": formatDate(res.CheckOutDate),
					"total_amount":   res.TotalAmount.StringFixed(2),
				},
			}))
	})
	if err != nil {
		metrics.ReservationWrites.WithLabelValues("update", resultLabel(err)).Inc()
		return ReservationResponse{}, err
	}
	metrics.ReservationWrites.WithLabelValues("update", "ok").Inc()

	resp := toReservationResponse(*res)
	s.notify.reservationChanged(ctx, queue.EventReservationUpdated, "", res, resp)
	return resp, nil
}

func (s *reservationService) UpdateStatus(ctx context.Context, sess *session.Session, id string, req UpdateStatusRequest) (ReservationResponse, error) {
	resID, err := parseID(id, "reservation id")
	if err != nil {
		return ReservationResponse{}, err
	}
	if !model.ValidStatus(req.Status) {
		return ReservationResponse{}, invalid("invalid status %q", req.Status)
	}

	var res *model.Reservation
	var previous string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		res, err = s.reservationRepo.FindByIDForUpdate(txCtx, sess.TenantID, resID)
		if err != nil {
			return notFoundOr(err, "reservation")
		}
		if !sess.CanSee(res.LocationID) {
			return fmt.Errorf("reservation %w", ErrNotFound)
		}
		previous = res.Status
		if previous == req.Status {
			return nil
		}
		if !model.CanTransition(previous, req.Status) {
			return invalid("cannot change status from %s to %s", previous, req.Status)
		}

		res.Status = req.Status
		if err := s.reservationRepo.Update(txCtx, res); err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}

		action := model.ActionChangeReservationStatus
		if req.Status == model.StatusCancelled {
			action = model.ActionCancelReservation
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, action,
			res.ID.String(), res.ReservationNo, map[string]interface{}{
				"from": previous,
				"to":   req.Status,
			}))
	})
	if err != nil {
		metrics.ReservationWrites.WithLabelValues("status", resultLabel(err)).Inc()
		return ReservationResponse{}, err
	}
	metrics.ReservationWrites.WithLabelValues("status", "ok").Inc()

	resp := toReservationResponse(*res)
	if previous != res.Status {
		eventType := queue.EventReservationStatusChanged
		if res.Status == model.StatusCancelled {
			eventType = queue.EventReservationCancelled
		}
		s.notify.reservationChanged(ctx, eventType, previous, res, resp)
	}
	return resp, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, sess *session.Session, id string) (ReservationResponse, error) {
	return s.UpdateStatus(ctx, sess, id, UpdateStatusRequest{Status: model.StatusCancelled})
}

func (s *reservationService) GetReservation(ctx context.Context, sess *session.Session, id string) (ReservationResponse, error) {
	resID, err := parseID(id, "reservation id")
	if err != nil {
		return ReservationResponse{}, err
	}
	res, err := s.reservationRepo.FindByID(ctx, sess.TenantID, resID)
	if err != nil {
		return ReservationResponse{}, notFoundOr(err, "reservation")
	}
	if !sess.CanSee(res.LocationID) {
		return ReservationResponse{}, fmt.Errorf("reservation %w", ErrNotFound)
	}
	return toReservationResponse(*res), nil
}

func (s *reservationService) ListReservations(ctx context.Context, sess *session.Session, q ListReservationsQuery) ([]ReservationResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit, 20)
	f := repository.ReservationFilter{
		Status: q.Status,
		Search: strings.TrimSpace(q.Search),
		Page:   page,
		Limit:  limit,
	}

	requested, err := parseOptionalID(q.LocationID, "location_id")
	if err != nil {
		return nil, 0, err
	}
	if f.LocationID, f.Within, err = locationScope(sess, requested); err != nil {
		return nil, 0, err
	}
	if f.RoomID, err = parseOptionalID(q.RoomID, "room_id"); err != nil {
		return nil, 0, err
	}
	if q.Status != "" && !model.ValidStatus(q.Status) {
		return nil, 0, invalid("invalid status %q", q.Status)
	}
	if q.From != "" {
		from, err := parseDateField(q.From, "from")
		if err != nil {
			return nil, 0, err
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := parseDateField(q.To, "to")
		if err != nil {
			return nil, 0, err
		}
		f.To = &to
	}

	list, total, err := s.reservationRepo.List(ctx, sess.TenantID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reservations: %w", err)
	}

	result := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		result = append(result, toReservationResponse(r))
	}
	return result, total, nil
}

// GetCalendar groups the stays overlapping [from, to) by room. Every active room is listed,
// including rooms without reservations.
func (s *reservationService) GetCalendar(ctx context.Context, sess *session.Session, from, to string, locationID string) (CalendarResponse, error) {
	fromDate, err := parseDateField(from, "from")
	if err != nil {
		return CalendarResponse{}, err
	}
	toDate, err := parseDateField(to, "to")
	if err != nil {
		return CalendarResponse{}, err
	}
	if err := ValidateStayDates(fromDate, toDate); err != nil {
		return CalendarResponse{}, err
	}
	requested, err := parseOptionalID(locationID, "location_id")
	if err != nil {
		return CalendarResponse{}, err
	}
	locID, _, err := locationScope(sess, requested)
	if err != nil {
		return CalendarResponse{}, err
	}

	listed, err := s.roomRepo.List(ctx, sess.TenantID, locID, true)
	if err != nil {
		return CalendarResponse{}, fmt.Errorf("failed to fetch rooms: %w", err)
	}
	list, err := s.reservationRepo.ListInRange(ctx, sess.TenantID, fromDate, toDate, locID)
	if err != nil {
		return CalendarResponse{}, fmt.Errorf("failed to fetch reservations: %w", err)
	}

	rooms := listed[:0:0]
	for _, room := range listed {
		if sess.CanSee(room.LocationID) {
			rooms = append(rooms, room)
		}
	}
	byRoom := make(map[uuid.UUID][]CalendarEntry, len(rooms))
	for _, r := range list {
		if !sess.CanSee(r.LocationID) {
			continue
		}
		byRoom[r.RoomID] = append(byRoom[r.RoomID], CalendarEntry{
			ReservationID: r.ID.String(),
			ReservationNo: r.ReservationNo,
			GuestName:     r.GuestName,
			CheckInDate:   formatDate(r.CheckInDate),
			CheckOutDate:  formatDate(r.CheckOutDate),
			Status:        r.Status,
		})
	}

	resp := CalendarResponse{From: formatDate(fromDate), To: formatDate(toDate), Rooms: make([]CalendarRoom, 0, len(rooms))}
	for _, room := range rooms {
		entries := byRoom[room.ID]
		if entries == nil {
			entries = []CalendarEntry{}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].CheckInDate < entries[j].CheckInDate })
		resp.Rooms = append(resp.Rooms, CalendarRoom{
			RoomID:       room.ID.String(),
			RoomNo:       room.RoomNo,
			RoomType:     room.RoomType,
			LocationID:   room.LocationID.String(),
			Reservations: entries,
		})
	}
	return resp, nil
}

// --- Helpers ---

func (s *reservationService) lockBookableRoom(ctx context.Context, sess *session.Session, roomID uuid.UUID, guests int) (*model.Room, error) {
	room, err := s.roomRepo.LockByID(ctx, sess.TenantID, roomID)
	if err != nil {
		return nil, notFoundOr(err, "room")
	}
	if !sess.CanSee(room.LocationID) {
		return nil, fmt.Errorf("room %w", ErrNotFound)
	}
	if !room.IsActive {
		return nil, invalid("room %s is inactive", room.RoomNo)
	}
	if !room.Bookable() {
		return nil, invalid("location of room %s is inactive", room.RoomNo)
	}
	if err := checkCapacity(room, guests); err != nil {
		return nil, err
	}
	return room, nil
}

func checkCapacity(room *model.Room, guests int) error {
	if room.Capacity > 0 && guests > room.Capacity {
		return invalid("room %s holds at most %d guests", room.RoomNo, room.Capacity)
	}
	return nil
}

// ensureNoConflicts is the authoritative check run inside the write transaction. Unlike the
// advisory availability lookup it fails closed: a query error aborts the write.
func (s *reservationService) ensureNoConflicts(ctx context.Context, tenantID, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) error {
	existing, err := s.reservationRepo.FindOverlapping(ctx, tenantID, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check availability: %w", err)
	}
	if conflicts := filterConflicts(existing, checkIn, checkOut, excludeID); len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// applyPricing sets rate, total, advance and balance. When repriced is false the stored rate
// and total are kept unless explicitly given.
func applyPricing(res *model.Reservation, room *model.Room, rateStr, totalStr, advanceStr string, repriced bool) error {
	if rateStr != "" {
		rate, err := parseAmount(rateStr, "room_rate")
		if err != nil {
			return err
		}
		res.RoomRate = rate
	} else if res.RoomRate.IsZero() && room != nil {
		res.RoomRate = room.BasePrice
	}

	if totalStr != "" {
		total, err := parseAmount(totalStr, "total_amount")
		if err != nil {
			return err
		}
		res.TotalAmount = total
	} else if repriced {
		res.TotalAmount = res.RoomRate.Mul(decimal.NewFromInt(int64(res.Nights())))
	}

	if advanceStr != "" {
		advance, err := parseAmount(advanceStr, "advance_amount")
		if err != nil {
			return err
		}
		res.AdvanceAmount = advance
	}
	if res.AdvanceAmount.GreaterThan(res.TotalAmount) {
		return invalid("advance_amount must not exceed total_amount")
	}
	if res.PaidAmount.LessThan(res.AdvanceAmount) {
		res.PaidAmount = res.AdvanceAmount
	}
	res.RecalculateBalance()
	return nil
}

func applyGuestChanges(res *model.Reservation, req UpdateReservationRequest) {
	if name := strings.TrimSpace(req.GuestName); name != "" {
		res.GuestName = name
	}
	if req.GuestEmail != "" {
		res.GuestEmail = req.GuestEmail
	}
	if req.GuestPhone != "" {
		res.GuestPhone = req.GuestPhone
	}
	if req.GuestNationality != "" {
		res.GuestNationality = req.GuestNationality
	}
	if req.BookingSource != "" {
		res.BookingSource = req.BookingSource
	}
	if req.Adults > 0 {
		res.Adults = req.Adults
	}
	if req.Children != nil {
		res.Children = *req.Children
	}
	if req.SpecialRequests != nil {
		res.SpecialRequests = *req.SpecialRequests
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isConflict(err):
		return "conflict"
	case isValidation(err):
		return "invalid"
	default:
		return "error"
	}
}

func toReservationResponse(r model.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:               r.ID.String(),
		ReservationNo:    r.ReservationNo,
		LocationID:       r.LocationID.String(),
		RoomID:           r.RoomID.String(),
		CheckInDate:      formatDate(r.CheckInDate),
		CheckOutDate:     formatDate(r.CheckOutDate),
		Nights:           r.Nights(),
		Status:           r.Status,
		BookingSource:    r.BookingSource,
		GuestName:        r.GuestName,
		GuestEmail:       r.GuestEmail,
		GuestPhone:       r.GuestPhone,
		GuestNationality: r.GuestNationality,
		Adults:           r.Adults,
		Children:         r.Children,
		RoomRate:         r.RoomRate.StringFixed(2),
		TotalAmount:      r.TotalAmount.StringFixed(2),
		AdvanceAmount:    r.AdvanceAmount.StringFixed(2),
		PaidAmount:       r.PaidAmount.StringFixed(2),
		BalanceAmount:    r.BalanceAmount.StringFixed(2),
		Currency:         r.Currency,
		SpecialRequests:  r.SpecialRequests,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Room != nil {
		resp.RoomNo = r.Room.RoomNo
	}
	return resp
}
