package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/queue"
	"stayhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reservationFixture struct {
	resRepo   *mockReservationRepo
	roomRepo  *mockRoomRepo
	auditRepo *mockAuditRepo
	publisher *recordingPublisher
	hub       *recordingBroadcaster
	svc       *reservationService
}

func newReservationFixture() *reservationFixture {
	f := &reservationFixture{
		resRepo:   new(mockReservationRepo),
		roomRepo:  new(mockRoomRepo),
		auditRepo: new(mockAuditRepo),
		publisher: &recordingPublisher{},
		hub:       &recordingBroadcaster{},
	}
	svc := NewReservationService(f.resRepo, f.roomRepo, f.auditRepo, inlineTx{}, f.publisher, f.hub, zerolog.Nop()).(*reservationService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

func bookableRoom() *model.Room {
	return &model.Room{
		ID:         uuid.New(),
		LocationID: uuid.New(),
		RoomNo:     "101",
		RoomType:   model.RoomTypeDouble,
		Capacity:   2,
		BasePrice:  decimal.RequireFromString("80.00"),
		Currency:   "EUR",
		IsActive:   true,
	}
}

func TestCreateReservation_PricesAndNumbers(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	room := bookableRoom()

	f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)
	f.resRepo.On("FindOverlapping", mock.Anything, sess.TenantID, room.ID, date("2026-04-01"), date("2026-04-04"), (*uuid.UUID)(nil)).
		Return([]model.Reservation{booking(room.ID, "2026-03-28", "2026-04-01", model.StatusConfirmed)}, nil)
	f.resRepo.On("NextSequence", mock.Anything, sess.TenantID, 2026).Return(int64(42), nil)
	f.resRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Reservation")).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionCreateReservation
	})).Return(nil)

	resp, err := f.svc.CreateReservation(context.Background(), sess, CreateReservationRequest{
		RoomID:        room.ID.String(),
		CheckInDate:   "2026-04-01",
		CheckOutDate:  "2026-04-04",
		GuestName:     "  Jane Guest ",
		AdvanceAmount: "100",
	})
	require.NoError(t, err)

	assert.Equal(t, "RES-2026-000042", resp.ReservationNo)
	assert.Equal(t, model.StatusTentative, resp.Status)
	assert.Equal(t, "Jane Guest", resp.GuestName)
	assert.Equal(t, 3, resp.Nights)
	assert.Equal(t, "80.00", resp.RoomRate)
	assert.Equal(t, "240.00", resp.TotalAmount)
	assert.Equal(t, "140.00", resp.BalanceAmount)
	assert.Equal(t, "EUR", resp.Currency)
	assert.Equal(t, room.LocationID.String(), resp.LocationID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, queue.EventReservationCreated, f.publisher.events[0].Type)
	assert.Equal(t, sess.TenantID.String(), f.publisher.events[0].TenantID)
	require.Len(t, f.hub.messages[sess.TenantID], 1)

	var pushed struct {
		Type string              `json:"type"`
		Data ReservationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(f.hub.messages[sess.TenantID][0], &pushed))
	assert.Equal(t, queue.EventReservationCreated, pushed.Type)
	assert.Equal(t, resp.ID, pushed.Data.ID)
	f.resRepo.AssertExpectations(t)
	f.auditRepo.AssertExpectations(t)
}

func TestCreateReservation_ConflictAbortsWrite(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	room := bookableRoom()
	existing := booking(room.ID, "2026-04-02", "2026-04-06", model.StatusConfirmed)

	f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)
	f.resRepo.On("FindOverlapping", mock.Anything, sess.TenantID, room.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]model.Reservation{existing}, nil)

	_, err := f.svc.CreateReservation(context.Background(), sess, CreateReservationRequest{
		RoomID:       room.ID.String(),
		CheckInDate:  "2026-04-01",
		CheckOutDate: "2026-04-04",
		GuestName:    "Jane Guest",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, existing.ID.String(), conflict.Conflicts[0].ReservationID)

	f.resRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.resRepo.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.events)
}

func TestCreateReservation_FailsClosedWhenLookupFails(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	room := bookableRoom()

	f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)
	f.resRepo.On("FindOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	_, err := f.svc.CreateReservation(context.Background(), sess, CreateReservationRequest{
		RoomID:       room.ID.String(),
		CheckInDate:  "2026-04-01",
		CheckOutDate: "2026-04-04",
		GuestName:    "Jane Guest",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	f.resRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReservation_RejectsUnbookableRooms(t *testing.T) {
	tests := []struct {
		name   string
		room   func(*model.Room)
		adults int
	}{
		{"inactive room", func(r *model.Room) { r.IsActive = false }, 1},
		{"over capacity", func(r *model.Room) {}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture()
			sess := testSession()
			room := bookableRoom()
			tt.room(room)
			f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)

			_, err := f.svc.CreateReservation(context.Background(), sess, CreateReservationRequest{
				RoomID:       room.ID.String(),
				CheckInDate:  "2026-04-01",
				CheckOutDate: "2026-04-02",
				GuestName:    "Jane Guest",
				Adults:       tt.adults,
			})
			assert.ErrorIs(t, err, ErrValidation)
			f.resRepo.AssertNotCalled(t, "FindOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReservation_ValidatesInput(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	roomID := uuid.NewString()

	tests := []struct {
		name string
		req  CreateReservationRequest
	}{
		{"bad room id", CreateReservationRequest{RoomID: "nope", CheckInDate: "2026-04-01", CheckOutDate: "2026-04-02", GuestName: "A"}},
		{"bad date", CreateReservationRequest{RoomID: roomID, CheckInDate: "04/01/2026", CheckOutDate: "2026-04-02", GuestName: "A"}},
		{"checkout before checkin", CreateReservationRequest{RoomID: roomID, CheckInDate: "2026-04-03", CheckOutDate: "2026-04-02", GuestName: "A"}},
		{"blank guest", CreateReservationRequest{RoomID: roomID, CheckInDate: "2026-04-01", CheckOutDate: "2026-04-02", GuestName: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateReservation(context.Background(), sess, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	f.roomRepo.AssertNotCalled(t, "LockByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReservation_ExcludesItselfFromConflicts(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	room := bookableRoom()
	existing := booking(room.ID, "2026-04-01", "2026-04-03", model.StatusConfirmed)
	existing.TenantID = sess.TenantID
	existing.LocationID = room.LocationID
	existing.RoomRate = room.BasePrice
	existing.TotalAmount = decimal.RequireFromString("160")
	existing.Room = room

	f.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, existing.ID).Return(&existing, nil)
	f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)
	f.resRepo.On("FindOverlapping", mock.Anything, sess.TenantID, room.ID, date("2026-04-01"), date("2026-04-05"), &existing.ID).
		Return([]model.Reservation{existing}, nil)
	f.resRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Reservation")).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.UpdateReservation(context.Background(), sess, existing.ID.String(), UpdateReservationRequest{
		CheckOutDate: "2026-04-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-04-05", resp.CheckOutDate)
	assert.Equal(t, "320.00", resp.TotalAmount)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, queue.EventReservationUpdated, f.publisher.events[0].Type)
}

func TestUpdateReservation_ClosedReservationsAreFrozen(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	existing := booking(uuid.New(), "2026-04-01", "2026-04-03", model.StatusCancelled)
	f.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, existing.ID).Return(&existing, nil)

	_, err := f.svc.UpdateReservation(context.Background(), sess, existing.ID.String(), UpdateReservationRequest{GuestName: "New"})
	assert.ErrorIs(t, err, ErrValidation)
	f.resRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
		event   string
	}{
		{"confirm tentative", model.StatusTentative, model.StatusConfirmed, false, queue.EventReservationStatusChanged},
		{"check in confirmed", model.StatusConfirmed, model.StatusCheckedIn, false, queue.EventReservationStatusChanged},
		{"cancel confirmed", model.StatusConfirmed, model.StatusCancelled, false, queue.EventReservationCancelled},
		{"revive cancelled", model.StatusCancelled, model.StatusConfirmed, true, ""},
		{"check out tentative", model.StatusTentative, model.StatusCheckedOut, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture()
			sess := testSession()
			existing := booking(uuid.New(), "2026-04-01", "2026-04-03", tt.from)
			f.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, existing.ID).Return(&existing, nil)
			f.resRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
			f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

			resp, err := f.svc.UpdateStatus(context.Background(), sess, existing.ID.String(), UpdateStatusRequest{Status: tt.to})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				f.resRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				assert.Empty(t, f.publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, resp.Status)
			require.Len(t, f.publisher.events, 1)
			assert.Equal(t, tt.event, f.publisher.events[0].Type)
			assert.Equal(t, tt.from, f.publisher.events[0].PreviousStatus)
		})
	}
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	existing := booking(uuid.New(), "2026-04-01", "2026-04-03", model.StatusConfirmed)
	f.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, existing.ID).Return(&existing, nil)

	resp, err := f.svc.UpdateStatus(context.Background(), sess, existing.ID.String(), UpdateStatusRequest{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, resp.Status)
	f.resRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.events)
}

func TestGetReservation_NotFound(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	id := uuid.New()
	f.resRepo.On("FindByID", mock.Anything, sess.TenantID, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.GetReservation(context.Background(), sess, id.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReservation_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newReservationFixture()
	f.publisher.err = errors.New("broker down")
	sess := testSession()
	room := bookableRoom()

	f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)
	f.resRepo.On("FindOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Reservation{}, nil)
	f.resRepo.On("NextSequence", mock.Anything, sess.TenantID, 2026).Return(int64(1), nil)
	f.resRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.CreateReservation(context.Background(), sess, CreateReservationRequest{
		RoomID:       room.ID.String(),
		CheckInDate:  "2026-04-01",
		CheckOutDate: "2026-04-02",
		GuestName:    "Jane Guest",
		Status:       model.StatusConfirmed,
		RoomRate:     "95.5",
	})
	require.NoError(t, err)
	assert.Equal(t, "RES-2026-000001", resp.ReservationNo)
	assert.Equal(t, "95.50", resp.TotalAmount)
	assert.Equal(t, model.StatusConfirmed, resp.Status)
}

func TestCreateReservation_RejectsRoomOfClosedLocation(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	room := bookableRoom()
	room.Location = &model.Location{ID: room.LocationID, Name: "Closed", IsActive: false}

	f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)

	_, err := f.svc.CreateReservation(context.Background(), sess, CreateReservationRequest{
		RoomID:       room.ID.String(),
		CheckInDate:  "2026-04-01",
		CheckOutDate: "2026-04-02",
		GuestName:    "Jane Guest",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "location")
	f.resRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.resRepo.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReservation_GuestCountCheckedWithoutStayChange(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	room := bookableRoom()
	existing := booking(room.ID, "2026-04-01", "2026-04-03", model.StatusConfirmed)
	existing.Adults = 2
	existing.Room = room

	f.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, existing.ID).Return(&existing, nil)

	_, err := f.svc.UpdateReservation(context.Background(), sess, existing.ID.String(), UpdateReservationRequest{Adults: 6})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "at most 2 guests")
	f.resRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.roomRepo.AssertNotCalled(t, "LockByID", mock.Anything, mock.Anything, mock.Anything)

	children := 1
	f2 := newReservationFixture()
	within := booking(room.ID, "2026-04-01", "2026-04-03", model.StatusConfirmed)
	within.Room = room
	f2.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, within.ID).Return(&within, nil)
	f2.resRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f2.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	resp, err := f2.svc.UpdateReservation(context.Background(), sess, within.ID.String(), UpdateReservationRequest{Adults: 1, Children: &children})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Children)
}

func TestReservationWrites_LockTheRow(t *testing.T) {
	f := newReservationFixture()
	sess := testSession()
	existing := booking(uuid.New(), "2026-04-01", "2026-04-03", model.StatusConfirmed)
	existing.Room = bookableRoom()

	f.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, existing.ID).Return(&existing, nil)
	f.resRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.UpdateReservation(context.Background(), sess, existing.ID.String(), UpdateReservationRequest{GuestPhone: "+84900000000"})
	require.NoError(t, err)
	_, err = f.svc.CancelReservation(context.Background(), sess, existing.ID.String())
	require.NoError(t, err)

	f.resRepo.AssertNumberOfCalls(t, "FindByIDForUpdate", 2)
	f.resRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationReads_StayInsideLocationScope(t *testing.T) {
	locA, locB := uuid.New(), uuid.New()
	sess := testSession().WithScope([]uuid.UUID{locA})

	t.Run("list without location is limited to granted locations", func(t *testing.T) {
		f := newReservationFixture()
		var got repository.ReservationFilter
		f.resRepo.On("List", mock.Anything, sess.TenantID, mock.AnythingOfType("repository.ReservationFilter")).
			Run(func(args mock.Arguments) { got = args.Get(2).(repository.ReservationFilter) }).
			Return([]model.Reservation{}, int64(0), nil)

		_, _, err := f.svc.ListReservations(context.Background(), sess, ListReservationsQuery{})
		require.NoError(t, err)
		assert.Nil(t, got.LocationID)
		assert.Equal(t, []uuid.UUID{locA}, got.Within)
	})

	t.Run("explicit location outside the scope is forbidden", func(t *testing.T) {
		f := newReservationFixture()
		_, _, err := f.svc.ListReservations(context.Background(), sess, ListReservationsQuery{LocationID: locB.String()})
		assert.ErrorIs(t, err, ErrForbidden)
		f.resRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("single reservation of another location reads as missing", func(t *testing.T) {
		f := newReservationFixture()
		other := booking(uuid.New(), "2026-04-01", "2026-04-03", model.StatusConfirmed)
		other.LocationID = locB
		f.resRepo.On("FindByID", mock.Anything, sess.TenantID, other.ID).Return(&other, nil)

		_, err := f.svc.GetReservation(context.Background(), sess, other.ID.String())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("calendar hides rooms and stays of other locations", func(t *testing.T) {
		f := newReservationFixture()
		roomA := model.Room{ID: uuid.New(), LocationID: locA, RoomNo: "A1", IsActive: true}
		roomB := model.Room{ID: uuid.New(), LocationID: locB, RoomNo: "B1", IsActive: true}
		stayB := booking(roomB.ID, "2026-04-01", "2026-04-03", model.StatusConfirmed)
		stayB.LocationID = locB
		f.roomRepo.On("List", mock.Anything, sess.TenantID, (*uuid.UUID)(nil), true).Return([]model.Room{roomA, roomB}, nil)
		f.resRepo.On("ListInRange", mock.Anything, sess.TenantID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
			Return([]model.Reservation{stayB}, nil)

		cal, err := f.svc.GetCalendar(context.Background(), sess, "2026-04-01", "2026-04-08", "")
		require.NoError(t, err)
		require.Len(t, cal.Rooms, 1)
		assert.Equal(t, "A1", cal.Rooms[0].RoomNo)
		assert.Empty(t, cal.Rooms[0].Reservations)
	})
}

func TestReservationWrites_StayInsideLocationScope(t *testing.T) {
	granted := uuid.New()
	sess := testSession().WithScope([]uuid.UUID{granted})

	t.Run("booking a room of another location", func(t *testing.T) {
		f := newReservationFixture()
		room := bookableRoom()
		f.roomRepo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)

		_, err := f.svc.CreateReservation(context.Background(), sess, CreateReservationRequest{
			RoomID:       room.ID.String(),
			CheckInDate:  "2026-04-01",
			CheckOutDate: "2026-04-02",
			GuestName:    "Jane Guest",
		})
		assert.ErrorIs(t, err, ErrNotFound)
		f.resRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("changing the status of another location's stay", func(t *testing.T) {
		f := newReservationFixture()
		other := booking(uuid.New(), "2026-04-01", "2026-04-03", model.StatusConfirmed)
		other.LocationID = uuid.New()
		f.resRepo.On("FindByIDForUpdate", mock.Anything, sess.TenantID, other.ID).Return(&other, nil)

		_, err := f.svc.UpdateStatus(context.Background(), sess, other.ID.String(), UpdateStatusRequest{Status: model.StatusCancelled})
		assert.ErrorIs(t, err, ErrNotFound)
		f.resRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
