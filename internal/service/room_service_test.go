package service

import (
	"context"
	"testing"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeleteRoom_DeactivatesWhileBooked(t *testing.T) {
	sess := testSession()

	tests := []struct {
		name        string
		active      int64
		deactivated bool
	}{
		{"active reservations keep the row", 1, true},
		{"no reservations deletes", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, resRepo, audit := new(mockRoomRepo), new(mockReservationRepo), new(mockAuditRepo)
			svc := NewRoomService(repo, new(mockLocationRepo), resRepo, audit, inlineTx{})
			room := bookableRoom()

			repo.On("LockByID", mock.Anything, sess.TenantID, room.ID).Return(room, nil)
			resRepo.On("CountActiveForRoom", mock.Anything, sess.TenantID, room.ID).Return(tt.active, nil)
			repo.On("Update", mock.Anything, room).Return(nil)
			repo.On("Delete", mock.Anything, sess.TenantID, room.ID).Return(nil)
			audit.On("Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
				return e.Action == model.ActionDeleteRoom
			})).Return(nil)

			deactivated, err := svc.DeleteRoom(context.Background(), sess, room.ID.String())
			require.NoError(t, err)
			assert.Equal(t, tt.deactivated, deactivated)
			assert.Equal(t, !tt.deactivated, room.IsActive)
			if tt.deactivated {
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			} else {
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDeleteRoom_BadID(t *testing.T) {
	svc := NewRoomService(new(mockRoomRepo), new(mockLocationRepo), new(mockReservationRepo), new(mockAuditRepo), inlineTx{})
	_, err := svc.DeleteRoom(context.Background(), testSession(), "101")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListRooms_StaysInsideLocationScope(t *testing.T) {
	repo := new(mockRoomRepo)
	svc := NewRoomService(repo, new(mockLocationRepo), new(mockReservationRepo), new(mockAuditRepo), inlineTx{})
	mine, theirs := bookableRoom(), bookableRoom()
	sess := testSession().WithScope([]uuid.UUID{mine.LocationID})

	repo.On("List", mock.Anything, sess.TenantID, (*uuid.UUID)(nil), false).Return([]model.Room{*mine, *theirs}, nil)
	repo.On("FindByID", mock.Anything, sess.TenantID, theirs.ID).Return(theirs, nil)

	out, err := svc.ListRooms(context.Background(), sess, "", false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, mine.ID.String(), out[0].ID)

	_, err = svc.GetRoom(context.Background(), sess, theirs.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListRooms(context.Background(), sess, theirs.LocationID.String(), false)
	assert.ErrorIs(t, err, ErrForbidden)
}
