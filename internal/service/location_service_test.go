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

func TestDeleteLocation_DeactivatesWhileBooked(t *testing.T) {
	sess := testSession()

	tests := []struct {
		name        string
		active      int64
		deactivated bool
	}{
		{"active reservations keep the row", 2, true},
		{"no reservations deletes", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, resRepo, audit := new(mockLocationRepo), new(mockReservationRepo), new(mockAuditRepo)
			svc := NewLocationService(repo, resRepo, audit, inlineTx{})
			loc := &model.Location{ID: uuid.New(), TenantID: sess.TenantID, Name: "Old Quarter", IsActive: true}

			repo.On("FindByID", mock.Anything, sess.TenantID, loc.ID).Return(loc, nil)
			resRepo.On("CountActiveForLocation", mock.Anything, sess.TenantID, loc.ID).Return(tt.active, nil)
			repo.On("Update", mock.Anything, loc).Return(nil)
			repo.On("Delete", mock.Anything, sess.TenantID, loc.ID).Return(nil)
			audit.On("Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
				return e.Action == model.ActionDeleteLocation
			})).Return(nil)

			deactivated, err := svc.DeleteLocation(context.Background(), sess, loc.ID.String())
			require.NoError(t, err)
			assert.Equal(t, tt.deactivated, deactivated)
			if tt.deactivated {
				assert.False(t, loc.IsActive)
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			} else {
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUpdateLocation_Deactivates(t *testing.T) {
	sess := testSession()
	repo, audit := new(mockLocationRepo), new(mockAuditRepo)
	svc := NewLocationService(repo, new(mockReservationRepo), audit, inlineTx{})
	loc := &model.Location{ID: uuid.New(), TenantID: sess.TenantID, Name: "Old Quarter", IsActive: true}
	off := false

	repo.On("FindByID", mock.Anything, sess.TenantID, loc.ID).Return(loc, nil)
	repo.On("Update", mock.Anything, loc).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.UpdateLocation(context.Background(), sess, loc.ID.String(), LocationRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	assert.Equal(t, "Old Quarter", out.Name)
}
