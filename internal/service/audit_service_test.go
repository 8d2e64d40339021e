package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stayhub/internal/model"
	"stayhub/internal/repository"
)

func TestGetAuditLogs_BuildsFilter(t *testing.T) {
	repo := new(mockAuditRepo)
	svc := NewAuditService(repo)
	sess := testSession()
	actor := uuid.New()

	var got repository.AuditFilter
	repo.On("List", mock.Anything, sess.TenantID, mock.AnythingOfType("repository.AuditFilter")).
		Run(func(args mock.Arguments) { got = args.Get(2).(repository.AuditFilter) }).
		Return([]model.AuditLog{
			{ID: uuid.New(), UserID: &actor, User: &model.User{FullName: "Lan"}, Action: model.ActionCancelReservation, EntityID: "r1", Details: `{"status":"cancelled"}`, CreatedAt: date("2026-05-02")},
			{ID: uuid.New(), Action: model.ActionCancelReservation, EntityID: "r2", Details: "not json", CreatedAt: date("2026-05-01")},
		}, int64(2), nil)

	logs, total, err := svc.GetAuditLogs(context.Background(), sess, AuditLogQuery{
		Action: "cancel_reservation",
		UserID: actor.String(),
		From:   "2026-05-01",
		To:     "2026-05-02",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	assert.Equal(t, model.ActionCancelReservation, got.Action)
	require.NotNil(t, got.UserID)
	assert.Equal(t, actor, *got.UserID)
	assert.Equal(t, "2026-05-01", got.From.Format("2006-01-02"))
	assert.Equal(t, "2026-05-03", got.To.Format("2006-01-02"))
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 20, got.Limit)

	require.Len(t, logs, 2)
	assert.Equal(t, "Lan", logs[0].Actor)
	assert.JSONEq(t, `{"status":"cancelled"}`, string(logs[0].Details))
	assert.Equal(t, "System", logs[1].Actor)
	assert.Empty(t, logs[1].UserID)
	assert.JSONEq(t, `{}`, string(logs[1].Details))
}

func TestGetAuditLogs_RejectsBadQuery(t *testing.T) {
	tests := []struct {
		name string
		q    AuditLogQuery
	}{
		{"unknown action", AuditLogQuery{Action: "DROP_TABLE"}},
		{"bad user id", AuditLogQuery{UserID: "nope"}},
		{"bad date", AuditLogQuery{From: "01/05/2026"}},
		{"reversed range", AuditLogQuery{From: "2026-05-04", To: "2026-05-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockAuditRepo)
			_, _, err := NewAuditService(repo).GetAuditLogs(context.Background(), testSession(), tt.q)
			assert.ErrorIs(t, err, ErrValidation)
			repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetAuditLogs_RepoError(t *testing.T) {
	repo := new(mockAuditRepo)
	repo.On("List", mock.Anything, mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("pq: timeout"))

	_, _, err := NewAuditService(repo).GetAuditLogs(context.Background(), testSession(), AuditLogQuery{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}
