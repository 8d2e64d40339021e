package service

import (
	"context"
	"testing"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetAccount_Balance(t *testing.T) {
	sess := testSession()
	repo := new(mockAccountRepo)
	svc := NewAccountService(repo, new(mockAuditRepo), inlineTx{})
	acc := &model.Account{ID: uuid.New(), TenantID: sess.TenantID, Name: "Front desk", Currency: "EUR",
		InitialBalance: decimal.RequireFromString("100.00"), IsActive: true}

	repo.On("FindByID", mock.Anything, sess.TenantID, acc.ID).Return(acc, nil)
	repo.On("Movements", mock.Anything, sess.TenantID, acc.ID).
		Return(decimal.RequireFromString("450.50"), decimal.RequireFromString("75.25"), nil)

	out, err := svc.GetAccount(context.Background(), sess, acc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "100.00", out.InitialBalance)
	assert.Equal(t, "450.50", out.TotalIncome)
	assert.Equal(t, "75.25", out.TotalExpense)
	assert.Equal(t, "475.25", out.Balance)
	assert.Nil(t, out.LocationID)
}

func TestGetAccount_OverdrawnBalanceGoesNegative(t *testing.T) {
	sess := testSession()
	repo := new(mockAccountRepo)
	svc := NewAccountService(repo, new(mockAuditRepo), inlineTx{})
	acc := &model.Account{ID: uuid.New(), TenantID: sess.TenantID, Name: "Petty cash"}

	repo.On("FindByID", mock.Anything, sess.TenantID, acc.ID).Return(acc, nil)
	repo.On("Movements", mock.Anything, sess.TenantID, acc.ID).
		Return(decimal.RequireFromString("10"), decimal.RequireFromString("30"), nil)

	out, err := svc.GetAccount(context.Background(), sess, acc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "-20.00", out.Balance)
}

func TestListAccounts_HidesLocationsOutsideScope(t *testing.T) {
	hanoi, hue := uuid.New(), uuid.New()
	sess := testSession().WithScope([]uuid.UUID{hanoi})
	repo := new(mockAccountRepo)
	svc := NewAccountService(repo, new(mockAuditRepo), inlineTx{})

	shared := model.Account{ID: uuid.New(), TenantID: sess.TenantID, Name: "Bank"}
	mine := model.Account{ID: uuid.New(), TenantID: sess.TenantID, LocationID: &hanoi, Name: "Hanoi cash"}
	theirs := model.Account{ID: uuid.New(), TenantID: sess.TenantID, LocationID: &hue, Name: "Hue cash"}

	repo.On("List", mock.Anything, sess.TenantID, (*uuid.UUID)(nil)).Return([]model.Account{shared, mine, theirs}, nil)
	repo.On("Movements", mock.Anything, sess.TenantID, mock.Anything).Return(decimal.Zero, decimal.Zero, nil)

	out, err := svc.ListAccounts(context.Background(), sess, "")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Bank", out[0].Name)
	assert.Equal(t, "Hanoi cash", out[1].Name)

	_, err = svc.ListAccounts(context.Background(), sess, hue.String())
	assert.ErrorIs(t, err, ErrForbidden)
}
