package service

import (
	"context"
	"testing"
	"time"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockCurrencyRepo struct{ mock.Mock }

func (m *mockCurrencyRepo) Upsert(ctx context.Context, rate *model.CurrencyRate) error {
	return m.Called(ctx, rate).Error(0)
}

func (m *mockCurrencyRepo) List(ctx context.Context, tenantID uuid.UUID) ([]model.CurrencyRate, error) {
	args := m.Called(ctx, tenantID)
	list, _ := args.Get(0).([]model.CurrencyRate)
	return list, args.Error(1)
}

func (m *mockCurrencyRepo) FindLatest(ctx context.Context, tenantID uuid.UUID, from, to string, asOf time.Time) (*model.CurrencyRate, error) {
	args := m.Called(ctx, tenantID, from, to, asOf)
	if fn, ok := args.Get(0).(func(from, to string) (*model.CurrencyRate, error)); ok {
		return fn(from, to)
	}
	if r := args.Get(0); r != nil {
		return r.(*model.CurrencyRate), args.Error(1)
	}
	return nil, args.Error(1)
}

func fxRate(from, to, r string) *model.CurrencyRate {
	return &model.CurrencyRate{FromCurrency: from, ToCurrency: to, Rate: decimal.RequireFromString(r)}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		to     string
		rates  map[[2]string]*model.CurrencyRate
		result string
		method string
	}{
		{"identity", "EUR", "eur", nil, "100.00", "identity"},
		{"direct", "USD", "VND", map[[2]string]*model.CurrencyRate{{"USD", "VND"}: fxRate("USD", "VND", "25000")}, "2500000.00", "direct"},
		{"inverse", "VND", "USD", map[[2]string]*model.CurrencyRate{{"USD", "VND"}: fxRate("USD", "VND", "20")}, "5.00", "inverse"},
		{"cross via base", "EUR", "VND", map[[2]string]*model.CurrencyRate{
			{"EUR", "USD"}: fxRate("EUR", "USD", "1.1"),
			{"USD", "VND"}: fxRate("USD", "VND", "25000"),
		}, "2750000.00", "via:USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockCurrencyRepo)
			sess := testSession()
			repo.On("FindLatest", mock.Anything, sess.TenantID, mock.Anything, mock.Anything, date("2026-02-01")).
				Return(func(from, to string) (*model.CurrencyRate, error) {
					if r, ok := tt.rates[[2]string{from, to}]; ok {
						return r, nil
					}
					return nil, gorm.ErrRecordNotFound
				}, nil)
			svc := NewCurrencyService(repo, "usd")

			res, err := svc.Convert(context.Background(), sess, "100", tt.from, tt.to, "2026-02-01")
			require.NoError(t, err)
			assert.Equal(t, tt.result, res.Result)
			assert.Equal(t, tt.method, res.Method)
		})
	}
}

func TestConvert_MissingRate(t *testing.T) {
	repo := new(mockCurrencyRepo)
	sess := testSession()
	repo.On("FindLatest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := NewCurrencyService(repo, "USD").Convert(context.Background(), sess, "10", "EUR", "JPY", "2026-02-01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConvert_InvalidInput(t *testing.T) {
	svc := NewCurrencyService(new(mockCurrencyRepo), "USD")
	sess := testSession()

	_, err := svc.Convert(context.Background(), sess, "ten", "EUR", "USD", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Convert(context.Background(), sess, "10", "EURO", "USD", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Convert(context.Background(), sess, "10", "EUR", "USD", "yesterday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpsertRate_Validation(t *testing.T) {
	repo := new(mockCurrencyRepo)
	svc := NewCurrencyService(repo, "USD")
	sess := testSession()

	_, err := svc.UpsertRate(context.Background(), sess, UpsertRateRequest{FromCurrency: "USD", ToCurrency: "usd", Rate: "1"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpsertRate(context.Background(), sess, UpsertRateRequest{FromCurrency: "USD", ToCurrency: "EUR", Rate: "0"})
	assert.ErrorIs(t, err, ErrValidation)

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(r *model.CurrencyRate) bool {
		return r.FromCurrency == "USD" && r.ToCurrency == "EUR" && r.TenantID == sess.TenantID
	})).Return(nil)
	res, err := svc.UpsertRate(context.Background(), sess, UpsertRateRequest{FromCurrency: "usd", ToCurrency: "eur", Rate: "0.92", EffectiveDate: "2026-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", res.EffectiveDate)
	assert.Equal(t, "0.92", res.Rate)
}

func TestOccupancyRate_Table(t *testing.T) {
	tests := []struct {
		occupied, available int64
		want                string
	}{
		{0, 0, "0.00"},
		{15, 30, "50.00"},
		{1, 3, "33.33"},
		{40, 30, "100.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OccupancyRate(tt.occupied, tt.available).StringFixed(2))
	}
}
