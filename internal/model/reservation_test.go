package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d string
		want       bool
	}{
		{"touching end to start", "2025-03-01", "2025-03-05", "2025-03-05", "2025-03-08", false},
		{"touching start to end", "2025-03-05", "2025-03-08", "2025-03-01", "2025-03-05", false},
		{"one night overlap", "2025-03-01", "2025-03-05", "2025-03-04", "2025-03-06", true},
		{"contained", "2025-03-01", "2025-03-10", "2025-03-03", "2025-03-04", true},
		{"containing", "2025-03-03", "2025-03-04", "2025-03-01", "2025-03-10", true},
		{"identical", "2025-03-01", "2025-03-02", "2025-03-01", "2025-03-02", true},
		{"disjoint", "2025-03-01", "2025-03-02", "2025-03-10", "2025-03-12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(t, tt.a), date(t, tt.b), date(t, tt.c), date(t, tt.d))
			assert.Equal(t, tt.want, got)
			// symmetric
			assert.Equal(t, tt.want, Overlaps(date(t, tt.c), date(t, tt.d), date(t, tt.a), date(t, tt.b)))
		})
	}
}

func TestReservationHelpers(t *testing.T) {
	r := Reservation{
		CheckInDate:  date(t, "2025-03-01"),
		CheckOutDate: date(t, "2025-03-04"),
		Status:       StatusConfirmed,
		TotalAmount:  decimal.NewFromInt(300),
		PaidAmount:   decimal.NewFromInt(120),
	}

	assert.Equal(t, 3, r.Nights())
	assert.True(t, r.Blocks())
	assert.True(t, r.OverlapsWith(date(t, "2025-03-03"), date(t, "2025-03-05")))
	assert.False(t, r.OverlapsWith(date(t, "2025-03-04"), date(t, "2025-03-05")))

	r.RecalculateBalance()
	assert.True(t, decimal.NewFromInt(180).Equal(r.BalanceAmount))

	r.Status = StatusCancelled
	assert.False(t, r.Blocks())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusTentative, StatusConfirmed))
	assert.True(t, CanTransition(StatusConfirmed, StatusCheckedIn))
	assert.True(t, CanTransition(StatusCheckedIn, StatusCheckedOut))
	assert.False(t, CanTransition(StatusCheckedOut, StatusCheckedIn))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, CanTransition(StatusTentative, StatusCheckedOut))
	assert.True(t, ValidStatus(StatusCheckedIn))
	assert.False(t, ValidStatus("pending"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseDate("31/12/2025")
	assert.Error(t, err)

	local := time.Date(2025, 1, 2, 23, 30, 0, 0, time.FixedZone("x", 3600))
	assert.Equal(t, "2025-01-02", DateOnly(local).Format(DateLayout))
}
