package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reservation status values
const (
	StatusTentative  = "tentative"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCancelled  = "cancelled"
)

// Booking sources
const (
	SourceDirect     = "direct"
	SourceBeds24     = "beds24"
	SourceBookingCom = "booking_com"
	SourceAirbnb     = "airbnb"
	SourceOther      = "other"
)

// DateLayout is the wire format for stay dates.
const DateLayout = "2006-01-02"

// statusTransitions lists the statuses each status may move to.
var statusTransitions = map[string][]string{
	StatusTentative:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {},
	StatusCancelled:  {},
}

// Reservation is a guest stay over the half-open date range [CheckInDate, CheckOutDate).
type Reservation struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index:idx_reservations_room_dates,priority:1;uniqueIndex:idx_reservations_tenant_no,priority:1" json:"tenant_id"`
	ReservationNo string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_reservations_tenant_no,priority:2" json:"reservation_no"`
	LocationID    uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	RoomID        uuid.UUID `gorm:"type:uuid;not null;index:idx_reservations_room_dates,priority:2" json:"room_id"`
	Room          *Room     `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	CheckInDate   time.Time `gorm:"type:date;not null;index:idx_reservations_room_dates,priority:3" json:"check_in_date"`
	CheckOutDate  time.Time `gorm:"type:date;not null;index:idx_reservations_room_dates,priority:4" json:"check_out_date"`
	Status        string    `gorm:"type:varchar(20);not null;default:'tentative';index" json:"status"`
	BookingSource string    `gorm:"type:varchar(30);not null;default:'direct'" json:"booking_source"`

	// Guest
	GuestName        string `gorm:"type:varchar(255);not null" json:"guest_name"`
	GuestEmail       string `gorm:"type:varchar(255)" json:"guest_email"`
	GuestPhone       string `gorm:"type:varchar(30)" json:"guest_phone"`
	GuestNationality string `gorm:"type:varchar(100)" json:"guest_nationality"`
	Adults           int    `gorm:"not null;default:1" json:"adults"`
	Children         int    `gorm:"not null;default:0" json:"children"`

	// Money
	RoomRate      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"room_rate"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"advance_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"paid_amount"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance_amount"`
	Currency      string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`

	SpecialRequests string     `gorm:"type:text" json:"special_requests"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReservationCounter is the last reservation number issued to a tenant in a year.
type ReservationCounter struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year     int       `gorm:"primaryKey;autoIncrement:false"`
	Value    int64     `gorm:"not null"`
}

// Blocks reports whether the reservation occupies its room.
func (r Reservation) Blocks() bool {
	return r.Status != StatusCancelled
}

// Nights returns the number of nights in the stay.
func (r Reservation) Nights() int {
	return Nights(r.CheckInDate, r.CheckOutDate)
}

// OverlapsWith reports whether the reservation occupies any night of [checkIn, checkOut).
func (r Reservation) OverlapsWith(checkIn, checkOut time.Time) bool {
	return Overlaps(r.CheckInDate, r.CheckOutDate, checkIn, checkOut)
}

// RecalculateBalance keeps BalanceAmount equal to TotalAmount - PaidAmount.
func (r *Reservation) RecalculateBalance() {
	r.BalanceAmount = r.TotalAmount.Sub(r.PaidAmount)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share at least one day.
// Touching ranges (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Nights counts whole days between two dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known reservation status.
func ValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}
