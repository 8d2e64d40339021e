// Package queue carries reservation domain events over RabbitMQ.
package queue

import (
	"context"
	"time"
)

const (
	EventReservationCreated       = "reservation.created"
	EventReservationUpdated       = "reservation.updated"
	EventReservationStatusChanged = "reservation.status_changed"
	EventReservationCancelled     = "reservation.cancelled"
)

// ReservationPayload is the reservation snapshot carried by an event.
type ReservationPayload struct {
	ID            string `json:"id"`
	ReservationNo string `json:"reservation_no"`
	Status        string `json:"status"`
	GuestName     string `json:"guest_name"`
	GuestEmail    string `json:"guest_email"`
	RoomID        string `json:"room_id"`
	RoomNo        string `json:"room_no"`
	LocationID    string `json:"location_id"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
	TotalAmount   string `json:"total_amount"`
	BalanceAmount string `json:"balance_amount"`
	Currency      string `json:"currency"`
}

// Event is published after a reservation write commits.
type Event struct {
	ID             string             `json:"id"`
	Type           string             `json:"type"`
	TenantID       string             `json:"tenant_id"`
	PreviousStatus string             `json:"previous_status,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
	Reservation    ReservationPayload `json:"reservation"`
}

// Handler processes one consumed event. Returning an error rejects the delivery.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, ev Event) error { return f(ctx, ev) }
