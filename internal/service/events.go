package service

import (
	"context"
	"encoding/json"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/queue"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventPublisher sends domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// Broadcaster pushes live updates to a tenant's connected clients.
type Broadcaster interface {
	BroadcastToTenant(tenantID uuid.UUID, data []byte)
}

// notifier fans a committed reservation change out to the broker and websocket clients.
// Both sinks are optional and failures never fail the write that triggered them.
type notifier struct {
	publisher   EventPublisher
	broadcaster Broadcaster
	log         zerolog.Logger
}

func (n notifier) reservationChanged(ctx context.Context, eventType, previousStatus string, r *model.Reservation, resp ReservationResponse) {
	if n.broadcaster != nil {
		msg, _ := json.Marshal(map[string]interface{}{
			"type": eventType,
			"data": resp,
		})
		n.broadcaster.BroadcastToTenant(r.TenantID, msg)
	}

	if n.publisher == nil {
		return
	}
	ev := queue.Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		TenantID:       r.TenantID.String(),
		PreviousStatus: previousStatus,
		OccurredAt:     time.Now().UTC(),
		Reservation: queue.ReservationPayload{
			ID:            r.ID.String(),
			ReservationNo: r.ReservationNo,
			Status:        r.Status,
			GuestName:     r.GuestName,
			GuestEmail:    r.GuestEmail,
			RoomID:        r.RoomID.String(),
			RoomNo:        resp.RoomNo,
			LocationID:    r.LocationID.String(),
			CheckInDate:   formatDate(r.CheckInDate),
			CheckOutDate:  formatDate(r.CheckOutDate),
			TotalAmount:   r.TotalAmount.StringFixed(2),
			BalanceAmount: r.BalanceAmount.StringFixed(2),
			Currency:      r.Currency,
		},
	}
	if err := n.publisher.Publish(ctx, ev); err != nil {
		n.log.Warn().Err(err).Str("event", eventType).Str("reservation_id", r.ID.String()).Msg("failed to publish reservation event")
	}
}
