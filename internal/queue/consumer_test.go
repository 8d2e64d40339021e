package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerHandleDecodesEvent(t *testing.T) {
	var got Event
	c := NewConsumer("", "q", HandlerFunc(func(_ context.Context, ev Event) error {
		got = ev
		return nil
	}), zerolog.Nop())

	ev := Event{
		ID:          "e1",
		Type:        EventReservationCreated,
		TenantID:    "t1",
		OccurredAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Reservation: ReservationPayload{ReservationNo: "RES-2025-000001", GuestEmail: "guest@example.com"},
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, c.handle(context.Background(), body))
	assert.Equal(t, ev, got)
}

func TestConsumerHandleErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewConsumer("", "q", HandlerFunc(func(context.Context, Event) error { return boom }), zerolog.Nop())

	assert.Error(t, c.handle(context.Background(), []byte("{not json")))
	assert.ErrorIs(t, c.handle(context.Background(), []byte(`{"type":"reservation.created"}`)), boom)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsumer("amqp://127.0.0.1:1/", "q", HandlerFunc(func(context.Context, Event) error { return nil }), zerolog.Nop())
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}

func TestSleepHonoursContext(t *testing.T) {
	assert.True(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
}
