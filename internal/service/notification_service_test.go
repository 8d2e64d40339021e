package service

import (
	"context"
	"errors"
	"testing"

	"stayhub/internal/integration/resend"
	"stayhub/internal/queue"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []resend.Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, email resend.Email) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, email)
	return "email-1", nil
}

func TestSendCredentialsEmail_RendersMarkdown(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, "https://app.stayhub.test", zerolog.Nop())

	res, err := svc.SendCredentialsEmail(context.Background(), CredentialsEmailRequest{
		To:       "new@example.com",
		FullName: "Minh Tran",
		Password: "s3cret!",
	})
	require.NoError(t, err)
	assert.Equal(t, "email-1", res.ID)

	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, []string{"new@example.com"}, email.To)
	assert.Equal(t, "Your StayHub account", email.Subject)
	assert.Contains(t, email.HTML, "<h1>Welcome to StayHub, Minh Tran</h1>")
	assert.Contains(t, email.HTML, "<table>")
	assert.Contains(t, email.HTML, `href="https://app.stayhub.test/login"`)
	assert.Contains(t, email.Text, "`s3cret!`")
}

func TestSendInvitation(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, "https://app.stayhub.test", zerolog.Nop())

	_, err := svc.SendInvitation(context.Background(), InvitationEmailRequest{
		To:         "guest@example.com",
		TenantName: "Sunrise Hostels",
		InvitedBy:  "Lan",
		Role:       "manager",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].HTML, "Lan has invited you")
	assert.Contains(t, mailer.sent[0].HTML, "<em>manager</em>")
	assert.Contains(t, mailer.sent[0].HTML, `href="https://app.stayhub.test/signup"`)
}

func TestHandleEvent(t *testing.T) {
	payload := queue.ReservationPayload{
		ReservationNo: "RES-2026-000007",
		GuestName:     "Jane Guest",
		GuestEmail:    "jane@example.com",
		RoomNo:        "101",
		CheckInDate:   "2026-04-01",
		CheckOutDate:  "2026-04-03",
		TotalAmount:   "160.00",
		BalanceAmount: "60.00",
		Currency:      "EUR",
	}

	tests := []struct {
		name    string
		ev      queue.Event
		subject string
	}{
		{"created", queue.Event{Type: queue.EventReservationCreated, Reservation: payload}, "Your booking RES-2026-000007"},
		{"cancelled", queue.Event{Type: queue.EventReservationCancelled, Reservation: payload}, "Booking RES-2026-000007 cancelled"},
		{"status change is ignored", queue.Event{Type: queue.EventReservationStatusChanged, Reservation: payload}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			svc := NewNotificationService(mailer, "", zerolog.Nop())
			require.NoError(t, svc.HandleEvent(context.Background(), tt.ev))
			if tt.subject == "" {
				assert.Empty(t, mailer.sent)
				return
			}
			require.Len(t, mailer.sent, 1)
			assert.Equal(t, tt.subject, mailer.sent[0].Subject)
			assert.Contains(t, mailer.sent[0].HTML, "Jane Guest")
		})
	}
}

func TestHandleEvent_NoGuestEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, "", zerolog.Nop())
	err := svc.HandleEvent(context.Background(), queue.Event{
		Type:        queue.EventReservationCreated,
		Reservation: queue.ReservationPayload{GuestName: "Walk-in"},
	})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestSendEmail_UpstreamFailure(t *testing.T) {
	svc := NewNotificationService(&fakeMailer{err: errors.New("422 invalid from")}, "", zerolog.Nop())
	_, err := svc.SendInvitation(context.Background(), InvitationEmailRequest{To: "a@example.com", TenantName: "T"})
	assert.ErrorIs(t, err, ErrUpstream)
}
