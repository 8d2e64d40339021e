package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"stayhub/internal/integration/resend"
	"stayhub/internal/metrics"
	"stayhub/internal/queue"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// --- DTOs ---

type CredentialsEmailRequest struct {
	To       string `json:"to" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required"`
	LoginURL string `json:"login_url"`
}

type InvitationEmailRequest struct {
	To         string `json:"to" binding:"required,email"`
	TenantName string `json:"tenant_name" binding:"required"`
	InvitedBy  string `json:"invited_by"`
	Role       string `json:"role"`
	InviteURL  string `json:"invite_url"`
}

type EmailSentResponse struct {
	ID string `json:"id"`
}

// EmailSender delivers a rendered email.
type EmailSender interface {
	Send(ctx context.Context, email resend.Email) (string, error)
}

// --- Interface ---

// NotificationService renders markdown templates to HTML and sends them. It also consumes
// reservation events to mail guests.
type NotificationService interface {
	SendCredentials(ctx context.Context, req CredentialsEmailRequest) error
	SendCredentialsEmail(ctx context.Context, req CredentialsEmailRequest) (EmailSentResponse, error)
	SendInvitation(ctx context.Context, req InvitationEmailRequest) (EmailSentResponse, error)
	HandleEvent(ctx context.Context, ev queue.Event) error
}

// --- Implementation ---

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "credentials"}}# Welcome to StayHub, {{.FullName}}

An account has been created for you.

| | |
|---|---|
| **Email** | {{.To}} |
| **Password** | ` + "`{{.Password}}`" + ` |

[Sign in]({{.LoginURL}}) and change your password after the first login.
{{end}}

{{define "invitation"}}# You're invited to {{.TenantName}}

{{if .InvitedBy}}{{.InvitedBy}} has invited you{{else}}You have been invited{{end}} to join **{{.TenantName}}** on StayHub{{if .Role}} as *{{.Role}}*{{end}}.

[Accept the invitation]({{.InviteURL}})
{{end}}

{{define "reservation.created"}}# Booking received

Dear {{.GuestName}},

thank you for your reservation **{{.ReservationNo}}**.

| | |
|---|---|
| **Room** | {{.RoomNo}} |
| **Check-in** | {{.CheckInDate}} |
| **Check-out** | {{.CheckOutDate}} |
| **Total** | {{.TotalAmount}} {{.Currency}} |
| **Balance due** | {{.BalanceAmount}} {{.Currency}} |

We look forward to welcoming you.
{{end}}

{{define "reservation.cancelled"}}# Booking cancelled

Dear {{.GuestName}},

your reservation **{{.ReservationNo}}** ({{.CheckInDate}} to {{.CheckOutDate}}) has been cancelled.
{{end}}
`))

var emailSubjects = map[string]string{
	"credentials":           "Your StayHub account",
	"invitation":            "You're invited to join StayHub",
	"reservation.created":   "Your booking %s",
	"reservation.cancelled": "Booking %s cancelled",
}

type notificationService struct {
	sender    EmailSender
	markdown  goldmark.Markdown
	publicURL string
	log       zerolog.Logger
}

func NewNotificationService(sender EmailSender, publicURL string, log zerolog.Logger) NotificationService {
	return &notificationService{
		sender:    sender,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		publicURL: publicURL,
		log:       log,
	}
}

func (s *notificationService) SendCredentials(ctx context.Context, req CredentialsEmailRequest) error {
	_, err := s.SendCredentialsEmail(ctx, req)
	return err
}

func (s *notificationService) SendCredentialsEmail(ctx context.Context, req CredentialsEmailRequest) (EmailSentResponse, error) {
	if req.LoginURL == "" {
		req.LoginURL = s.publicURL + "/login"
	}
	id, err := s.send(ctx, "credentials", req.To, emailSubjects["credentials"], req)
	return EmailSentResponse{ID: id}, err
}

func (s *notificationService) SendInvitation(ctx context.Context, req InvitationEmailRequest) (EmailSentResponse, error) {
	if req.InviteURL == "" {
		req.InviteURL = s.publicURL + "/signup"
	}
	id, err := s.send(ctx, "invitation", req.To, emailSubjects["invitation"], req)
	return EmailSentResponse{ID: id}, err
}

// HandleEvent mails the guest on new and cancelled bookings. Other events and guests
// without an email address are acknowledged without sending.
func (s *notificationService) HandleEvent(ctx context.Context, ev queue.Event) error {
	switch ev.Type {
	case queue.EventReservationCreated, queue.EventReservationCancelled:
	default:
		return nil
	}
	r := ev.Reservation
	if r.GuestEmail == "" {
		return nil
	}

	_, err := s.send(ctx, ev.Type, r.GuestEmail, fmt.Sprintf(emailSubjects[ev.Type], r.ReservationNo), r)
	return err
}

// --- Helpers ---

func (s *notificationService) send(ctx context.Context, tmpl, to, subject string, data interface{}) (string, error) {
	html, text, err := s.render(tmpl, data)
	if err != nil {
		return "", err
	}

	id, err := s.sender.Send(ctx, resend.Email{
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		metrics.EmailsSent.WithLabelValues(tmpl, "failed").Inc()
		s.log.Warn().Err(err).Str("template", tmpl).Msg("failed to send email")
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	metrics.EmailsSent.WithLabelValues(tmpl, "sent").Inc()
	return id, nil
}

// render executes the markdown template and converts it to HTML. The markdown is kept
// as the plain-text alternative.
func (s *notificationService) render(tmpl string, data interface{}) (string, string, error) {
	var md bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&md, tmpl, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", tmpl, err)
	}
	var html bytes.Buffer
	if err := s.markdown.Convert(md.Bytes(), &html); err != nil {
		return "", "", fmt.Errorf("failed to convert %s email: %w", tmpl, err)
	}
	return html.String(), md.String(), nil
}
