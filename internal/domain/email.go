package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the invitation link email.
// Times are already in 12-hour display form.
type InvitationEmailData struct {
	Email            string
	EventTitle       string
	EventDate        string
	StartTime        string
	EndTime          string
	Link             string
	ExpiresInMinutes int
}

// BookingApprovedEmailData holds data for the booking confirmation email.
type BookingApprovedEmailData struct {
	Email         string
	PerformerName string
	EventTitle    string
	EventDate     string
	StartTime     string
	EndTime       string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
	SendBookingApproved(ctx context.Context, data *BookingApprovedEmailData) error
}
