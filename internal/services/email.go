package services

import (
	"context"
	"fmt"
	"log/slog"

	"venuebooking/internal/domain"
)

const (
	invitationTemplate      = "invitation"
	bookingApprovedTemplate = "booking_approved"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendInvitation sends the signup link using the "invitation" template.
func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	if err := s.send(ctx, invitationTemplate, data.Email, data); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "invitation email sent", "to", data.Email, "event", data.EventTitle)
	return nil
}

// SendBookingApproved confirms an approved booking to the performer.
func (s *emailService) SendBookingApproved(ctx context.Context, data *domain.BookingApprovedEmailData) error {
	if data == nil {
		return fmt.Errorf("booking approved email data is nil")
	}
	if err := s.send(ctx, bookingApprovedTemplate, data.Email, data); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "booking approved email sent", "to", data.Email, "event", data.EventTitle)
	return nil
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	return nil
}
