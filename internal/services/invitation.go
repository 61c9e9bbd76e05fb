package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"venuebooking/internal/domain"
	"venuebooking/internal/timefmt"

	"github.com/google/uuid"
)

type invitationService struct {
	eventRepo      domain.EventRepository
	invitationRepo domain.EventInvitationRepository
	emailService   domain.EmailService
	cache          domain.ViewCache
	logger         *slog.Logger
	signupBaseURL  string
	now            func() time.Time
	newID          func() string
	contextTimeout time.Duration
}

func NewInvitationService(
	eventRepo domain.EventRepository,
	invitationRepo domain.EventInvitationRepository,
	emailService domain.EmailService,
	cache domain.ViewCache,
	logger *slog.Logger,
	signupBaseURL string,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		emailService:   emailService,
		cache:          cache,
		logger:         logger,
		signupBaseURL:  strings.TrimSuffix(signupBaseURL, "/"),
		now:            time.Now,
		newID:          uuid.NewString,
		contextTimeout: timeout,
	}
}

// IssueInvitation creates a single-use invitation for eventID. An empty contact
// falls back to the event's performer email. Booked events take no further
// invitations and fail with ErrSlotTaken.
func (s *invitationService) IssueInvitation(ctx context.Context, eventID, performerContact string) (*domain.Invitation, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("get event: %w", err)
	}
	if event.Status == domain.EventBooked {
		return nil, "", domain.ErrSlotTaken
	}
	contact := normalizeEmail(performerContact)
	if contact == "" {
		contact = event.PerformerEmail
	}
	if contact == "" {
		return nil, "", fmt.Errorf("%w: performer contact is required", domain.ErrInvalidInput)
	}

	token, err := uuid.NewRandom()
	if err != nil {
		return nil, "", fmt.Errorf("generate invitation token: %w", err)
	}
	inv := domain.NewInvitation(token.String(), event.ID, contact, s.now().UTC())
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, "", fmt.Errorf("create invitation: %w", err)
	}
	return inv, s.signupLink(inv.Token), nil
}

func (s *invitationService) signupLink(token string) string {
	return s.signupBaseURL + "/signup?token=" + url.QueryEscape(token)
}

// SendInvitation emails link to the invitation's performer contact.
func (s *invitationService) SendInvitation(ctx context.Context, inv *domain.Invitation, link string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	return s.emailService.SendInvitation(ctx, &domain.InvitationEmailData{
		Email:            inv.PerformerEmail,
		EventTitle:       event.Title,
		EventDate:        event.Date,
		StartTime:        timefmt.Display12(event.StartTime),
		EndTime:          timefmt.Display12(event.EndTime),
		Link:             link,
		ExpiresInMinutes: int(domain.InvitationTTL / time.Minute),
	})
}

func (s *invitationService) ListEventInvitations(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params = params.Normalize()
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	return invs, total, nil
}

// RedeemInvitation claims the invitation behind token and creates the pending
// booking for its event. The claim and the insert happen atomically.
func (s *invitationService) RedeemInvitation(ctx context.Context, token string, sub domain.BookingSubmission) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	sub.PerformerName = strings.TrimSpace(sub.PerformerName)
	sub.PerformerEmail = normalizeEmail(sub.PerformerEmail)
	sub.PerformerID = strings.TrimSpace(sub.PerformerID)
	sub.Notes = strings.TrimSpace(sub.Notes)
	if sub.PerformerName == "" {
		return nil, fmt.Errorf("%w: performer name is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(sub.PerformerEmail); err != nil {
		return nil, fmt.Errorf("%w: performer email is invalid", domain.ErrInvalidInput)
	}
	if sub.PerformerID == "" {
		sub.PerformerID = sub.PerformerEmail
	}

	now := s.now().UTC()
	build := func(inv *domain.Invitation, event *domain.Event) *domain.Booking {
		return domain.NewBooking(s.newID(), event, sub, inv.Token, now)
	}
	booking, err := s.invitationRepo.Redeem(ctx, token, now, build)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken),
			errors.Is(err, domain.ErrInvitationExpired),
			errors.Is(err, domain.ErrAlreadyClaimed),
			errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("redeem invitation: %w: %w", domain.ErrPersistence, err)
	}
	s.logger.InfoContext(ctx, "invitation redeemed", "event_id", booking.EventID, "booking_id", booking.ID)
	invalidateViews(ctx, s.cache, s.logger)
	return booking, nil
}
