package domain

import (
	"context"
	"time"
)

// InvitationTTL is how long an issued invitation can be redeemed.
const InvitationTTL = 5 * time.Minute

// Invitation is a single-use capability letting one performer submit a booking
// for one event. Invitations are never deleted.
// swagger:model Invitation
type Invitation struct {
	ID             string    `json:"id"`
	Token          string    `json:"token"`
	EventID        string    `json:"event_id"`
	PerformerEmail string    `json:"performer_email"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Claimed        bool      `json:"claimed"`
}

// NewInvitation returns an unclaimed invitation expiring InvitationTTL after issuedAt.
func NewInvitation(token, eventID, performerEmail string, issuedAt time.Time) *Invitation {
	return &Invitation{
		ID:             InvitationKey(performerEmail, issuedAt),
		Token:          token,
		EventID:        eventID,
		PerformerEmail: performerEmail,
		CreatedAt:      issuedAt,
		ExpiresAt:      issuedAt.Add(InvitationTTL),
	}
}

// ExpiredAt reports whether the invitation can no longer be redeemed at now.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// RedeemCheck classifies an invitation for redemption at now. Expiry is checked
// before the claimed flag.
func (i *Invitation) RedeemCheck(now time.Time) error {
	if i.ExpiredAt(now) {
		return ErrInvitationExpired
	}
	if i.Claimed {
		return ErrAlreadyClaimed
	}
	return nil
}

// BookingBuilder creates the pending booking for a successfully claimed invitation.
type BookingBuilder func(inv *Invitation, event *Event) *Booking

// EventInvitationRepository defines storage operations for invitations.
type EventInvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Invitation, int, error)
	// Redeem claims the invitation identified by token and inserts the booking
	// returned by build, as one atomic unit. Errors: ErrInvalidToken,
	// ErrInvitationExpired, ErrAlreadyClaimed, ErrNotFound (event gone).
	Redeem(ctx context.Context, token string, now time.Time, build BookingBuilder) (*Booking, error)
}

// InvitationService issues invitations and turns them into bookings.
type InvitationService interface {
	// IssueInvitation persists a new invitation and returns it with its shareable link.
	IssueInvitation(ctx context.Context, eventID, performerContact string) (*Invitation, string, error)
	// SendInvitation emails the link to the invitation's performer contact.
	SendInvitation(ctx context.Context, inv *Invitation, link string) error
	ListEventInvitations(ctx context.Context, eventID string, params PaginationParams) ([]*Invitation, int, error)
	RedeemInvitation(ctx context.Context, token string, sub BookingSubmission) (*Booking, error)
}
