package domain

import (
	"context"
	"time"
)

// BookingStatus is the lifecycle state of a performer's request.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	return s == BookingPending || s == BookingApproved
}

// Booking is a performer's request against an event. The event title, date and
// time window are copied at submission so later event edits do not change it.
// swagger:model Booking
type Booking struct {
	ID              string        `json:"id"`
	EventID         string        `json:"event_id"`
	PerformerName   string        `json:"performer_name"`
	PerformerEmail  string        `json:"performer_email"`
	PerformerID     string        `json:"performer_id"`
	EventTitle      string        `json:"event_title"`
	EventDate       string        `json:"event_date"`
	EventStartTime  string        `json:"event_start_time"`
	EventEndTime    string        `json:"event_end_time"`
	Notes           string        `json:"notes"`
	Status          BookingStatus `json:"status"`
	InvitationToken string        `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	ApprovedAt      *time.Time    `json:"approved_at"`
}

// BookingSubmission is what a performer sends when redeeming an invitation.
type BookingSubmission struct {
	PerformerName  string
	PerformerEmail string
	PerformerID    string
	Notes          string
}

// NewBooking returns a pending booking for event, echoing the event's current title and window.
func NewBooking(id string, event *Event, sub BookingSubmission, token string, createdAt time.Time) *Booking {
	return &Booking{
		ID:              id,
		EventID:         event.ID,
		PerformerName:   sub.PerformerName,
		PerformerEmail:  sub.PerformerEmail,
		PerformerID:     sub.PerformerID,
		EventTitle:      event.Title,
		EventDate:       event.Date,
		EventStartTime:  event.StartTime,
		EventEndTime:    event.EndTime,
		Notes:           sub.Notes,
		Status:          BookingPending,
		InvitationToken: token,
		CreatedAt:       createdAt,
	}
}

// BookingRepository defines the interface for booking storage.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByStatus(ctx context.Context, status BookingStatus) ([]*Booking, error)
	ListByEventAndStatus(ctx context.Context, eventID string, status BookingStatus) ([]*Booking, error)
	// GetApprovedByEventID returns the single approved booking of an event, or ErrNotFound.
	GetApprovedByEventID(ctx context.Context, eventID string) (*Booking, error)
	// Approve marks the booking approved, keeping an earlier approval timestamp.
	// Returns ErrNotFound for a missing booking and ErrSlotTaken when a sibling is already approved.
	Approve(ctx context.Context, id string, approvedAt time.Time) (*Booking, error)
	// Delete removes the booking. Deleting an absent booking is not an error.
	Delete(ctx context.Context, id string) error
}
