package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of a performance slot.
type EventStatus string

const (
	EventPending EventStatus = "pending"
	EventBooked  EventStatus = "booked"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	return s == EventPending || s == EventBooked
}

// Event is a single performance slot published by an administrator.
// swagger:model Event
type Event struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Date              string      `json:"date"`
	StartTime         string      `json:"start_time"`
	EndTime           string      `json:"end_time"`
	Description       string      `json:"description"`
	PerformerEmail    string      `json:"performer_email"`
	AdminID           string      `json:"admin_id"`
	Status            EventStatus `json:"status"`
	CalendarEventID   *string     `json:"calendar_event_id"`
	BookedPerformerID *string     `json:"booked_performer_id"`
	BookedAt          *time.Time  `json:"booked_at"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         *time.Time  `json:"updated_at"`
}

// NewEvent returns a pending Event whose ID is derived from date and start time.
func NewEvent(title, date, startTime, endTime, description, performerEmail, adminID string, createdAt time.Time) *Event {
	return &Event{
		ID:             EventKey(date, startTime),
		Title:          title,
		Date:           date,
		StartTime:      startTime,
		EndTime:        endTime,
		Description:    description,
		PerformerEmail: performerEmail,
		AdminID:        adminID,
		Status:         EventPending,
		CreatedAt:      createdAt,
	}
}

// HasCalendarEvent reports whether the slot is already mirrored to the external calendar.
func (e *Event) HasCalendarEvent() bool {
	return e.CalendarEventID != nil && *e.CalendarEventID != ""
}

// EventUpdate carries the editable fields of an event. Nil fields are left unchanged.
type EventUpdate struct {
	Title          *string
	Date           *string
	StartTime      *string
	EndTime        *string
	Description    *string
	PerformerEmail *string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Create inserts the event; returns ErrEventExists when the derived key is taken.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns events with the given status, or all events when status is empty.
	List(ctx context.Context, status EventStatus) ([]*Event, error)
	// Update persists the editable fields and updated_at. Status, calendar id and created_at are untouched.
	Update(ctx context.Context, event *Event) error
	// Rekey moves the event stored under oldID to event.ID with the editable fields
	// of event, carrying its invitations along. Errors: ErrNotFound, ErrEventExists,
	// ErrEventInUse when bookings reference the event.
	Rekey(ctx context.Context, oldID string, event *Event) error
	Delete(ctx context.Context, id string) error
	MarkBooked(ctx context.Context, id, performerID string, bookedAt time.Time) error
	// SetCalendarEventID stores the external id only when none is stored yet.
	// It returns false when the event already had one.
	SetCalendarEventID(ctx context.Context, id, calendarEventID string) (bool, error)
	// ListCalendarEventIDs returns every stored external calendar id.
	ListCalendarEventIDs(ctx context.Context) ([]string, error)
}

// EventService defines administrator operations on performance slots.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	UpdateEvent(ctx context.Context, id string, update EventUpdate) (*Event, error)
	// DeleteEvent removes the slot; a mirrored calendar entry is removed best-effort when calendarToken is set.
	DeleteEvent(ctx context.Context, id, calendarToken string) error
}
