package domain

import (
	"context"
	"time"
)

// ViewCache holds projections of list queries. It is never authoritative:
// every write invalidates it and a miss falls back to the store.
//
// Entries are scoped to a generation. Readers take the generation before
// reading the store and fill under it; Invalidate advances the generation, so a
// fill that raced a write lands where no later reader looks.
type ViewCache interface {
	Generation(ctx context.Context) (int64, error)
	GetBookings(ctx context.Context, gen int64, status BookingStatus) ([]*Booking, bool, error)
	SetBookings(ctx context.Context, gen int64, status BookingStatus, bookings []*Booking) error
	GetEvents(ctx context.Context, gen int64, status EventStatus) ([]*Event, bool, error)
	SetEvents(ctx context.Context, gen int64, status EventStatus, events []*Event) error
	Invalidate(ctx context.Context) error
}

// QueryService is the read side consumed by the admin UI.
type QueryService interface {
	ListBookingsByStatus(ctx context.Context, status BookingStatus) ([]*Booking, error)
	// ListEventsByStatus returns all events when status is empty.
	ListEventsByStatus(ctx context.Context, status EventStatus) ([]*Event, error)
	ListCalendarWindow(ctx context.Context, calendarToken string, start, end time.Time) ([]*CalendarEntry, error)
}
