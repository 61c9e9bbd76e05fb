package domain

import (
	"context"
	"time"
)

// CalendarEntry is one entry of the external calendar, classified by origin.
// swagger:model CalendarEntry
type CalendarEntry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	AllDay     bool      `json:"all_day"`
	AdminOwned bool      `json:"admin_owned"`
}

// CalendarBridge mirrors approved bookings into the external calendar.
// token is the administrator's bearer credential with calendar scope.
type CalendarBridge interface {
	// Configured reports whether a calendar identifier is set.
	Configured() bool
	// CreateEvent creates the calendar entry for an approved booking and returns its id.
	// Errors: ErrCalendarConfigMissing, ErrCalendarAuthRequired, *RemoteError.
	CreateEvent(ctx context.Context, token string, booking *Booking) (string, error)
	// DeleteEvent removes an entry. Failures are logged, never returned.
	DeleteEvent(ctx context.Context, token, externalID string)
	// ListEvents returns entries in [timeMin, timeMax]. Without a token a
	// configured API key is used for read-only access.
	ListEvents(ctx context.Context, token string, timeMin, timeMax time.Time) ([]*CalendarEntry, error)
}
