package gcal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	"venuebooking/internal/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	DefaultTimeZone = "America/Chicago"
	DefaultTimeout  = 10 * time.Second
	untitled        = "Untitled Event"
)

// Config configures the calendar bridge.
type Config struct {
	CalendarID string
	TimeZone   string
	// APIKey grants read-only listing when no bearer token is supplied.
	APIKey string
	// BaseURL overrides the Calendar API endpoint. Empty uses the public one.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type calendarBridge struct {
	cfg      Config
	location *time.Location
	logger   *slog.Logger
}

// NewCalendarBridge returns a domain.CalendarBridge backed by Google Calendar v3.
func NewCalendarBridge(cfg Config, logger *slog.Logger) (domain.CalendarBridge, error) {
	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load calendar time zone %q: %w", cfg.TimeZone, err)
	}
	return &calendarBridge{cfg: cfg, location: loc, logger: logger}, nil
}

func (b *calendarBridge) Configured() bool {
	return b.cfg.CalendarID != ""
}

// service builds a Calendar client for one call. A non-empty token is sent as
// a static bearer credential.
func (b *calendarBridge) service(ctx context.Context, token string) (*calendar.Service, error) {
	httpClient := b.cfg.HTTPClient
	if token != "" {
		base := context.WithValue(ctx, oauth2.HTTPClient, b.cfg.HTTPClient)
		httpClient = oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	}
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if b.cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(b.cfg.BaseURL, "/")+"/"))
	}
	return calendar.NewService(ctx, opts...)
}

func (b *calendarBridge) CreateEvent(ctx context.Context, token string, booking *domain.Booking) (string, error) {
	if !b.Configured() {
		return "", domain.ErrCalendarConfigMissing
	}
	if token == "" {
		return "", domain.ErrCalendarAuthRequired
	}
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	svc, err := b.service(ctx, token)
	if err != nil {
		return "", fmt.Errorf("calendar client: %w", err)
	}
	created, err := svc.Events.Insert(b.cfg.CalendarID, b.toCalendarEvent(booking)).Context(ctx).Do()
	if err != nil {
		return "", remoteError(err, "Failed to create calendar event")
	}
	return created.Id, nil
}

func (b *calendarBridge) toCalendarEvent(booking *domain.Booking) *calendar.Event {
	return &calendar.Event{
		Summary:     booking.EventTitle,
		Description: Description(booking),
		Start: &calendar.EventDateTime{
			DateTime: localDateTime(booking.EventDate, booking.EventStartTime),
			TimeZone: b.cfg.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: localDateTime(booking.EventDate, booking.EventEndTime),
			TimeZone: b.cfg.TimeZone,
		},
	}
}

// Description composes the calendar entry body: optional notes, then performer name and email.
func Description(booking *domain.Booking) string {
	lines := make([]string, 0, 3)
	if booking.Notes != "" {
		lines = append(lines, "Notes: "+booking.Notes)
	}
	lines = append(lines, "Performer: "+booking.PerformerName, "Email: "+booking.PerformerEmail)
	return strings.Join(lines, "\n")
}

// localDateTime is a wall-clock timestamp interpreted in the event's timeZone.
func localDateTime(date, hhmm string) string {
	return date + "T" + hhmm + ":00"
}

func (b *calendarBridge) DeleteEvent(ctx context.Context, token, externalID string) {
	if !b.Configured() || token == "" || externalID == "" {
		b.logger.WarnContext(ctx, "calendar delete skipped", "calendar_event_id", externalID,
			"configured", b.Configured(), "has_token", token != "")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	svc, err := b.service(ctx, token)
	if err != nil {
		b.logger.WarnContext(ctx, "calendar delete failed", "calendar_event_id", externalID, "err", err)
		return
	}
	if err := svc.Events.Delete(b.cfg.CalendarID, externalID).Context(ctx).Do(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
			b.logger.DebugContext(ctx, "calendar event already gone", "calendar_event_id", externalID)
			return
		}
		b.logger.WarnContext(ctx, "calendar delete failed", "calendar_event_id", externalID, "err", err)
	}
}

func (b *calendarBridge) ListEvents(ctx context.Context, token string, timeMin, timeMax time.Time) ([]*domain.CalendarEntry, error) {
	if !b.Configured() {
		return nil, domain.ErrCalendarConfigMissing
	}
	if token == "" && b.cfg.APIKey == "" {
		return nil, domain.ErrCalendarAuthRequired
	}
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	svc, err := b.service(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("calendar client: %w", err)
	}
	var callOpts []googleapi.CallOption
	if token == "" {
		callOpts = append(callOpts, googleapi.QueryParameter("key", b.cfg.APIKey))
	}

	call := svc.Events.List(b.cfg.CalendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	entries := make([]*domain.CalendarEntry, 0)
	for {
		page, err := call.Do(callOpts...)
		if err != nil {
			return nil, remoteError(err, "Failed to fetch calendar events")
		}
		for _, item := range page.Items {
			entries = append(entries, b.toEntry(item))
		}
		if page.NextPageToken == "" {
			break
		}
		call.PageToken(page.NextPageToken)
	}
	return entries, nil
}

func (b *calendarBridge) toEntry(item *calendar.Event) *domain.CalendarEntry {
	entry := &domain.CalendarEntry{ID: item.Id, Title: item.Summary}
	if entry.Title == "" {
		entry.Title = untitled
	}
	if item.Start != nil {
		entry.AllDay = item.Start.Date != ""
		entry.Start = b.parseEventTime(item.Start)
	}
	if item.End != nil {
		entry.End = b.parseEventTime(item.End)
	}
	return entry
}

func (b *calendarBridge) parseEventTime(t *calendar.EventDateTime) time.Time {
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.ParseInLocation(time.DateOnly, t.Date, b.location); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func remoteError(err error, fallback string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = fallback
		}
		return &domain.RemoteError{StatusCode: gerr.Code, Message: msg}
	}
	return &domain.RemoteError{Message: fmt.Sprintf("%s: %v", fallback, err)}
}
