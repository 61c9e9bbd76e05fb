package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"venuebooking/internal/domain"
	"venuebooking/internal/timefmt"
)

type eventService struct {
	eventRepo      domain.EventRepository
	calendar       domain.CalendarBridge
	cache          domain.ViewCache
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	calendar domain.CalendarBridge,
	cache domain.ViewCache,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		calendar:       calendar,
		cache:          cache,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

// CreateEvent validates the slot and stores it as pending under its derived key.
// event is updated in place with the stored values.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.AdminID == "" {
		return fmt.Errorf("%w: event owner is required", domain.ErrInvalidInput)
	}
	event.Title = strings.TrimSpace(event.Title)
	event.PerformerEmail = normalizeEmail(event.PerformerEmail)
	if err := validateEvent(event); err != nil {
		return err
	}

	*event = *domain.NewEvent(event.Title, event.Date, event.StartTime, event.EndTime,
		event.Description, event.PerformerEmail, event.AdminID, s.now().UTC())

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrEventExists) {
			return domain.ErrEventExists
		}
		return fmt.Errorf("create event: %w", err)
	}
	invalidateViews(ctx, s.cache, s.logger)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies the non-nil fields of update. The event keeps its status,
// calendar id and creation time. Moving the date or start time re-keys the
// event, which is refused once bookings exist.
func (s *eventService) UpdateEvent(ctx context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if update.Title != nil {
		event.Title = strings.TrimSpace(*update.Title)
	}
	if update.Date != nil {
		event.Date = *update.Date
	}
	if update.StartTime != nil {
		event.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		event.EndTime = *update.EndTime
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.PerformerEmail != nil {
		event.PerformerEmail = normalizeEmail(*update.PerformerEmail)
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	event.UpdatedAt = &now

	if key := domain.EventKey(event.Date, event.StartTime); key != id {
		if event.Status == domain.EventBooked || event.HasCalendarEvent() {
			return nil, domain.ErrEventInUse
		}
		event.ID = key
		err = s.eventRepo.Rekey(ctx, id, event)
	} else {
		err = s.eventRepo.Update(ctx, event)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrEventExists), errors.Is(err, domain.ErrEventInUse):
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	invalidateViews(ctx, s.cache, s.logger)
	return event, nil
}

// DeleteEvent removes the event and, through the foreign key, its bookings.
// A mirrored calendar entry is removed first on a best-effort basis.
func (s *eventService) DeleteEvent(ctx context.Context, id, calendarToken string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.HasCalendarEvent() {
		if calendarToken == "" {
			s.logger.WarnContext(ctx, "calendar entry left in place, no calendar credential",
				"event_id", id, "calendar_event_id", *event.CalendarEventID)
		} else {
			s.calendar.DeleteEvent(ctx, calendarToken, *event.CalendarEventID)
		}
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	invalidateViews(ctx, s.cache, s.logger)
	return nil
}

func validateEvent(e *domain.Event) error {
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	if !timefmt.Valid24(e.StartTime) || !timefmt.Valid24(e.EndTime) {
		return fmt.Errorf("%w: times must be HH:MM (24-hour)", domain.ErrInvalidInput)
	}
	// Zero-padded HH:MM compares correctly as strings.
	if e.EndTime <= e.StartTime {
		return fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidInput)
	}
	if e.PerformerEmail != "" {
		if _, err := mail.ParseAddress(e.PerformerEmail); err != nil {
			return fmt.Errorf("%w: performer email is invalid", domain.ErrInvalidInput)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
