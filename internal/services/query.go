package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"venuebooking/internal/domain"
)

type queryService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	calendar       domain.CalendarBridge
	cache          domain.ViewCache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewQueryService returns the read side. Lists are served from cache when
// present; the store stays authoritative.
func NewQueryService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	calendar domain.CalendarBridge,
	cache domain.ViewCache,
	logger *slog.Logger,
	timeout time.Duration,
) domain.QueryService {
	return &queryService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		calendar:       calendar,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *queryService) ListBookingsByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", domain.ErrInvalidInput, status)
	}
	gen, cacheable := s.generation(ctx)
	if cacheable {
		cached, ok, err := s.cache.GetBookings(ctx, gen, status)
		if err != nil {
			s.logger.WarnContext(ctx, "booking cache read failed", "status", status, "err", err)
		}
		if ok {
			return cached, nil
		}
	}

	bookings, err := s.bookingRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if cacheable {
		if err := s.cache.SetBookings(ctx, gen, status, bookings); err != nil {
			s.logger.WarnContext(ctx, "booking cache write failed", "status", status, "err", err)
		}
	}
	return bookings, nil
}

func (s *queryService) ListEventsByStatus(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown event status %q", domain.ErrInvalidInput, status)
	}
	gen, cacheable := s.generation(ctx)
	if cacheable {
		cached, ok, err := s.cache.GetEvents(ctx, gen, status)
		if err != nil {
			s.logger.WarnContext(ctx, "event cache read failed", "status", status, "err", err)
		}
		if ok {
			return cached, nil
		}
	}

	events, err := s.eventRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if cacheable {
		if err := s.cache.SetEvents(ctx, gen, status, events); err != nil {
			s.logger.WarnContext(ctx, "event cache write failed", "status", status, "err", err)
		}
	}
	return events, nil
}

// generation is taken before the store read. On error the request bypasses the cache.
func (s *queryService) generation(ctx context.Context) (int64, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "view cache generation read failed", "err", err)
		return 0, false
	}
	return gen, true
}

// ListCalendarWindow returns the remote calendar entries in [start, end], marking
// those whose id is stored on one of our events as admin-owned.
func (s *queryService) ListCalendarWindow(ctx context.Context, calendarToken string, start, end time.Time) ([]*domain.CalendarEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if end.Before(start) {
		return nil, fmt.Errorf("%w: window end is before start", domain.ErrInvalidInput)
	}
	entries, err := s.calendar.ListEvents(ctx, calendarToken, start, end)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	ids, err := s.eventRepo.ListCalendarEventIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calendar event ids: %w", err)
	}
	owned := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		owned[id] = struct{}{}
	}
	for _, e := range entries {
		_, e.AdminOwned = owned[e.ID]
	}
	return entries, nil
}

// invalidateViews drops cached lists after a write. Failures are logged only;
// stale entries expire with the cache TTL.
func invalidateViews(ctx context.Context, cache domain.ViewCache, logger *slog.Logger) {
	if err := cache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "view cache invalidation failed", "err", err)
	}
}
