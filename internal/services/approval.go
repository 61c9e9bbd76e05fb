package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"venuebooking/internal/domain"
	"venuebooking/internal/timefmt"
)

type approvalService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	calendar       domain.CalendarBridge
	emailService   domain.EmailService
	cache          domain.ViewCache
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewApprovalService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	calendar domain.CalendarBridge,
	emailService domain.EmailService,
	cache domain.ViewCache,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ApprovalService {
	return &approvalService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		calendar:       calendar,
		emailService:   emailService,
		cache:          cache,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *approvalService) checkCalendarPreconditions(calendarToken string) error {
	if calendarToken == "" {
		return domain.ErrCalendarAuthRequired
	}
	if !s.calendar.Configured() {
		return domain.ErrCalendarConfigMissing
	}
	return nil
}

// Approve runs the approval saga for bookingID. Steps after the booking update
// are not rolled back; a failure of book_event leaves the booking approved and
// is returned as ErrPersistence together with the partial result.
func (s *approvalService) Approve(ctx context.Context, bookingID, calendarToken string) (*domain.ApprovalResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkCalendarPreconditions(calendarToken); err != nil {
		return nil, err
	}
	log := s.logger.With("booking_id", bookingID)
	result := domain.NewApprovalResult()
	now := s.now().UTC()

	booking, err := s.bookingRepo.Approve(ctx, bookingID, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrSlotTaken) {
			return nil, err
		}
		result.Record(domain.StepApproveBooking, domain.StepFailed, err)
		return result, fmt.Errorf("approve booking: %w: %w", domain.ErrPersistence, err)
	}
	result.Record(domain.StepApproveBooking, domain.StepOK, nil)
	result.Booking = booking
	defer invalidateViews(ctx, s.cache, s.logger)

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		result.Record(domain.StepReadEvent, domain.StepFailed, err)
		log.ErrorContext(ctx, "approval stopped after booking update", "step", domain.StepReadEvent, "err", err)
		return result, fmt.Errorf("read event: %w: %w", domain.ErrPersistence, err)
	}
	result.Record(domain.StepReadEvent, domain.StepOK, nil)
	if prev := event.BookedPerformerID; event.Status == domain.EventBooked && prev != nil && *prev != booking.PerformerID {
		log.WarnContext(ctx, "rebooking event for a different performer", "event_id", event.ID,
			"previous_performer_id", *prev, "calendar_mirrored", event.HasCalendarEvent())
	}

	bookedAt := now
	if booking.ApprovedAt != nil {
		bookedAt = *booking.ApprovedAt
	}
	if err := s.eventRepo.MarkBooked(ctx, event.ID, booking.PerformerID, bookedAt); err != nil {
		result.Record(domain.StepBookEvent, domain.StepFailed, err)
		result.Event = event
		log.ErrorContext(ctx, "booking approved but event not booked", "event_id", event.ID, "err", err)
		return result, fmt.Errorf("book event: %w: %w", domain.ErrPersistence, err)
	}
	result.Record(domain.StepBookEvent, domain.StepOK, nil)

	if event.HasCalendarEvent() {
		result.Record(domain.StepCalendarSync, domain.StepSkipped, nil)
	} else if err := s.syncCalendar(ctx, calendarToken, event.ID, booking); err != nil {
		result.Record(domain.StepCalendarSync, domain.StepFailed, err)
		result.CalendarWarning = err.Error()
		log.WarnContext(ctx, "calendar sync failed, approval kept", "event_id", event.ID, "err", err)
	} else {
		result.Record(domain.StepCalendarSync, domain.StepOK, nil)
	}

	s.removeSiblings(ctx, booking, result)

	if err := s.notifyPerformer(ctx, booking); err != nil {
		result.Record(domain.StepNotifyPerformer, domain.StepFailed, err)
		log.WarnContext(ctx, "approval email failed", "err", err)
	} else {
		result.Record(domain.StepNotifyPerformer, domain.StepOK, nil)
	}

	s.readBack(ctx, result, booking, event.ID)
	log.InfoContext(ctx, "booking approved", "event_id", event.ID,
		"removed", len(result.RemovedBookingIDs), "calendar_warning", result.CalendarWarning != "")
	return result, nil
}

// syncCalendar creates the calendar entry for booking and stores its id on the
// event. If the id cannot be stored the remote entry is removed again so a
// retry does not leave a duplicate behind.
func (s *approvalService) syncCalendar(ctx context.Context, calendarToken, eventID string, booking *domain.Booking) error {
	externalID, err := s.calendar.CreateEvent(ctx, calendarToken, booking)
	if err != nil {
		return err
	}
	stored, err := s.eventRepo.SetCalendarEventID(ctx, eventID, externalID)
	if err != nil {
		s.calendar.DeleteEvent(ctx, calendarToken, externalID)
		return fmt.Errorf("store calendar event id: %w", err)
	}
	if !stored {
		s.logger.WarnContext(ctx, "event already mirrored, removing duplicate calendar entry",
			"event_id", eventID, "calendar_event_id", externalID)
		s.calendar.DeleteEvent(ctx, calendarToken, externalID)
	}
	return nil
}

func (s *approvalService) removeSiblings(ctx context.Context, approved *domain.Booking, result *domain.ApprovalResult) {
	pending, err := s.bookingRepo.ListByEventAndStatus(ctx, approved.EventID, domain.BookingPending)
	if err != nil {
		result.Record(domain.StepRemoveSiblings, domain.StepFailed, err)
		s.logger.WarnContext(ctx, "listing competing bookings failed", "event_id", approved.EventID, "err", err)
		return
	}
	for _, b := range pending {
		if b.ID == approved.ID {
			continue
		}
		if err := s.bookingRepo.Delete(ctx, b.ID); err != nil {
			result.FailedRemovals = append(result.FailedRemovals, b.ID)
			s.logger.WarnContext(ctx, "removing competing booking failed", "booking_id", b.ID, "err", err)
			continue
		}
		result.RemovedBookingIDs = append(result.RemovedBookingIDs, b.ID)
	}
	if n := len(result.FailedRemovals); n > 0 {
		result.Record(domain.StepRemoveSiblings, domain.StepFailed,
			fmt.Errorf("%d of %d competing bookings not removed", n, n+len(result.RemovedBookingIDs)))
		return
	}
	result.Record(domain.StepRemoveSiblings, domain.StepOK, nil)
}

func (s *approvalService) notifyPerformer(ctx context.Context, b *domain.Booking) error {
	return s.emailService.SendBookingApproved(ctx, &domain.BookingApprovedEmailData{
		Email:         b.PerformerEmail,
		PerformerName: b.PerformerName,
		EventTitle:    b.EventTitle,
		EventDate:     b.EventDate,
		StartTime:     timefmt.Display12(b.EventStartTime),
		EndTime:       timefmt.Display12(b.EventEndTime),
	})
}

// readBack replaces the result's booking and event with the stored rows.
func (s *approvalService) readBack(ctx context.Context, result *domain.ApprovalResult, booking *domain.Booking, eventID string) {
	if b, err := s.bookingRepo.GetByID(ctx, booking.ID); err == nil {
		result.Booking = b
	} else {
		s.logger.WarnContext(ctx, "reading approved booking back failed", "booking_id", booking.ID, "err", err)
	}
	if e, err := s.eventRepo.GetByID(ctx, eventID); err == nil {
		result.Event = e
	} else {
		s.logger.WarnContext(ctx, "reading booked event back failed", "event_id", eventID, "err", err)
	}
}

// Reject deletes the booking. Rejecting an absent booking succeeds.
func (s *approvalService) Reject(ctx context.Context, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.bookingRepo.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("reject booking: %w: %w", domain.ErrPersistence, err)
	}
	invalidateViews(ctx, s.cache, s.logger)
	return nil
}

// SyncCalendar mirrors a booked event whose earlier calendar sync failed.
func (s *approvalService) SyncCalendar(ctx context.Context, eventID, calendarToken string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkCalendarPreconditions(calendarToken); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.EventBooked {
		return nil, domain.ErrNotBooked
	}
	if event.HasCalendarEvent() {
		return event, nil
	}
	booking, err := s.bookingRepo.GetApprovedByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no approved booking", domain.ErrNotBooked)
		}
		return nil, fmt.Errorf("get approved booking: %w", err)
	}
	if err := s.syncCalendar(ctx, calendarToken, eventID, booking); err != nil {
		return nil, err
	}
	invalidateViews(ctx, s.cache, s.logger)

	event, err = s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
