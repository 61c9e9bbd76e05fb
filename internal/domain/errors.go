package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories and the HTTP layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrEventExists  = errors.New("an event already exists at this date and start time")
	ErrSlotTaken    = errors.New("event already has an approved booking")
	ErrNotBooked    = errors.New("event is not booked")
	ErrEventInUse   = errors.New("event has bookings and cannot be moved")
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidToken      = errors.New("invalid invitation token")
	ErrInvitationExpired = errors.New("invitation has expired")
	ErrAlreadyClaimed    = errors.New("invitation has already been claimed")

	ErrCalendarAuthRequired  = errors.New("calendar authorization required")
	ErrCalendarConfigMissing = errors.New("calendar is not configured")

	// ErrPersistence marks a failed store write that may leave cross-entity
	// state partially advanced.
	ErrPersistence = errors.New("persistence error")
)

// RemoteError is a non-success response from the external calendar service.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("calendar: %s", e.Message)
	}
	return fmt.Sprintf("calendar: %s (status %d)", e.Message, e.StatusCode)
}
