package domain

import "context"

// ApprovalStep names one step of the approval saga.
type ApprovalStep string

const (
	StepApproveBooking  ApprovalStep = "approve_booking"
	StepReadEvent       ApprovalStep = "read_event"
	StepBookEvent       ApprovalStep = "book_event"
	StepCalendarSync    ApprovalStep = "calendar_sync"
	StepRemoveSiblings  ApprovalStep = "remove_siblings"
	StepNotifyPerformer ApprovalStep = "notify_performer"
)

// StepStatus is the outcome of a saga step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records how one saga step ended.
type StepResult struct {
	Step   ApprovalStep `json:"step"`
	Status StepStatus   `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// ApprovalResult is the observable outcome of an approval: which steps ran,
// which failed, and the post-state of the booking and event as read back from the store.
// swagger:model ApprovalResult
type ApprovalResult struct {
	Booking           *Booking     `json:"booking"`
	Event             *Event       `json:"event"`
	Steps             []StepResult `json:"steps"`
	CalendarWarning   string       `json:"calendar_warning,omitempty"`
	RemovedBookingIDs []string     `json:"removed_booking_ids"`
	FailedRemovals    []string     `json:"failed_removals"`
}

// NewApprovalResult returns an empty result with non-nil slices.
func NewApprovalResult() *ApprovalResult {
	return &ApprovalResult{
		Steps:             []StepResult{},
		RemovedBookingIDs: []string{},
		FailedRemovals:    []string{},
	}
}

// Record appends the outcome of step. A non-nil err marks it failed.
func (r *ApprovalResult) Record(step ApprovalStep, status StepStatus, err error) {
	sr := StepResult{Step: step, Status: status}
	if err != nil {
		sr.Status = StepFailed
		sr.Error = err.Error()
	}
	r.Steps = append(r.Steps, sr)
}

// Status returns the recorded status of step, or "" if it never ran.
func (r *ApprovalResult) Status(step ApprovalStep) StepStatus {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Status
		}
	}
	return ""
}

// ApprovalService is the booking state machine driven by administrators.
type ApprovalService interface {
	// Approve runs the approval saga. On a partial failure both the result and
	// an error are returned so callers can see which steps already applied.
	Approve(ctx context.Context, bookingID, calendarToken string) (*ApprovalResult, error)
	// Reject deletes the booking. Rejecting an absent booking succeeds.
	Reject(ctx context.Context, bookingID string) error
	// SyncCalendar retries the calendar mirror for a booked event. It is a no-op
	// returning the event when an external id is already stored.
	SyncCalendar(ctx context.Context, eventID, calendarToken string) (*Event, error)
}
