package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createErr       error
	getErr          error
	updateErr       error
	deleteErr       error
	event           *domain.Event
	lastCreate      *domain.Event
	lastUpdateID    string
	lastUpdate      domain.EventUpdate
	lastDeleteID    string
	lastDeleteToken string
	lastGetID       string
}

func (f *fakeEventService) CreateEvent(_ context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = domain.EventKey(event.Date, event.StartTime)
	event.Status = domain.EventPending
	return nil
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	f.lastGetID = id
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.event, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	f.lastUpdateID = id
	f.lastUpdate = update
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id, calendarToken string) error {
	f.lastDeleteID = id
	f.lastDeleteToken = calendarToken
	return f.deleteErr
}

// fakeQueryService implements domain.QueryService.
type fakeQueryService struct {
	bookings        []*domain.Booking
	events          []*domain.Event
	entries         []*domain.CalendarEntry
	err             error
	lastBookingStat domain.BookingStatus
	lastEventStat   domain.EventStatus
	lastToken       string
	lastStart       time.Time
	lastEnd         time.Time
}

func (f *fakeQueryService) ListBookingsByStatus(_ context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	f.lastBookingStat = status
	if f.err != nil {
		return nil, f.err
	}
	return f.bookings, nil
}

func (f *fakeQueryService) ListEventsByStatus(_ context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	f.lastEventStat = status
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeQueryService) ListCalendarWindow(_ context.Context, token string, start, end time.Time) ([]*domain.CalendarEntry, error) {
	f.lastToken = token
	f.lastStart = start
	f.lastEnd = end
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

// fakeInvitationService implements domain.InvitationService.
type fakeInvitationService struct {
	issueErr      error
	sendErr       error
	listErr       error
	redeemErr     error
	invitation    *domain.Invitation
	link          string
	list          []*domain.Invitation
	total         int
	booking       *domain.Booking
	sendCalls     int
	lastEventID   string
	lastContact   string
	lastParams    domain.PaginationParams
	lastToken     string
	lastSubmitted domain.BookingSubmission
}

func (f *fakeInvitationService) IssueInvitation(_ context.Context, eventID, contact string) (*domain.Invitation, string, error) {
	f.lastEventID = eventID
	f.lastContact = contact
	if f.issueErr != nil {
		return nil, "", f.issueErr
	}
	return f.invitation, f.link, nil
}

func (f *fakeInvitationService) SendInvitation(_ context.Context, _ *domain.Invitation, _ string) error {
	f.sendCalls++
	return f.sendErr
}

func (f *fakeInvitationService) ListEventInvitations(_ context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	f.lastEventID = eventID
	f.lastParams = params
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.list, f.total, nil
}

func (f *fakeInvitationService) RedeemInvitation(_ context.Context, token string, sub domain.BookingSubmission) (*domain.Booking, error) {
	f.lastToken = token
	f.lastSubmitted = sub
	if f.redeemErr != nil {
		return nil, f.redeemErr
	}
	return f.booking, nil
}

// fakeApprovalService implements domain.ApprovalService.
type fakeApprovalService struct {
	result        *domain.ApprovalResult
	approveErr    error
	rejectErr     error
	syncErr       error
	event         *domain.Event
	lastBookingID string
	lastEventID   string
	lastToken     string
}

func (f *fakeApprovalService) Approve(_ context.Context, bookingID, token string) (*domain.ApprovalResult, error) {
	f.lastBookingID = bookingID
	f.lastToken = token
	return f.result, f.approveErr
}

func (f *fakeApprovalService) Reject(_ context.Context, bookingID string) error {
	f.lastBookingID = bookingID
	return f.rejectErr
}

func (f *fakeApprovalService) SyncCalendar(_ context.Context, eventID, token string) (*domain.Event, error) {
	f.lastEventID = eventID
	f.lastToken = token
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return f.event, nil
}

// decodeError decodes the envelope and returns its error code.
func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

// decodeData decodes the data field of a success envelope into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func sampleEvent() *domain.Event {
	return &domain.Event{
		ID:        "2024-05-01_1900",
		Title:     "Friday Jazz",
		Date:      "2024-05-01",
		StartTime: "19:00",
		EndTime:   "21:30",
		AdminID:   "admin-1",
		Status:    domain.EventPending,
	}
}
