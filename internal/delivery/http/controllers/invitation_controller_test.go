package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvitation() *domain.Invitation {
	issued := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	return domain.NewInvitation("tok-1", "2024-05-01_1900", "band@example.com", issued)
}

func TestInvitationController_IssueInvitation(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		issueErr      error
		sendErr       error
		wantStatus    int
		wantSendCalls int
		check         func(t *testing.T, resp IssueInvitationResponse)
	}{
		{
			name:       "issue without sending",
			body:       `{"performer_email":"band@example.com"}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, resp IssueInvitationResponse) {
				assert.Equal(t, "https://book.example.com/signup?token=tok-1", resp.Link)
				assert.False(t, resp.EmailSent)
				assert.Empty(t, resp.EmailError)
				require.NotNil(t, resp.Invitation)
				assert.Equal(t, "tok-1", resp.Invitation.Token)
			},
		},
		{
			name:          "issue and send",
			body:          `{"performer_email":"band@example.com","send":true}`,
			wantStatus:    http.StatusCreated,
			wantSendCalls: 1,
			check: func(t *testing.T, resp IssueInvitationResponse) {
				assert.True(t, resp.EmailSent)
			},
		},
		{
			name:          "send failure keeps invitation",
			body:          `{"send":true}`,
			sendErr:       errors.New("failed to send invitation email"),
			wantStatus:    http.StatusCreated,
			wantSendCalls: 1,
			check: func(t *testing.T, resp IssueInvitationResponse) {
				assert.False(t, resp.EmailSent)
				assert.Contains(t, resp.EmailError, "failed to send")
				assert.NotEmpty(t, resp.Link)
			},
		},
		{
			name:       "event not found",
			body:       `{"performer_email":"band@example.com"}`,
			issueErr:   domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "event already booked",
			body:       `{"performer_email":"band@example.com"}`,
			issueErr:   domain.ErrSlotTaken,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "no contact available",
			body:       `{}`,
			issueErr:   fmt.Errorf("%w: performer contact is required", domain.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"performer_email":"a@b.co","ttl":600}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInvitationService{
				invitation: sampleInvitation(),
				link:       "https://book.example.com/signup?token=tok-1",
				issueErr:   tt.issueErr,
				sendErr:    tt.sendErr,
			}
			ctrl := NewInvitationController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/events/2024-05-01_1900/invitations", strings.NewReader(tt.body))
			req.SetPathValue("eventID", "2024-05-01_1900")
			rr := httptest.NewRecorder()

			ctrl.IssueInvitation(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantSendCalls, fake.sendCalls)
			if tt.check != nil {
				assert.Equal(t, "2024-05-01_1900", fake.lastEventID)
				var resp IssueInvitationResponse
				decodeData(t, rr, &resp)
				tt.check(t, resp)
			}
		})
	}
}

func TestInvitationController_ListEventInvitations(t *testing.T) {
	t.Run("paginated", func(t *testing.T) {
		fake := &fakeInvitationService{list: []*domain.Invitation{sampleInvitation()}, total: 3}
		ctrl := NewInvitationController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/events/2024-05-01_1900/invitations?page=2&page_size=2", nil)
		req.SetPathValue("eventID", "2024-05-01_1900")
		rr := httptest.NewRecorder()

		ctrl.ListEventInvitations(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 2}, fake.lastParams)
		var resp ListEventInvitationsResponse
		decodeData(t, rr, &resp)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 2, Total: 3, TotalPages: 2}, resp.Pagination)
	})

	t.Run("event not found", func(t *testing.T) {
		fake := &fakeInvitationService{listErr: domain.ErrNotFound}
		ctrl := NewInvitationController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/events/x/invitations", nil)
		req.SetPathValue("eventID", "x")
		rr := httptest.NewRecorder()

		ctrl.ListEventInvitations(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestInvitationController_Signup(t *testing.T) {
	validBody := `{"performer_name":"The Band","performer_email":"band@example.com","notes":"bring amps"}`

	tests := []struct {
		name       string
		target     string
		body       string
		redeemErr  error
		wantStatus int
		wantCode   string
	}{
		{name: "success", target: "/signup?token=tok-1", body: validBody, wantStatus: http.StatusCreated},
		{name: "missing token", target: "/signup", body: validBody, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "missing name", target: "/signup?token=tok-1", body: `{"performer_email":"band@example.com"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "unknown token", target: "/signup?token=nope", body: validBody, redeemErr: domain.ErrInvalidToken, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "expired", target: "/signup?token=tok-1", body: validBody, redeemErr: domain.ErrInvitationExpired, wantStatus: http.StatusGone, wantCode: helpers.ErrCodeGone},
		{name: "already claimed", target: "/signup?token=tok-1", body: validBody, redeemErr: domain.ErrAlreadyClaimed, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeConflict},
		{name: "event deleted", target: "/signup?token=tok-1", body: validBody, redeemErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{
			name:       "persistence failure",
			target:     "/signup?token=tok-1",
			body:       validBody,
			redeemErr:  fmt.Errorf("redeem invitation: %w: %w", domain.ErrPersistence, errors.New("tx aborted")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInvitationService{
				redeemErr: tt.redeemErr,
				booking:   &domain.Booking{ID: "b-1", EventID: "2024-05-01_1900", Status: domain.BookingPending},
			}
			ctrl := NewInvitationController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Signup(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rr))
				return
			}
			assert.Equal(t, "tok-1", fake.lastToken)
			assert.Equal(t, "The Band", fake.lastSubmitted.PerformerName)
			assert.Equal(t, "bring amps", fake.lastSubmitted.Notes)
			var booking domain.Booking
			decodeData(t, rr, &booking)
			assert.Equal(t, "b-1", booking.ID)
			assert.Equal(t, domain.BookingPending, booking.Status)
		})
	}
}
