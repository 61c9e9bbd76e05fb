package controllers

import (
	"log/slog"
	"net/http"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"
)

// ListBookingsSuccessResponse is the success response envelope for GET /bookings (200).
type ListBookingsSuccessResponse struct {
	Data  []*domain.Booking `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ApprovalSuccessResponse is the success response envelope for POST /bookings/{bookingID}/approve (200).
// A failed calendar mirror is reported in data.calendar_warning, not as an error.
type ApprovalSuccessResponse struct {
	Data  *domain.ApprovalResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type BookingController struct {
	Logger   *slog.Logger
	Approval domain.ApprovalService
	Query    domain.QueryService
}

func NewBookingController(logger *slog.Logger, approval domain.ApprovalService, query domain.QueryService) *BookingController {
	return &BookingController{
		Logger:   logger,
		Approval: approval,
		Query:    query,
	}
}

// ListBookings godoc
// @Summary List bookings by status
// @Description Returns bookings oldest first. status defaults to pending.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending or approved"
// @Success 200 {object} controllers.ListBookingsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [get]
func (c *BookingController) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.BookingPending
	}
	bookings, err := c.Query.ListBookingsByStatus(r.Context(), status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}

// ApproveBooking godoc
// @Summary Approve a booking
// @Description Approves the booking, books its event, mirrors it to the calendar, removes competing bookings and notifies the performer. Requires X-Calendar-Token.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID"
// @Param X-Calendar-Token header string true "Calendar bearer credential"
// @Success 200 {object} controllers.ApprovalSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slot already approved)"
// @Failure 428 {object} helpers.APIResponse "error.code: calendar_auth_required"
// @Failure 503 {object} helpers.APIResponse "error.code: calendar_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID}/approve [post]
func (c *BookingController) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	result, err := c.Approval.Approve(r.Context(), bookingID, helpers.CalendarToken(r))
	if err != nil {
		if result != nil {
			c.Logger.ErrorContext(r.Context(), "approval incomplete", "booking_id", bookingID, "steps", result.Steps)
		}
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// RejectBooking godoc
// @Summary Reject a booking
// @Description Deletes the booking. Rejecting an absent booking succeeds.
// @Tags bookings
// @Security BearerAuth
// @Param bookingID path string true "Booking ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [delete]
func (c *BookingController) RejectBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	if err := c.Approval.Reject(r.Context(), bookingID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncCalendar godoc
// @Summary Retry the calendar mirror of a booked event
// @Description Creates the calendar entry for a booked event that has none. Returns the event unchanged when one is already stored.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param X-Calendar-Token header string true "Calendar bearer credential"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event not booked)"
// @Failure 428 {object} helpers.APIResponse "error.code: calendar_auth_required"
// @Failure 502 {object} helpers.APIResponse "error.code: calendar_error"
// @Failure 503 {object} helpers.APIResponse "error.code: calendar_unavailable"
// @Router /events/{eventID}/calendar-sync [post]
func (c *BookingController) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Approval.SyncCalendar(r.Context(), eventID, helpers.CalendarToken(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}
