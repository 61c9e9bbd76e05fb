package controllers

import (
	"log/slog"
	"net/http"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/delivery/http/middleware"
	"venuebooking/internal/domain"
	"venuebooking/internal/timefmt"
)

// EventResponse is an event with its window also split into 12-hour parts for display.
// swagger:model EventResponse
type EventResponse struct {
	*domain.Event
	Start timefmt.Clock12 `json:"start"`
	End   timefmt.Clock12 `json:"end"`
}

func newEventResponse(e *domain.Event) EventResponse {
	return EventResponse{Event: e, Start: timefmt.Split12(e.StartTime), End: timefmt.Split12(e.EndTime)}
}

func newEventResponses(events []*domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	return out
}

// CreateEventRequest is the request body for POST /events. Times are given either
// as 24-hour "HH:MM" strings or as 12-hour parts; the 24-hour form wins when both are set.
type CreateEventRequest struct {
	Title          string           `json:"title"`
	Date           string           `json:"date"`
	StartTime      string           `json:"start_time"`
	EndTime        string           `json:"end_time"`
	Start          *timefmt.Clock12 `json:"start"`
	End            *timefmt.Clock12 `json:"end"`
	Description    string           `json:"description"`
	PerformerEmail string           `json:"performer_email"`
}

func resolveTime(time24 string, parts *timefmt.Clock12) string {
	if time24 != "" || parts == nil {
		return time24
	}
	return timefmt.Join24(*parts)
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.Date == "" {
		errs = append(errs, "date is required")
	}
	if resolveTime(c.StartTime, c.Start) == "" {
		errs = append(errs, "start time is required")
	}
	if resolveTime(c.EndTime, c.End) == "" {
		errs = append(errs, "end time is required")
	}
	return errs
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []EventResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Query   domain.QueryService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, query domain.QueryService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Query:   query,
	}
}

// CreateEvent godoc
// @Summary Create a performance slot
// @Description Creates a pending event. The id is derived from date and start time, so a second slot at the same instant is rejected with 409.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Slot data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event := &domain.Event{
		Title:          req.Title,
		Date:           req.Date,
		StartTime:      resolveTime(req.StartTime, req.Start),
		EndTime:        resolveTime(req.EndTime, req.End),
		Description:    req.Description,
		PerformerEmail: req.PerformerEmail,
		AdminID:        adminID,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventResponse(event))
}

// ListEvents godoc
// @Summary List performance slots
// @Description Returns events ordered by date and start time, optionally filtered by status.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending or booked"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	status := domain.EventStatus(r.URL.Query().Get("status"))
	events, err := c.Query.ListEventsByStatus(r.Context(), status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponses(events))
}

// GetEvent godoc
// @Summary Get a performance slot
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Title          *string          `json:"title"`
	Date           *string          `json:"date"`
	StartTime      *string          `json:"start_time"`
	EndTime        *string          `json:"end_time"`
	Start          *timefmt.Clock12 `json:"start"`
	End            *timefmt.Clock12 `json:"end"`
	Description    *string          `json:"description"`
	PerformerEmail *string          `json:"performer_email"`
}

func optionalTime(time24 *string, parts *timefmt.Clock12) *string {
	if time24 != nil {
		return time24
	}
	if parts == nil {
		return nil
	}
	v := timefmt.Join24(*parts)
	return &v
}

func (u UpdateEventRequest) toDomain() domain.EventUpdate {
	return domain.EventUpdate{
		Title:          u.Title,
		Date:           u.Date,
		StartTime:      optionalTime(u.StartTime, u.Start),
		EndTime:        optionalTime(u.EndTime, u.End),
		Description:    u.Description,
		PerformerEmail: u.PerformerEmail,
	}
}

// UpdateEvent godoc
// @Summary Edit a performance slot
// @Description Updates title, date, times, description or performer email. Moving the date or start time changes the id; a slot with bookings cannot be moved.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slot taken or event has bookings)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, req.toDomain())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// DeleteEvent godoc
// @Summary Delete a performance slot
// @Description Deletes the event and its bookings. A mirrored calendar entry is removed when X-Calendar-Token is sent.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param X-Calendar-Token header string false "Calendar bearer credential"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, helpers.CalendarToken(r)); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
