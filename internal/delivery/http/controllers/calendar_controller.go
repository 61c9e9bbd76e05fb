package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"
)

const monthLayout = "2006-01"

// ListCalendarSuccessResponse is the success response envelope for GET /calendar (200).
type ListCalendarSuccessResponse struct {
	Data  []*domain.CalendarEntry `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

type CalendarController struct {
	Logger   *slog.Logger
	Query    domain.QueryService
	Location *time.Location
	now      func() time.Time
}

func NewCalendarController(logger *slog.Logger, query domain.QueryService, loc *time.Location) *CalendarController {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarController{
		Logger:   logger,
		Query:    query,
		Location: loc,
		now:      time.Now,
	}
}

// monthWindow returns the first and last instant of month in loc.
func monthWindow(month string, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if month == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation(monthLayout, month, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, nil
}

// ListCalendar godoc
// @Summary List calendar entries for a month
// @Description Returns the external calendar's entries in the month, each flagged admin_owned when it mirrors a booked event. X-Calendar-Token is optional when an API key is configured.
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Param X-Calendar-Token header string false "Calendar bearer credential"
// @Success 200 {object} controllers.ListCalendarSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 428 {object} helpers.APIResponse "error.code: calendar_auth_required"
// @Failure 502 {object} helpers.APIResponse "error.code: calendar_error"
// @Failure 503 {object} helpers.APIResponse "error.code: calendar_unavailable"
// @Router /calendar [get]
func (c *CalendarController) ListCalendar(w http.ResponseWriter, r *http.Request) {
	start, end, err := monthWindow(r.URL.Query().Get("month"), c.Location, c.now())
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "month must be YYYY-MM")
		return
	}
	entries, err := c.Query.ListCalendarWindow(r.Context(), helpers.CalendarToken(r), start, end)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}
