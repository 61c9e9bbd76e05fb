package helpers

import (
	"net/http"
	"strings"
)

// CalendarTokenHeader carries the administrator's calendar bearer credential.
const CalendarTokenHeader = "X-Calendar-Token"

// CalendarToken returns the calendar credential sent with r, or "".
func CalendarToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(CalendarTokenHeader))
}
