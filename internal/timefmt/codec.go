// Package timefmt converts between the canonical 24-hour "HH:MM" form stored on
// events and bookings and the split 12-hour form used for input and display.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is the half of the day in a 12-hour clock.
type Period string

const (
	AM Period = "AM"
	PM Period = "PM"
)

// Clock12 is a wall-clock time in 12-hour form. Hour is 1-12; Minute keeps the
// two-digit text of the 24-hour form so "07" stays "07".
type Clock12 struct {
	Hour   int    `json:"hour"`
	Minute string `json:"minute"`
	Period Period `json:"period"`
}

// IsZero reports whether c is the zero value returned for malformed input.
func (c Clock12) IsZero() bool {
	return c.Hour == 0 && c.Minute == "" && c.Period == ""
}

// Split12 converts "HH:MM" to its 12-hour form. Malformed input yields the zero Clock12.
func Split12(time24 string) Clock12 {
	h, m, ok := parse24(time24)
	if !ok {
		return Clock12{}
	}
	period := AM
	if h >= 12 {
		period = PM
	}
	hour := h
	switch {
	case h == 0:
		hour = 12
	case h > 12:
		hour = h - 12
	}
	return Clock12{Hour: hour, Minute: m, Period: period}
}

// Join24 converts a 12-hour time back to "HH:MM". Malformed input yields "".
func Join24(c Clock12) string {
	if c.Hour < 1 || c.Hour > 12 || !validMinute(c.Minute) {
		return ""
	}
	h := c.Hour
	switch strings.ToUpper(string(c.Period)) {
	case string(PM):
		if h != 12 {
			h += 12
		}
	case string(AM):
		if h == 12 {
			h = 0
		}
	default:
		return ""
	}
	return fmt.Sprintf("%02d:%s", h, c.Minute)
}

// Display12 renders "HH:MM" as e.g. "7:30 PM". Malformed input yields "".
func Display12(time24 string) string {
	c := Split12(time24)
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%s %s", c.Hour, c.Minute, c.Period)
}

// Valid24 reports whether s is a well-formed "HH:MM" time.
func Valid24(s string) bool {
	_, _, ok := parse24(s)
	return ok
}

// Compact drops the colon: "19:00" -> "1900". Used for derived event keys.
func Compact(time24 string) string {
	return strings.Replace(time24, ":", "", 1)
}

func parse24(s string) (int, string, bool) {
	hh, mm, found := strings.Cut(s, ":")
	if !found || len(hh) != 2 || !validMinute(mm) {
		return 0, "", false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, "", false
	}
	return h, mm, true
}

func validMinute(mm string) bool {
	if len(mm) != 2 {
		return false
	}
	m, err := strconv.Atoi(mm)
	return err == nil && m >= 0 && m <= 59
}
