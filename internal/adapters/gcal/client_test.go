package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venuebooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBridge(t *testing.T, srv *httptest.Server, cfg Config) domain.CalendarBridge {
	t.Helper()
	cfg.BaseURL = srv.URL
	cfg.HTTPClient = srv.Client()
	b, err := NewCalendarBridge(cfg, testLogger())
	require.NoError(t, err)
	return b
}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:             "b-1",
		EventID:        "2024-05-01_1900",
		PerformerName:  "The Quiet Ones",
		PerformerEmail: "band@example.com",
		EventTitle:     "Friday Night",
		EventDate:      "2024-05-01",
		EventStartTime: "19:00",
		EventEndTime:   "21:30",
		Notes:          "Bring a drum riser",
	}
}

func TestCalendarBridge_CreateEvent(t *testing.T) {
	var got calendar.Event
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/venue-cal/events", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gcal-123"}`))
	}))
	defer srv.Close()

	b := newTestBridge(t, srv, Config{CalendarID: "venue-cal"})
	id, err := b.CreateEvent(context.Background(), "access-token", testBooking())
	require.NoError(t, err)
	assert.Equal(t, "gcal-123", id)
	assert.Equal(t, "Bearer access-token", auth)
	assert.Equal(t, "Friday Night", got.Summary)
	assert.Equal(t, "Notes: Bring a drum riser\nPerformer: The Quiet Ones\nEmail: band@example.com", got.Description)
	require.NotNil(t, got.Start)
	assert.Equal(t, "2024-05-01T19:00:00", got.Start.DateTime)
	assert.Equal(t, "America/Chicago", got.Start.TimeZone)
	require.NotNil(t, got.End)
	assert.Equal(t, "2024-05-01T21:30:00", got.End.DateTime)
}

func TestCalendarBridge_CreateEvent_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Insufficient Permission"}}`))
	}))
	defer srv.Close()

	b := newTestBridge(t, srv, Config{CalendarID: "venue-cal"})
	_, err := b.CreateEvent(context.Background(), "access-token", testBooking())
	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusForbidden, remote.StatusCode)
	assert.Equal(t, "Insufficient Permission", remote.Message)
}

func TestCalendarBridge_CreateEvent_Preconditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	_, err := newTestBridge(t, srv, Config{}).CreateEvent(context.Background(), "tok", testBooking())
	require.ErrorIs(t, err, domain.ErrCalendarConfigMissing)

	_, err = newTestBridge(t, srv, Config{CalendarID: "venue-cal"}).CreateEvent(context.Background(), "", testBooking())
	require.ErrorIs(t, err, domain.ErrCalendarAuthRequired)
}

func TestDescription_WithoutNotes(t *testing.T) {
	bk := testBooking()
	bk.Notes = ""
	assert.Equal(t, "Performer: The Quiet Ones\nEmail: band@example.com", Description(bk))
}

func TestCalendarBridge_ListEvents_APIKey(t *testing.T) {
	var query map[string][]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/venue-cal/events", r.URL.Path)
		query = r.URL.Query()
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"gcal-1","summary":"Friday Night","start":{"dateTime":"2024-05-01T19:00:00-05:00"},"end":{"dateTime":"2024-05-01T21:00:00-05:00"}},
			{"id":"holiday","start":{"date":"2024-05-27"},"end":{"date":"2024-05-28"}}
		]}`))
	}))
	defer srv.Close()

	b := newTestBridge(t, srv, Config{CalendarID: "venue-cal", APIKey: "public-key"})
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	entries, err := b.ListEvents(context.Background(), "", from, to)
	require.NoError(t, err)

	assert.Empty(t, auth)
	assert.Equal(t, []string{"public-key"}, query["key"])
	assert.Equal(t, []string{"true"}, query["singleEvents"])
	assert.Equal(t, []string{"startTime"}, query["orderBy"])
	assert.Equal(t, []string{"2024-05-01T00:00:00Z"}, query["timeMin"])

	require.Len(t, entries, 2)
	assert.Equal(t, "Friday Night", entries[0].Title)
	assert.False(t, entries[0].AllDay)
	assert.Equal(t, 0, entries[0].Start.UTC().Hour())
	assert.Equal(t, "Untitled Event", entries[1].Title)
	assert.True(t, entries[1].AllDay)
	assert.Equal(t, 27, entries[1].Start.Day())
}

func TestCalendarBridge_ListEvents_Paginates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"items":[{"id":"a","summary":"A"}],"nextPageToken":"p2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"b","summary":"B"}]}`))
	}))
	defer srv.Close()

	b := newTestBridge(t, srv, Config{CalendarID: "venue-cal"})
	entries, err := b.ListEvents(context.Background(), "tok", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[1].ID)
}

func TestCalendarBridge_ListEvents_NoCredential(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestBridge(t, srv, Config{CalendarID: "venue-cal"}).ListEvents(context.Background(), "", time.Now(), time.Now())
	require.ErrorIs(t, err, domain.ErrCalendarAuthRequired)
}

func TestCalendarBridge_DeleteEvent(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	newTestBridge(t, srv, Config{CalendarID: "venue-cal"}).DeleteEvent(context.Background(), "tok", "gcal-1")
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/calendars/venue-cal/events/gcal-1", path)
}

func TestCalendarBridge_DeleteEvent_FailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.NotPanics(t, func() {
		newTestBridge(t, srv, Config{CalendarID: "venue-cal"}).DeleteEvent(context.Background(), "tok", "gcal-1")
	})
}

func TestNewCalendarBridge_BadTimeZone(t *testing.T) {
	_, err := NewCalendarBridge(Config{TimeZone: "Mars/Olympus"}, testLogger())
	require.Error(t, err)
}
