package http

import (
	"log/slog"
	"net/http"

	"venuebooking/internal/delivery/http/controllers"
	"venuebooking/internal/delivery/http/middleware"
	"venuebooking/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events      *controllers.EventController
	Invitations *controllers.InvitationController
	Bookings    *controllers.BookingController
	Calendar    *controllers.CalendarController
	Health      *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
// Administrator routes require a Bearer token accepted by verifier.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(verifier, logger)

	// Events
	mux.HandleFunc("POST /events", admin(c.Events.CreateEvent))
	mux.HandleFunc("GET /events", admin(c.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", admin(c.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", admin(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", admin(c.Events.DeleteEvent))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", admin(c.Invitations.IssueInvitation))
	mux.HandleFunc("GET /events/{eventID}/invitations", admin(c.Invitations.ListEventInvitations))

	// Bookings
	mux.HandleFunc("GET /bookings", admin(c.Bookings.ListBookings))
	mux.HandleFunc("POST /bookings/{bookingID}/approve", admin(c.Bookings.ApproveBooking))
	mux.HandleFunc("DELETE /bookings/{bookingID}", admin(c.Bookings.RejectBooking))
	mux.HandleFunc("POST /events/{eventID}/calendar-sync", admin(c.Bookings.SyncCalendar))

	// Calendar
	mux.HandleFunc("GET /calendar", admin(c.Calendar.ListCalendar))

	// Public
	mux.HandleFunc("POST /signup", c.Invitations.Signup)
	mux.HandleFunc("GET /healthz", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
