package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"devevents/internal/delivery/http/controllers"
	"devevents/internal/delivery/http/middleware"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(events *controllers.EventController, bookings *controllers.BookingController, health *controllers.HealthController) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /api/events", events.CreateEvent)
	mux.HandleFunc("GET /api/events", events.ListEvents)
	mux.HandleFunc("GET /api/events/{slug}", events.GetEvent)
	mux.HandleFunc("PATCH /api/events/{slug}", events.UpdateEvent)
	mux.HandleFunc("GET /api/events/{slug}/similar", events.ListSimilarEvents)
	mux.HandleFunc("GET /api/events/{slug}/bookings", bookings.ListBookings)

	// Bookings
	mux.HandleFunc("POST /api/bookings", bookings.CreateBooking)
	mux.HandleFunc("GET /api/bookings/verify", bookings.VerifyTicket)

	mux.HandleFunc("GET /healthz", health.Healthz)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with request id, logging and CORS middleware.
func NewHandler(mux http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux)))
}
