package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"devevents/internal/delivery/http/helpers"
	"devevents/internal/domain"
)

const maxBookingBodyBytes = 64 << 10

// CreateBookingRequest is the body for POST /api/bookings.
type CreateBookingRequest struct {
	EventID string `json:"eventId"`
	Email   string `json:"email"`
}

// Validate implements helpers.Validator. Format rules are left to the service.
func (req *CreateBookingRequest) Validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(req.EventID) == "" {
		fields["eventId"] = "is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "is required"
	}
	return fields
}

// BookingSuccessResponse is the success envelope for POST /api/bookings (201).
type BookingSuccessResponse struct {
	Data  *domain.BookingConfirmation `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// BookingListSuccessResponse is the success envelope for an event's bookings.
type BookingListSuccessResponse struct {
	Data  []*domain.Booking `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// TicketResponse describes a verified booking ticket.
type TicketResponse struct {
	BookingID string    `json:"bookingId"`
	EventID   string    `json:"eventId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TicketSuccessResponse is the success envelope for ticket verification.
type TicketSuccessResponse struct {
	Data  TicketResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateBooking godoc
// @Summary Book an event
// @Description Reserves a spot on an existing event. The email is trimmed and lowercased. Returns the booking and a signed ticket; a confirmation email is sent when mail delivery is configured.
// @Tags bookings
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param booking body CreateBookingRequest true "Event id and email"
// @Success 201 {object} controllers.BookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_reference"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBookingBodyBytes)
	var req CreateBookingRequest
	if kind := helpers.ContentKind(r); kind != helpers.BodyJSON {
		values, ok := helpers.ParseFormBody(w, r, kind, maxBookingBodyBytes)
		if !ok {
			return
		}
		req.EventID = values.Get("eventId")
		req.Email = values.Get("email")
		if !helpers.Validate(w, &req) {
			return
		}
	} else if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking := domain.NewBooking(strings.TrimSpace(req.EventID), req.Email, time.Time{}, time.Time{})
	confirmation, err := c.Service.CreateBooking(r.Context(), booking)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, confirmation)
}

// ListBookings godoc
// @Summary List an event's bookings
// @Tags bookings
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.BookingListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{slug}/bookings [get]
func (c *BookingController) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := c.Service.ListBookings(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}

// VerifyTicket godoc
// @Summary Verify a booking ticket
// @Tags bookings
// @Produce json
// @Param token query string true "Ticket issued at booking"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /api/bookings/verify [get]
func (c *BookingController) VerifyTicket(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		helpers.WriteJSONErrorFields(w, http.StatusBadRequest, helpers.ErrCodeValidationFailed,
			"validation failed: token: is required", map[string]string{"token": "is required"})
		return
	}
	claims, err := c.Service.VerifyTicket(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TicketResponse{
		BookingID: claims.BookingID,
		EventID:   claims.EventID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt,
	})
}
