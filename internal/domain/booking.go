package domain

import (
	"context"
	"time"
)

// Booking represents a reservation against an Event. EventID is a weak,
// non-owning reference checked when it is set or changed.
// swagger:model Booking
type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBooking returns a new Booking. ID is set by the repository on create.
func NewBooking(eventID, email string, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		EventID:   eventID,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// BookingConfirmation is returned to the caller when a booking is accepted.
// swagger:model BookingConfirmation
type BookingConfirmation struct {
	Booking *Booking `json:"booking"`
	Ticket  string   `json:"ticket"`
}

// TicketClaims are the facts carried by a signed booking ticket.
type TicketClaims struct {
	BookingID string
	EventID   string
	Email     string
	ExpiresAt time.Time
}

// BookingRepository defines storage operations for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	ListByEventID(ctx context.Context, eventID string) ([]*Booking, error)
}

// EventExistence is the lookup capability the booking validator depends on.
type EventExistence interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// TicketIssuer signs and verifies booking tickets.
type TicketIssuer interface {
	Issue(b *Booking) (string, error)
	Verify(token string) (*TicketClaims, error)
}

// BookingService defines booking operations.
type BookingService interface {
	CreateBooking(ctx context.Context, b *Booking) (*BookingConfirmation, error)
	ListBookings(ctx context.Context, eventSlug string) ([]*Booking, error)
	VerifyTicket(ctx context.Context, token string) (*TicketClaims, error)
}
