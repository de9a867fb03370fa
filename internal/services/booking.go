package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"devevents/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// BookingValidator checks that a booking's event reference resolves.
type BookingValidator struct {
	events domain.EventExistence
}

// NewBookingValidator returns a validator using events for lookups.
func NewBookingValidator(events domain.EventExistence) *BookingValidator {
	return &BookingValidator{events: events}
}

// Validate checks referential integrity when the event reference was set or
// changed. A missing event yields *domain.ReferenceError; a failed lookup
// yields a *domain.ValidationError wrapping the cause.
func (v *BookingValidator) Validate(ctx context.Context, b *domain.Booking, changes domain.Changes) error {
	if !changes.Has(domain.FieldEventID) {
		return nil
	}
	if strings.TrimSpace(b.EventID) == "" {
		return domain.NewValidationError("event_id", "is required")
	}
	exists, err := v.events.Exists(ctx, b.EventID)
	if err != nil {
		return domain.NewValidationError("event_id", "could not verify referenced event: "+err.Error()).WithCause(err)
	}
	if !exists {
		return &domain.ReferenceError{Field: "event_id", ID: b.EventID}
	}
	return nil
}

// NormalizeEmail trims and lowercases email and checks it against a basic pattern.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", domain.NewValidationError("email", "is required")
	}
	if !emailPattern.MatchString(e) {
		return "", domain.NewValidationError("email", "please provide a valid email address")
	}
	return e, nil
}

type bookingService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	validator      *BookingValidator
	tickets        domain.TicketIssuer
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBookingService creates a BookingService. emailService may be nil, in
// which case no confirmation is sent.
func NewBookingService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	tickets domain.TicketIssuer,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		validator:      NewBookingValidator(eventRepo),
		tickets:        tickets,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *bookingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

func (s *bookingService) CreateBooking(ctx context.Context, b *domain.Booking) (*domain.BookingConfirmation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	email, err := NormalizeEmail(b.Email)
	if err != nil {
		return nil, err
	}
	b.Email = email
	b.EventID = strings.TrimSpace(b.EventID)

	if err := s.validator.Validate(ctx, b, domain.ChangesOf(domain.FieldEventID, domain.FieldEmail)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	ticket, err := s.tickets.Issue(b)
	if err != nil {
		return nil, fmt.Errorf("issue ticket: %w", err)
	}

	s.sendConfirmation(ctx, b, ticket)
	return &domain.BookingConfirmation{Booking: b, Ticket: ticket}, nil
}

// sendConfirmation is best-effort: the booking is already stored.
func (s *bookingService) sendConfirmation(ctx context.Context, b *domain.Booking, ticket string) {
	if s.emailService == nil {
		return
	}
	event, err := s.eventRepo.GetByID(ctx, b.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "booking confirmation skipped", "booking_id", b.ID, "err", err)
		return
	}
	data := &domain.BookingConfirmationEmailData{
		Email:      b.Email,
		EventTitle: event.Title,
		EventSlug:  event.Slug,
		Venue:      event.Venue,
		Date:       event.Date,
		Time:       event.Time,
		Ticket:     ticket,
	}
	if err := s.emailService.SendBookingConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "booking confirmation failed", "booking_id", b.ID, "err", err)
	}
}

func (s *bookingService) ListBookings(ctx context.Context, eventSlug string) ([]*domain.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	bookings, err := s.bookingRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}

func (s *bookingService) VerifyTicket(ctx context.Context, token string) (*domain.TicketClaims, error) {
	claims, err := s.tickets.Verify(token)
	if err != nil {
		return nil, domain.NewValidationError("token", "invalid or expired ticket").WithCause(err)
	}
	return claims, nil
}
