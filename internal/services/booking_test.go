package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devevents/internal/domain"
)

type fakeTickets struct {
	issued int
	claims *domain.TicketClaims
	err    error
}

func (f *fakeTickets) Issue(b *domain.Booking) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued++
	return "ticket-" + b.ID, nil
}

func (f *fakeTickets) Verify(token string) (*domain.TicketClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeEmailService struct {
	sent []*domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingConfirmation(ctx context.Context, data *domain.BookingConfirmationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Ada.Lovelace@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ada.lovelace@example.com", got)

	for _, in := range []string{"", "   ", "ada", "ada@example", "ada@@example.com", "ada lovelace@example.com", "@example.com"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeEmail(in)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "email", verr.Fields[0].Field)
		})
	}
}

func TestBookingValidator(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	e := validEvent()
	require.NoError(t, repo.Create(ctx, e))
	v := NewBookingValidator(repo)

	t.Run("existing event", func(t *testing.T) {
		b := &domain.Booking{EventID: e.ID}
		require.NoError(t, v.Validate(ctx, b, domain.ChangesOf(domain.FieldEventID)))
	})

	t.Run("missing event", func(t *testing.T) {
		b := &domain.Booking{EventID: "ev-999"}
		err := v.Validate(ctx, b, domain.ChangesOf(domain.FieldEventID))
		var ref *domain.ReferenceError
		require.True(t, errors.As(err, &ref))
		assert.Equal(t, "ev-999", ref.ID)
	})

	t.Run("reference unchanged skips lookup", func(t *testing.T) {
		b := &domain.Booking{EventID: "ev-999"}
		require.NoError(t, v.Validate(ctx, b, domain.ChangesOf(domain.FieldEmail)))
	})

	t.Run("lookup failure is distinct from not found", func(t *testing.T) {
		failing := newFakeEventRepo()
		failing.existsErr = errors.New("server selection timeout")
		b := &domain.Booking{EventID: e.ID}
		err := NewBookingValidator(failing).Validate(ctx, b, domain.ChangesOf(domain.FieldEventID))

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields[0].Message, "could not verify")
		var ref *domain.ReferenceError
		assert.False(t, errors.As(err, &ref))
		assert.ErrorIs(t, err, failing.existsErr)
	})

	t.Run("empty reference", func(t *testing.T) {
		err := v.Validate(ctx, &domain.Booking{}, domain.ChangesOf(domain.FieldEventID))
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	events := newFakeEventRepo()
	e := validEvent()
	e.Slug = "cloud-next-2026"
	require.NoError(t, events.Create(ctx, e))

	t.Run("success sends confirmation", func(t *testing.T) {
		bookings := &fakeBookingRepo{}
		tickets := &fakeTickets{}
		mail := &fakeEmailService{}
		svc := NewBookingService(bookings, events, tickets, mail, testLogger(), time.Second)

		conf, err := svc.CreateBooking(ctx, &domain.Booking{EventID: e.ID, Email: " Grace@Example.com "})
		require.NoError(t, err)
		assert.Equal(t, "bk-1", conf.Booking.ID)
		assert.Equal(t, "grace@example.com", conf.Booking.Email)
		assert.Equal(t, "ticket-bk-1", conf.Ticket)
		assert.False(t, conf.Booking.CreatedAt.IsZero())
		require.Len(t, mail.sent, 1)
		assert.Equal(t, "cloud-next-2026", mail.sent[0].EventSlug)
		assert.Equal(t, "ticket-bk-1", mail.sent[0].Ticket)
	})

	t.Run("unknown event is not persisted", func(t *testing.T) {
		bookings := &fakeBookingRepo{}
		svc := NewBookingService(bookings, events, &fakeTickets{}, nil, testLogger(), time.Second)

		_, err := svc.CreateBooking(ctx, &domain.Booking{EventID: "ev-404", Email: "grace@example.com"})
		var ref *domain.ReferenceError
		require.True(t, errors.As(err, &ref))
		assert.Empty(t, bookings.created)
	})

	t.Run("invalid email is rejected before lookup", func(t *testing.T) {
		bookings := &fakeBookingRepo{}
		failing := newFakeEventRepo()
		failing.existsErr = errors.New("should not be called")
		svc := NewBookingService(bookings, failing, &fakeTickets{}, nil, testLogger(), time.Second)

		_, err := svc.CreateBooking(ctx, &domain.Booking{EventID: e.ID, Email: "not-an-email"})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "email", verr.Fields[0].Field)
		assert.Empty(t, bookings.created)
	})

	t.Run("email failure does not fail booking", func(t *testing.T) {
		bookings := &fakeBookingRepo{}
		mail := &fakeEmailService{err: errors.New("ses throttled")}
		svc := NewBookingService(bookings, events, &fakeTickets{}, mail, testLogger(), time.Second)

		conf, err := svc.CreateBooking(ctx, &domain.Booking{EventID: e.ID, Email: "grace@example.com"})
		require.NoError(t, err)
		assert.NotEmpty(t, conf.Ticket)
		assert.Len(t, bookings.created, 1)
	})

	t.Run("storage error", func(t *testing.T) {
		bookings := &fakeBookingRepo{err: errors.New("disk full")}
		svc := NewBookingService(bookings, events, &fakeTickets{}, nil, testLogger(), time.Second)

		_, err := svc.CreateBooking(ctx, &domain.Booking{EventID: e.ID, Email: "grace@example.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create booking")
	})
}

func TestBookingService_ListBookings(t *testing.T) {
	ctx := context.Background()
	events := newFakeEventRepo()
	e := validEvent()
	e.Slug = "cloud-next-2026"
	require.NoError(t, events.Create(ctx, e))
	bookings := &fakeBookingRepo{}
	svc := NewBookingService(bookings, events, &fakeTickets{}, nil, testLogger(), time.Second)

	list, err := svc.ListBookings(ctx, "cloud-next-2026")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = svc.CreateBooking(ctx, &domain.Booking{EventID: e.ID, Email: "a@example.com"})
	require.NoError(t, err)
	list, err = svc.ListBookings(ctx, "cloud-next-2026")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListBookings(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_VerifyTicket(t *testing.T) {
	ctx := context.Background()
	claims := &domain.TicketClaims{BookingID: "bk-1", EventID: "ev-1", Email: "a@example.com"}
	svc := NewBookingService(&fakeBookingRepo{}, newFakeEventRepo(), &fakeTickets{claims: claims}, nil, testLogger(), time.Second)

	got, err := svc.VerifyTicket(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	svc = NewBookingService(&fakeBookingRepo{}, newFakeEventRepo(), &fakeTickets{err: errors.New("expired")}, nil, testLogger(), time.Second)
	_, err = svc.VerifyTicket(ctx, "tok")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
