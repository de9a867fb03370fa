package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"devevents/internal/database"
	"devevents/internal/domain"
)

type bookingRepository struct {
	store
}

// NewBookingRepository returns a BookingRepository backed by the bookings table.
func NewBookingRepository(dbs database.Provider[*sql.DB]) domain.BookingRepository {
	return &bookingRepository{store{dbs: dbs}}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if _, err := uuid.Parse(b.EventID); err != nil {
		return domain.NewValidationError("event_id", "must be a valid event id")
	}
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO bookings (event_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	return mapWriteError(err)
}

func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return []*domain.Booking{}, nil
	}
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b := &domain.Booking{}
		if err := rows.Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}
