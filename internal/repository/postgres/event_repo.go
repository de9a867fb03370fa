package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"devevents/internal/database"
	"devevents/internal/domain"
)

const eventColumns = `id, title, slug, description, overview, image, venue, location, date, time,
		mode, audience, agenda, organizer, tags, created_at, updated_at`

type eventRepository struct {
	store
}

// NewEventRepository returns an EventRepository backed by the events table.
func NewEventRepository(dbs database.Provider[*sql.DB]) domain.EventRepository {
	return &eventRepository{store{dbs: dbs}}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location,
		&e.Date, &e.Time, &e.Mode, &e.Audience, pq.Array(&e.Agenda), &e.Organizer, pq.Array(&e.Tags),
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (title, slug, description, overview, image, venue, location, date, time,
			mode, audience, agenda, organizer, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location, e.Date, e.Time,
		e.Mode, e.Audience, pq.Array(e.Agenda), e.Organizer, pq.Array(e.Tags), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return mapWriteError(err)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return domain.ErrNotFound
	}
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE events
		SET title = $2, slug = $3, description = $4, overview = $5, image = $6, venue = $7,
			location = $8, date = $9, time = $10, mode = $11, audience = $12, agenda = $13,
			organizer = $14, tags = $15, updated_at = $16
		WHERE id = $1
	`
	res, err := db.ExecContext(ctx, query,
		e.ID, e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location, e.Date,
		e.Time, e.Mode, e.Audience, pq.Array(e.Agenda), e.Organizer, pq.Array(e.Tags), e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) getOne(ctx context.Context, where string, arg any) (*domain.Event, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE ` + where
	e, err := scanEvent(db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.getOne(ctx, "id = $1", id)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`
	var exists bool
	if err := db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Exists reports false for identifiers that are not valid UUIDs.
func (r *eventRepository) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	db, err := r.db(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
}

func (r *eventRepository) ListByTags(ctx context.Context, tags []string, excludeID string, limit int) ([]*domain.Event, error) {
	if len(tags) == 0 {
		return []*domain.Event{}, nil
	}
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE tags && $1 AND ($2 = '' OR id::text <> $2)
		ORDER BY created_at DESC
		LIMIT $3`
	return r.list(ctx, query, pq.Array(tags), excludeID, limit)
}
