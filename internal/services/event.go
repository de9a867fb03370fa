package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devevents/internal/domain"
)

// MaxInsertAttempts bounds how often a slug collision reported by storage
// triggers re-derivation of the slug before the conflict is surfaced.
const MaxInsertAttempts = 5

// similarEventsLimit is the number of related events returned for a slug.
const similarEventsLimit = 3

type eventService struct {
	eventRepo      domain.EventRepository
	normalizer     *EventNormalizer
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService returns an EventService backed by eventRepo.
func NewEventService(eventRepo domain.EventRepository, logger *slog.Logger, timeout time.Duration) domain.EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		eventRepo:      eventRepo,
		normalizer:     NewEventNormalizer(eventRepo),
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

// CreateEvent normalizes and stores a new event. changes lists the fields
// the caller supplied; title, date and time steps only run when marked.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, changes domain.Changes) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now().UTC()
	event.ID = ""
	event.CreatedAt = now
	event.UpdatedAt = now

	return s.persist(ctx, event, changes, s.eventRepo.Create)
}

// UpdateEvent applies patch to the event identified by slug. Only the
// supplied fields are re-normalized; a new title yields a new slug.
func (s *eventService) UpdateEvent(ctx context.Context, slug string, patch *domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	changes := patch.Apply(event)
	if changes.IsEmpty() {
		return event, nil
	}
	event.UpdatedAt = s.now().UTC()

	if err := s.persist(ctx, event, changes, s.eventRepo.Update); err != nil {
		return nil, err
	}
	return event, nil
}

// persist normalizes event and writes it with store. A slug conflict at
// write time means another writer took the slug after the probe: the slug
// is re-derived from the title and the write retried.
func (s *eventService) persist(ctx context.Context, event *domain.Event, changes domain.Changes, store func(context.Context, *domain.Event) error) error {
	for attempt := 1; ; attempt++ {
		if err := s.normalizer.Normalize(ctx, event, changes); err != nil {
			return err
		}
		err := store(ctx, event)
		if err == nil {
			return nil
		}
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("store event: %w", err)
		}
		if conflict.Field != "slug" || attempt >= MaxInsertAttempts {
			return err
		}
		s.logger.WarnContext(ctx, "slug taken at write time, retrying",
			"slug", event.Slug, "attempt", attempt)
		event.Slug = ""
		changes = domain.ChangesOf(domain.FieldSlug)
	}
}

func (s *eventService) GetEvent(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// ListSimilarEvents returns events sharing at least one tag with the event
// identified by slug.
func (s *eventService) ListSimilarEvents(ctx context.Context, slug string) ([]*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	similar, err := s.eventRepo.ListByTags(ctx, event.Tags, event.ID, similarEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("list similar events: %w", err)
	}
	if similar == nil {
		similar = []*domain.Event{}
	}
	return similar, nil
}
