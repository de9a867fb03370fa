package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"devevents/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests. It enforces slug
// uniqueness on write the way the real stores do.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int

	createErr error
	existsErr error
	// steal marks slugs that another writer grabs between probe and insert.
	steal map[string]bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1, steal: map[string]bool{}}
}

func (f *fakeEventRepo) slugOwner(slug string) (string, bool) {
	for id, e := range f.byID {
		if e.Slug == slug {
			return id, true
		}
	}
	return "", false
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.steal[e.Slug] {
		delete(f.steal, e.Slug)
		thief := *e
		thief.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
		f.byID[thief.ID] = &thief
	}
	if _, ok := f.slugOwner(e.Slug); ok {
		return domain.NewConflictError("slug", e.Slug, nil)
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	if owner, ok := f.slugOwner(e.Slug); ok && owner != e.ID {
		return domain.NewConflictError("slug", e.Slug, nil)
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.slugOwner(slug); ok {
		cp := *f.byID[id]
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.slugOwner(slug)
	return ok && owner != excludeID, nil
}

func (f *fakeEventRepo) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListByTags(ctx context.Context, tags []string, excludeID string, limit int) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, t := range tags {
		want[t] = true
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.ID == excludeID {
			continue
		}
		for _, t := range e.Tags {
			if want[t] {
				cp := *e
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeBookingRepo struct {
	created []*domain.Booking
	err     error
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if f.err != nil {
		return f.err
	}
	b.ID = fmt.Sprintf("bk-%d", len(f.created)+1)
	f.created = append(f.created, b)
	return nil
}

func (f *fakeBookingRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Booking
	for _, b := range f.created {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}
