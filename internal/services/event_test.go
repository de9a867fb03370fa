package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devevents/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, testLogger(), time.Second)

	first := validEvent()
	require.NoError(t, svc.CreateEvent(ctx, first, domain.AllEventFields))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "cloud-next-2026", first.Slug)
	assert.Equal(t, "2026-03-10", first.Date)
	assert.Equal(t, "09:05", first.Time)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second := validEvent()
	require.NoError(t, svc.CreateEvent(ctx, second, domain.AllEventFields))
	assert.Equal(t, "cloud-next-2026-1", second.Slug)

	third := validEvent()
	require.NoError(t, svc.CreateEvent(ctx, third, domain.AllEventFields))
	assert.Equal(t, "cloud-next-2026-2", third.Slug)
}

func TestEventService_CreateEvent_PunctuationTitle(t *testing.T) {
	ctx := context.Background()
	svc := NewEventService(newFakeEventRepo(), testLogger(), time.Second)

	for i, want := range []string{"event", "event-1"} {
		e := validEvent()
		e.Title = "?!?"
		require.NoError(t, svc.CreateEvent(ctx, e, domain.AllEventFields), "event %d", i)
		assert.Equal(t, want, e.Slug)
	}
}

func TestEventService_CreateEvent_ValidationFailureNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, testLogger(), time.Second)

	e := validEvent()
	e.Time = "24:00"
	err := svc.CreateEvent(ctx, e, domain.AllEventFields)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "time", verr.Fields[0].Field)
	events, _ := repo.List(ctx)
	assert.Empty(t, events)
}

func TestEventService_CreateEvent_RetriesSlugConflictAtInsert(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.steal["cloud-next-2026"] = true
	svc := NewEventService(repo, testLogger(), time.Second)

	e := validEvent()
	require.NoError(t, svc.CreateEvent(ctx, e, domain.AllEventFields))
	assert.Equal(t, "cloud-next-2026-1", e.Slug)
	assert.Equal(t, "09:05", e.Time)
}

func TestEventService_CreateEvent_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.steal["cloud-next-2026"] = true
	repo.steal["cloud-next-2026-1"] = true
	repo.steal["cloud-next-2026-2"] = true
	repo.steal["cloud-next-2026-3"] = true
	repo.steal["cloud-next-2026-4"] = true
	svc := NewEventService(repo, testLogger(), time.Second)

	err := svc.CreateEvent(ctx, validEvent(), domain.AllEventFields)
	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "slug", conflict.Field)
	assert.Equal(t, "cloud-next-2026-4", conflict.Value)
}

func TestEventService_CreateEvent_OtherConflictSurfaced(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.createErr = domain.NewConflictError("title", "Cloud Next 2026!", nil)
	svc := NewEventService(repo, testLogger(), time.Second)

	err := svc.CreateEvent(ctx, validEvent(), domain.AllEventFields)
	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "title", conflict.Field)
}

func TestEventService_CreateEvent_StorageError(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.createErr = errors.New("write concern timeout")
	svc := NewEventService(repo, testLogger(), time.Second)

	err := svc.CreateEvent(ctx, validEvent(), domain.AllEventFields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store event")
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, testLogger(), time.Second)

	orig := validEvent()
	require.NoError(t, svc.CreateEvent(ctx, orig, domain.AllEventFields))
	other := validEvent()
	other.Title = "KubeCon EU"
	require.NoError(t, svc.CreateEvent(ctx, other, domain.AllEventFields))

	t.Run("same title keeps slug", func(t *testing.T) {
		title := "Cloud Next 2026"
		got, err := svc.UpdateEvent(ctx, "cloud-next-2026", &domain.EventPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "cloud-next-2026", got.Slug)
	})

	t.Run("time only", func(t *testing.T) {
		tm := "7:45"
		got, err := svc.UpdateEvent(ctx, "cloud-next-2026", &domain.EventPatch{Time: &tm})
		require.NoError(t, err)
		assert.Equal(t, "07:45", got.Time)
		assert.Equal(t, "cloud-next-2026", got.Slug)
	})

	t.Run("title colliding with another event", func(t *testing.T) {
		title := "KubeCon EU"
		got, err := svc.UpdateEvent(ctx, "cloud-next-2026", &domain.EventPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "kubecon-eu-1", got.Slug)
		assert.Equal(t, orig.ID, got.ID)
	})

	t.Run("invalid date", func(t *testing.T) {
		d := "2023-04-31"
		_, err := svc.UpdateEvent(ctx, "kubecon-eu", &domain.EventPatch{Date: &d})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		stored, _ := repo.GetBySlug(ctx, "kubecon-eu")
		assert.Equal(t, "2026-03-10", stored.Date)
	})

	t.Run("empty patch", func(t *testing.T) {
		got, err := svc.UpdateEvent(ctx, "kubecon-eu", &domain.EventPatch{})
		require.NoError(t, err)
		assert.Equal(t, "kubecon-eu", got.Slug)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.UpdateEvent(ctx, "missing", &domain.EventPatch{})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_GetAndList(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, testLogger(), time.Second)

	list, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	a := validEvent()
	require.NoError(t, svc.CreateEvent(ctx, a, domain.AllEventFields))
	b := validEvent()
	b.Title = "AI Summit"
	b.Tags = []string{"ai"}
	require.NoError(t, svc.CreateEvent(ctx, b, domain.AllEventFields))
	c := validEvent()
	c.Title = "Frontend Days"
	c.Tags = []string{"css"}
	require.NoError(t, svc.CreateEvent(ctx, c, domain.AllEventFields))

	got, err := svc.GetEvent(ctx, "ai-summit")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.GetEvent(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, err = svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	similar, err := svc.ListSimilarEvents(ctx, "cloud-next-2026")
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "ai-summit", similar[0].Slug)

	similar, err = svc.ListSimilarEvents(ctx, "frontend-days")
	require.NoError(t, err)
	assert.NotNil(t, similar)
	assert.Empty(t, similar)

	_, err = svc.ListSimilarEvents(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
