package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devevents/internal/domain"
)

func validEvent() *domain.Event {
	return &domain.Event{
		Title:       "Cloud Next 2026!",
		Description: "Google Cloud's flagship conference.",
		Overview:    "Three days of talks.",
		Image:       "https://img.example.com/next.png",
		Venue:       "Moscone Center",
		Location:    "San Francisco, CA",
		Date:        "2026-03-10",
		Time:        "9:5",
		Mode:        domain.ModeHybrid,
		Audience:    "Developers",
		Agenda:      []string{"Keynote", "Breakouts"},
		Organizer:   "Google",
		Tags:        []string{"cloud", "ai"},
	}
}

func TestNormalizeDate(t *testing.T) {
	valid := []string{"2026-03-10", "2024-02-29", "2023-12-31", "2000-01-01"}
	for _, d := range valid {
		t.Run("valid "+d, func(t *testing.T) {
			got, err := NormalizeDate(d)
			require.NoError(t, err)
			assert.Equal(t, d, got)
			again, err := NormalizeDate(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalization is idempotent")
		})
	}

	invalid := []string{"2023-02-30", "2023-04-31", "2023-02-29", "2023-13-01", "2023-00-10", "2023-1-5", "10/03/2026", "", "2026-03-10T00:00:00Z"}
	for _, d := range invalid {
		t.Run("invalid "+d, func(t *testing.T) {
			_, err := NormalizeDate(d)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "date", verr.Fields[0].Field)
			assert.Contains(t, verr.Fields[0].Message, "YYYY-MM-DD")
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9:05", "09:05"},
		{"9:5", "09:05"},
		{"09:05", "09:05"},
		{"0:00", "00:00"},
		{"23:59", "23:59"},
		{"18:30", "18:30"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"24:00", "12:60", "7", "7pm", "", "25:10", "12:345"} {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := NormalizeTime(in)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "time", verr.Fields[0].Field)
			assert.Contains(t, verr.Fields[0].Message, "HH:MM")
		})
	}
}

func TestEventNormalizer_Normalize(t *testing.T) {
	ctx := context.Background()

	t.Run("full candidate", func(t *testing.T) {
		n := NewEventNormalizer(&setSlugChecker{taken: map[string]string{}})
		e := validEvent()
		require.NoError(t, n.Normalize(ctx, e, domain.AllEventFields))
		assert.Equal(t, "cloud-next-2026", e.Slug)
		assert.Equal(t, "2026-03-10", e.Date)
		assert.Equal(t, "09:05", e.Time)
	})

	t.Run("untouched fields are not re-normalized", func(t *testing.T) {
		checker := &setSlugChecker{taken: map[string]string{}}
		n := NewEventNormalizer(checker)
		e := validEvent()
		e.Slug = "kept-slug"
		e.Time = "9:5"
		require.NoError(t, n.Normalize(ctx, e, domain.ChangesOf(domain.FieldVenue)))
		assert.Equal(t, "kept-slug", e.Slug)
		assert.Equal(t, "9:5", e.Time)
		assert.Equal(t, 0, checker.calls)
	})

	t.Run("missing slug is derived even when title unchanged", func(t *testing.T) {
		n := NewEventNormalizer(&setSlugChecker{taken: map[string]string{}})
		e := validEvent()
		e.Time = "09:05"
		require.NoError(t, n.Normalize(ctx, e, domain.Changes(0)))
		assert.Equal(t, "cloud-next-2026", e.Slug)
	})

	t.Run("bad date aborts before time step", func(t *testing.T) {
		n := NewEventNormalizer(&setSlugChecker{taken: map[string]string{}})
		e := validEvent()
		e.Date = "2023-02-30"
		err := n.Normalize(ctx, e, domain.AllEventFields)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "date", verr.Fields[0].Field)
		assert.Equal(t, "9:5", e.Time)
	})

	t.Run("required fields reported together", func(t *testing.T) {
		n := NewEventNormalizer(&setSlugChecker{taken: map[string]string{}})
		e := validEvent()
		e.Venue = ""
		e.Agenda = []string{}
		e.Tags = nil
		e.Mode = "in-person"
		err := n.Normalize(ctx, e, domain.AllEventFields)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		fields := verr.Map()
		assert.Equal(t, "is required", fields["venue"])
		assert.Contains(t, fields, "agenda")
		assert.Contains(t, fields, "tags")
		assert.Contains(t, fields["mode"], "online offline hybrid")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("slug lookup failure is not a validation error", func(t *testing.T) {
		n := NewEventNormalizer(&setSlugChecker{err: errors.New("storage down")})
		err := n.Normalize(ctx, validEvent(), domain.AllEventFields)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	})
}
