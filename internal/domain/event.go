package domain

import (
	"context"
	"time"
)

// Event modes accepted by the mode field.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModeHybrid  = "hybrid"
)

// Event represents a single listed happening.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=100"`
	Slug        string    `json:"slug" validate:"required"`
	Description string    `json:"description" validate:"required,max=1000"`
	Overview    string    `json:"overview" validate:"required,max=500"`
	Image       string    `json:"image" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Date        string    `json:"date" validate:"required"`
	Time        string    `json:"time" validate:"required"`
	Mode        string    `json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string    `json:"audience" validate:"required"`
	Agenda      []string  `json:"agenda" validate:"required,min=1,dive,required"`
	Organizer   string    `json:"organizer" validate:"required"`
	Tags        []string  `json:"tags" validate:"required,min=1,dive,required"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EventPatch carries the fields of a partial event update. Nil means "not supplied".
type EventPatch struct {
	Title       *string
	Description *string
	Overview    *string
	Image       *string
	Venue       *string
	Location    *string
	Date        *string
	Time        *string
	Mode        *string
	Audience    *string
	Agenda      []string
	Organizer   *string
	Tags        []string
}

// Apply copies supplied fields onto e and reports which ones were set.
func (p *EventPatch) Apply(e *Event) Changes {
	var c Changes
	set := func(dst *string, src *string, field Field) {
		if src != nil {
			*dst = *src
			c = c.With(field)
		}
	}
	set(&e.Title, p.Title, FieldTitle)
	set(&e.Description, p.Description, FieldDescription)
	set(&e.Overview, p.Overview, FieldOverview)
	set(&e.Image, p.Image, FieldImage)
	set(&e.Venue, p.Venue, FieldVenue)
	set(&e.Location, p.Location, FieldLocation)
	set(&e.Date, p.Date, FieldDate)
	set(&e.Time, p.Time, FieldTime)
	set(&e.Mode, p.Mode, FieldMode)
	set(&e.Audience, p.Audience, FieldAudience)
	set(&e.Organizer, p.Organizer, FieldOrganizer)
	if p.Agenda != nil {
		e.Agenda = p.Agenda
		c = c.With(FieldAgenda)
	}
	if p.Tags != nil {
		e.Tags = p.Tags
		c = c.With(FieldTags)
	}
	return c
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	// Create inserts e and sets its ID. A duplicate slug is reported as *ConflictError.
	Create(ctx context.Context, e *Event) error
	// Update replaces the stored document with the same ID.
	Update(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// SlugExists reports whether an event other than excludeID uses slug.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	// Exists reports whether an event with the given ID exists.
	Exists(ctx context.Context, id string) (bool, error)
	// List returns all events, newest first.
	List(ctx context.Context) ([]*Event, error)
	// ListByTags returns up to limit events sharing at least one tag, excluding excludeID.
	ListByTags(ctx context.Context, tags []string, excludeID string, limit int) ([]*Event, error)
}

// EventService defines the business logic for listing and ingesting events.
type EventService interface {
	CreateEvent(ctx context.Context, e *Event, changes Changes) error
	UpdateEvent(ctx context.Context, slug string, patch *EventPatch) (*Event, error)
	GetEvent(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListSimilarEvents(ctx context.Context, slug string) ([]*Event, error)
}
