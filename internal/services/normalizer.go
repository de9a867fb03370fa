package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"devevents/internal/domain"
)

var (
	datePattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	timePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]?\d)$`)
)

// EventNormalizer turns an event candidate into its canonical, persistable
// form. It runs before the candidate is stored and mutates it in place.
type EventNormalizer struct {
	slugs    SlugChecker
	validate *validator.Validate
}

// NewEventNormalizer returns a normalizer probing slugs against checker.
func NewEventNormalizer(checker SlugChecker) *EventNormalizer {
	return &EventNormalizer{
		slugs:    checker,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Normalize runs, in order: slug assignment, date normalization, time
// normalization and required-field validation. Each step only runs when its
// field is marked in changes (slug also when it is empty). The first failing
// step aborts with a *domain.ValidationError; e is left partially updated
// and must not be stored.
func (n *EventNormalizer) Normalize(ctx context.Context, e *domain.Event, changes domain.Changes) error {
	if changes.Has(domain.FieldTitle) || e.Slug == "" {
		slug, err := UniqueSlug(ctx, n.slugs, BaseSlug(e.Title), e.ID)
		if err != nil {
			return err
		}
		e.Slug = slug
	}
	if changes.Has(domain.FieldDate) {
		date, err := NormalizeDate(e.Date)
		if err != nil {
			return err
		}
		e.Date = date
	}
	if changes.Has(domain.FieldTime) {
		t, err := NormalizeTime(e.Time)
		if err != nil {
			return err
		}
		e.Time = t
	}
	return n.checkRequired(e)
}

// NormalizeDate validates a YYYY-MM-DD calendar date and returns it
// unchanged. Impossible days such as 2023-02-30 are rejected.
func NormalizeDate(s string) (string, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return "", domain.NewValidationError("date", "invalid date format, expected YYYY-MM-DD")
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return "", domain.NewValidationError("date", fmt.Sprintf("%s is not a real calendar date, expected YYYY-MM-DD", s))
	}
	return m[0], nil
}

// NormalizeTime validates a 24-hour H:MM or HH:MM time and returns it as
// HH:MM. A single-digit minute (9:5) is accepted and padded as well.
func NormalizeTime(s string) (string, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return "", domain.NewValidationError("time", "invalid time format, expected HH:MM (24-hour)")
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func (n *EventNormalizer) checkRequired(e *domain.Event) error {
	err := n.validate.Struct(e)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate event: %w", err)
	}
	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(jsonFieldName(fe.StructField()), describeRule(fe))
	}
	return verr
}

var eventJSONNames = map[string]string{
	"CreatedAt": "createdAt",
	"UpdatedAt": "updatedAt",
}

func jsonFieldName(structField string) string {
	if name, ok := eventJSONNames[structField]; ok {
		return name
	}
	if structField == "" {
		return structField
	}
	return string(structField[0]|0x20) + structField[1:]
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
