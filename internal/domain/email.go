package domain

import (
	"context"
	"io"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BookingConfirmationEmailData holds data for the booking confirmation email.
type BookingConfirmationEmailData struct {
	Email      string
	EventTitle string
	EventSlug  string
	Venue      string
	Date       string
	Time       string
	Ticket     string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendBookingConfirmation(ctx context.Context, data *BookingConfirmationEmailData) error
}

// ImageStore persists uploaded event images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error)
}
