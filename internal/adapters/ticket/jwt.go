// Package ticket signs booking tickets as HS256 JWTs.
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"devevents/internal/domain"
)

const issuer = "devevents"

// DefaultTTL applies when no ticket lifetime is configured.
const DefaultTTL = 30 * 24 * time.Hour

type ticketClaims struct {
	jwt.RegisteredClaims
	EventID string `json:"event_id"`
	Email   string `json:"email"`
}

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer returns a TicketIssuer that signs tickets with HS256 using
// secret. Tickets expire ttl after issue.
func NewJWTIssuer(secret string, ttl time.Duration) (domain.TicketIssuer, error) {
	if secret == "" {
		return nil, errors.New("ticket secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &jwtIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *jwtIssuer) Issue(b *domain.Booking) (string, error) {
	now := i.now()
	claims := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   b.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		EventID: b.EventID,
		Email:   b.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign ticket: %w", err)
	}
	return tokenString, nil
}

func (i *jwtIssuer) Verify(tokenString string) (*domain.TicketClaims, error) {
	claims := &ticketClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket: %w", err)
	}
	out := &domain.TicketClaims{
		BookingID: claims.Subject,
		EventID:   claims.EventID,
		Email:     claims.Email,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
