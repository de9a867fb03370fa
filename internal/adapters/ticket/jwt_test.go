package ticket

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devevents/internal/domain"
)

func testBooking() *domain.Booking {
	return &domain.Booking{ID: "booking-1", EventID: "event-1", Email: "ada@example.com"}
}

func TestJWTIssuer_IssueAndVerify(t *testing.T) {
	issuer, err := NewJWTIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(testBooking())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "booking-1", claims.BookingID)
	assert.Equal(t, "event-1", claims.EventID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTIssuer_Claims(t *testing.T) {
	secret := "test-secret"
	issuer, err := NewJWTIssuer(secret, time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(testBooking())
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &ticketClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*ticketClaims)
	require.True(t, ok)
	assert.Equal(t, "devevents", claims.Issuer)
	assert.Equal(t, "booking-1", claims.Subject)
}

func TestJWTIssuer_VerifyRejects(t *testing.T) {
	issuer, err := NewJWTIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewJWTIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	forged, err := other.Issue(testBooking())
	require.NoError(t, err)
	_, err = issuer.Verify(forged)
	assert.Error(t, err)

	expiring := issuer.(*jwtIssuer)
	expiring.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expiring.Issue(testBooking())
	require.NoError(t, err)
	expiring.now = time.Now
	_, err = issuer.Verify(stale)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = issuer.Verify("not-a-token")
	assert.Error(t, err)
}

func TestNewJWTIssuer_RequiresSecret(t *testing.T) {
	_, err := NewJWTIssuer("", time.Hour)
	assert.Error(t, err)
}
