package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DATABASE_NAME", "")
	t.Setenv("DB_SERVER_SELECTION_TIMEOUT", "")
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("TICKET_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.DatabaseURL, "no default URI, absence is reported on first connect")
	assert.Equal(t, "devevents", cfg.DatabaseName)
	assert.Equal(t, 5*time.Second, cfg.ServerSelectionTimeout)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, "", cfg.Ticket.Secret)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DB_SERVER_SELECTION_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SES_INSECURE_SKIP_VERIFY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Second, cfg.ServerSelectionTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.Email.InsecureSkipVerify)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
