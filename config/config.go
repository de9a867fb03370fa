package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string

	// DatabaseURL is the connection URI for the event store. It is not
	// defaulted: an empty value makes the first connection attempt fail with
	// a configuration error.
	DatabaseURL            string
	DatabaseName           string
	ServerSelectionTimeout time.Duration
	RequestTimeout         time.Duration

	CORSAllowedOrigins []string

	Email  EmailConfig
	AWS    AWSConfig
	Ticket TicketConfig
}

// EmailConfig configures booking confirmation mail delivery.
type EmailConfig struct {
	Provider           string
	FromAddress        string
	FromName           string
	InsecureSkipVerify bool
}

// AWSConfig holds credentials shared by the SES mailer and the S3 image store.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ImageBucket     string
}

// TicketConfig configures signed booking tickets.
type TicketConfig struct {
	Secret string
	TTL    time.Duration
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production the .env file usually does not exist and the process
	// environment is authoritative.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:            env,
		Port:                   os.Getenv("PORT"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DatabaseName:           os.Getenv("DATABASE_NAME"),
		ServerSelectionTimeout: durationEnv("DB_SERVER_SELECTION_TIMEOUT", 5*time.Second),
		RequestTimeout:         durationEnv("REQUEST_TIMEOUT", 10*time.Second),
		CORSAllowedOrigins:     splitEnv("CORS_ALLOWED_ORIGINS"),
		Email: EmailConfig{
			Provider:           os.Getenv("EMAIL_PROVIDER"),
			FromAddress:        os.Getenv("EMAIL_FROM_ADDRESS"),
			FromName:           os.Getenv("EMAIL_FROM_NAME"),
			InsecureSkipVerify: boolEnv("SES_INSECURE_SKIP_VERIFY"),
		},
		AWS: AWSConfig{
			Region:          os.Getenv("AWS_REGION"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			ImageBucket:     os.Getenv("S3_IMAGE_BUCKET"),
		},
		Ticket: TicketConfig{
			Secret: os.Getenv("TICKET_SECRET"),
			TTL:    durationEnv("TICKET_TTL", 30*24*time.Hour),
		},
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("MONGODB_URI")
	}

	// Set defaults
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "devevents"
	}
	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "noop"
	}
	if cfg.Ticket.Secret == "" && env != "production" {
		cfg.Ticket.Secret = "dev-ticket-secret"
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, s, def)
		return def
	}
	return d
}

func boolEnv(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func splitEnv(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
