// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxSeats caps the seat count a driver may offer on one trip.
	// Defaults to 10.
	MaxSeats int

	// DispatchTimeout bounds each individual notification attempt
	// (text generation plus mail delivery). Defaults to 5s.
	DispatchTimeout time.Duration

	// MailFrom is the sender address handed to the mail provider and
	// MailSMTPAddr the host:port of the SMTP relay. Both empty means "mail
	// not configured": the server falls back to a null-object mailer that
	// logs instead of delivering.
	MailFrom     string
	MailSMTPAddr string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first one that fails to parse.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailSMTPAddr: os.Getenv("MAIL_SMTP_ADDR"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	maxSeats, err := strconv.Atoi(getEnv("MAX_SEATS", "10"))
	if err != nil || maxSeats < 1 {
		return Config{}, fmt.Errorf("MAX_SEATS must be a positive integer, got %q", os.Getenv("MAX_SEATS"))
	}
	cfg.MaxSeats = maxSeats

	timeout, err := time.ParseDuration(getEnv("DISPATCH_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("DISPATCH_TIMEOUT must be a positive duration, got %q", os.Getenv("DISPATCH_TIMEOUT"))
	}
	cfg.DispatchTimeout = timeout

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
