package config

import (
	"log"
	"os"
	"strconv"
)

// Settings holds runtime configuration, sourced from environment variables
// with sensible defaults for local development.
type Settings struct {
	ListenAddr      string
	DatabasePath    string
	TMDBAPIKey      string
	SessionKey      string
	LogFile         string
	CalendarWorkers int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads settings from the environment.
func Load() Settings {
	return Settings{
		ListenAddr:      envOr("CINETRACK_ADDR", ":8080"),
		DatabasePath:    envOr("CINETRACK_DB_PATH", "data/cinetrack.db"),
		TMDBAPIKey:      os.Getenv("TMDB_API_KEY"),
		SessionKey:      os.Getenv("CINETRACK_SESSION_KEY"),
		LogFile:         os.Getenv("CINETRACK_LOG_FILE"),
		CalendarWorkers: envInt("CINETRACK_CALENDAR_WORKERS", 4),

		SMTPHost:     os.Getenv("CINETRACK_SMTP_HOST"),
		SMTPPort:     envInt("CINETRACK_SMTP_PORT", 587),
		SMTPUsername: os.Getenv("CINETRACK_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("CINETRACK_SMTP_PASSWORD"),
		SMTPFrom:     envOr("CINETRACK_SMTP_FROM", "noreply@localhost"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
