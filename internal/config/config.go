package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// DatabasePath is the SQLite database file path.
	DatabasePath string

	// MatchThreshold is the minimum automatic-mode score at which a match
	// record is created.
	MatchThreshold float64

	// SuggestMinScore is the minimum publishable suggestion-mode score.
	SuggestMinScore float64

	// SuggestWindowDays is the default lookback window for suggestion-mode
	// candidate discovery.
	SuggestWindowDays int

	// MatchExpiryDays is how long a match may stay ACTIVE before the expiry
	// sweep transitions it to EXPIRED.
	MatchExpiryDays int

	// WebhookURL, when set, enables forwarding match events to an external
	// notification gateway.
	WebhookURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              8080,
		DatabasePath:      "lostfound.db",
		MatchThreshold:    0.7,
		SuggestMinScore:   0.30,
		SuggestWindowDays: 30,
		MatchExpiryDays:   30,
		WebhookURL:        os.Getenv("LOSTFOUND_WEBHOOK_URL"),
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = port
	}

	if db := os.Getenv("LOSTFOUND_DB"); db != "" {
		cfg.DatabasePath = db
	}

	if v := os.Getenv("LOSTFOUND_MATCH_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LOSTFOUND_MATCH_THRESHOLD: %w", err)
		}
		cfg.MatchThreshold = threshold
	}

	if v := os.Getenv("LOSTFOUND_SUGGEST_MIN_SCORE"); v != "" {
		floor, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LOSTFOUND_SUGGEST_MIN_SCORE: %w", err)
		}
		cfg.SuggestMinScore = floor
	}

	if v := os.Getenv("LOSTFOUND_SUGGEST_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOSTFOUND_SUGGEST_WINDOW_DAYS: %w", err)
		}
		cfg.SuggestWindowDays = days
	}

	if v := os.Getenv("LOSTFOUND_MATCH_EXPIRY_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOSTFOUND_MATCH_EXPIRY_DAYS: %w", err)
		}
		cfg.MatchExpiryDays = days
	}

	return cfg, nil
}
