package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/flashdeck/internal/flashcard"
)

type Config struct {
	Addr                    string
	DBPath                  string
	LogLevel                string
	SessionMaxCards         int
	SessionTimeoutMinutes   int
	SessionRetentionMinutes int
	SweepIntervalMinutes    int
	ImportWorkerCount       int
	ImportQueueSize         int
	GraduatingIntervalDays  int
	LapseIntervalDays       int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                    envOr("ADDR", ":8080"),
		DBPath:                  envOr("DB_PATH", "file:flashdeck.db"),
		LogLevel:                envOr("LOG_LEVEL", "INFO"),
		SessionMaxCards:         envIntOr("SESSION_MAX_CARDS", 20),
		SessionTimeoutMinutes:   envIntOr("SESSION_TIMEOUT_MINUTES", 30),
		SessionRetentionMinutes: envIntOr("SESSION_RETENTION_MINUTES", 60),
		SweepIntervalMinutes:    envIntOr("SWEEP_INTERVAL_MINUTES", 5),
		ImportWorkerCount:       envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:         envIntOr("IMPORT_QUEUE_SIZE", 32),
		GraduatingIntervalDays:  envIntOr("GRADUATING_INTERVAL_DAYS", 1),
		LapseIntervalDays:       envIntOr("LAPSE_INTERVAL_DAYS", 1),
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		c.LogLevel = strings.ToUpper(c.LogLevel)
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}

	if c.SessionMaxCards < 1 {
		errs = append(errs, fmt.Errorf("SESSION_MAX_CARDS must be at least 1 (got %d)", c.SessionMaxCards))
	}
	if c.SessionTimeoutMinutes < 1 {
		errs = append(errs, fmt.Errorf("SESSION_TIMEOUT_MINUTES must be at least 1 (got %d)", c.SessionTimeoutMinutes))
	}
	if c.SessionRetentionMinutes < 0 {
		errs = append(errs, fmt.Errorf("SESSION_RETENTION_MINUTES cannot be negative (got %d)", c.SessionRetentionMinutes))
	}
	if c.SweepIntervalMinutes < 1 {
		errs = append(errs, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be at least 1 (got %d)", c.SweepIntervalMinutes))
	}
	if c.ImportWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("IMPORT_WORKER_COUNT must be at least 1 (got %d)", c.ImportWorkerCount))
	}
	if c.ImportQueueSize < 1 {
		errs = append(errs, fmt.Errorf("IMPORT_QUEUE_SIZE must be at least 1 (got %d)", c.ImportQueueSize))
	}
	if c.GraduatingIntervalDays < 0 {
		errs = append(errs, fmt.Errorf("GRADUATING_INTERVAL_DAYS cannot be negative (got %d)", c.GraduatingIntervalDays))
	}
	if c.LapseIntervalDays < 0 {
		errs = append(errs, fmt.Errorf("LAPSE_INTERVAL_DAYS cannot be negative (got %d)", c.LapseIntervalDays))
	}

	return errors.Join(errs...)
}

// Scheduler returns the scheduler configuration with the configured intervals.
func (c Config) Scheduler() flashcard.Config {
	cfg := flashcard.DefaultConfig()
	cfg.GraduatingInterval = c.GraduatingIntervalDays
	cfg.LapseInterval = c.LapseIntervalDays
	return cfg
}

func (c Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

func (c Config) SessionRetention() time.Duration {
	return time.Duration(c.SessionRetentionMinutes) * time.Minute
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
