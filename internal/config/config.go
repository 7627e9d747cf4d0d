package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/validator"
)

// Store back-ends selectable with STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreSynced = "synced"
)

type Config struct {
	DBPath          string
	RemoteDBPath    string
	StoreBackend    string
	LogLevel        string
	LogFormat       string
	SyncWorkerCount int
	SyncQueueSize   int
	UserID          string
	LevelBandsFile  string

	SRSInitialEase   float64
	SRSMinEase       float64
	SRSMaxEase       float64
	SRSMaxInterval   int
	SRSLearningSteps string
	SRSDecayRate     float64
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	d := models.DefaultSRSConfig()
	return Config{
		DBPath:          envOr("DB_PATH", "file:drillflash.db"),
		RemoteDBPath:    envOr("REMOTE_DB_PATH", "file:drillflash-remote.db"),
		StoreBackend:    envOr("STORE_BACKEND", StoreSQLite),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		LogFormat:       envOr("LOG_FORMAT", "console"),
		SyncWorkerCount: envIntOr("SYNC_WORKER_COUNT", 2),
		SyncQueueSize:   envIntOr("SYNC_QUEUE_SIZE", 64),
		UserID:          envOr("USER_ID", "local"),
		LevelBandsFile:  os.Getenv("LEVEL_BANDS_FILE"),

		SRSInitialEase:   envFloatOr("SRS_INITIAL_EASE", d.InitialEaseFactor),
		SRSMinEase:       envFloatOr("SRS_MIN_EASE", d.MinEaseFactor),
		SRSMaxEase:       envFloatOr("SRS_MAX_EASE", d.MaxEaseFactor),
		SRSMaxInterval:   envIntOr("SRS_MAX_INTERVAL", d.MaxInterval),
		SRSLearningSteps: envOr("SRS_LEARNING_STEPS", FormatLearningSteps(d.LearningSteps)),
		SRSDecayRate:     envFloatOr("SRS_DECAY_RATE", d.MemoryDecayRate),
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []string

	switch c.StoreBackend {
	case StoreMemory:
	case StoreSQLite:
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH cannot be empty")
		}
	case StoreSynced:
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH cannot be empty")
		}
		if c.RemoteDBPath == "" {
			errs = append(errs, "REMOTE_DB_PATH cannot be empty")
		}
		if c.RemoteDBPath != "" && c.RemoteDBPath == c.DBPath {
			errs = append(errs, "REMOTE_DB_PATH must differ from DB_PATH")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND must be one of %s, %s, %s (got %q)", StoreMemory, StoreSQLite, StoreSynced, c.StoreBackend))
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR (got %q)", c.LogLevel))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be console or json (got %q)", c.LogFormat))
	}

	if c.SyncWorkerCount < 1 {
		errs = append(errs, fmt.Sprintf("SYNC_WORKER_COUNT must be at least 1 (got %d)", c.SyncWorkerCount))
	}
	if c.SyncQueueSize < 1 {
		errs = append(errs, fmt.Sprintf("SYNC_QUEUE_SIZE must be at least 1 (got %d)", c.SyncQueueSize))
	}
	if c.UserID == "" {
		errs = append(errs, "USER_ID cannot be empty")
	}

	if _, err := c.SRSDefaults(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SRSDefaults builds the default scheduling parameters with the SRS_*
// variables applied.
func (c Config) SRSDefaults() (models.SRSConfig, error) {
	steps, err := ParseLearningSteps(c.SRSLearningSteps)
	if err != nil {
		return models.SRSConfig{}, fmt.Errorf("SRS_LEARNING_STEPS: %w", err)
	}
	cfg := models.DefaultSRSConfig().Apply(models.SRSConfigOverride{
		InitialEaseFactor: models.Float(c.SRSInitialEase),
		MinEaseFactor:     models.Float(c.SRSMinEase),
		MaxEaseFactor:     models.Float(c.SRSMaxEase),
		MaxInterval:       models.Int(c.SRSMaxInterval),
		LearningSteps:     steps,
		MemoryDecayRate:   models.Float(c.SRSDecayRate),
	})
	if err := validator.Struct(cfg); err != nil {
		return models.SRSConfig{}, fmt.Errorf("SRS defaults: %w", err)
	}
	return cfg, nil
}

// ParseLearningSteps parses a comma separated list of durations such as
// "1m,10m". Steps must be positive and strictly increasing.
func ParseLearningSteps(s string) ([]time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []time.Duration{}, nil
	}
	parts := strings.Split(s, ",")
	steps := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid step %q: %w", p, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("step %q must be positive", p)
		}
		if len(steps) > 0 && d <= steps[len(steps)-1] {
			return nil, fmt.Errorf("step %q must be longer than the previous one", p)
		}
		steps = append(steps, d)
	}
	return steps, nil
}

// FormatLearningSteps is the inverse of ParseLearningSteps.
func FormatLearningSteps(steps []time.Duration) string {
	parts := make([]string, len(steps))
	for i, d := range steps {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
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
		logger.Warn("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logger.Warn("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}
