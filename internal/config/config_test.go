package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/drillflash/internal/config"
	"github.com/vytor/drillflash/internal/models"
)

func validConfig() config.Config {
	return config.Config{
		DBPath:           "test.db",
		RemoteDBPath:     "remote.db",
		StoreBackend:     config.StoreSQLite,
		LogLevel:         "INFO",
		LogFormat:        "console",
		SyncWorkerCount:  2,
		SyncQueueSize:    64,
		UserID:           "local",
		SRSInitialEase:   2.5,
		SRSMinEase:       1.3,
		SRSMaxEase:       3.0,
		SRSMaxInterval:   365,
		SRSLearningSteps: "1m,10m",
		SRSDecayRate:     0.1,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	for _, backend := range []string{config.StoreMemory, config.StoreSQLite, config.StoreSynced} {
		cfg := validConfig()
		cfg.StoreBackend = backend
		assert.NoError(t, cfg.Validate(), backend)
	}
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")

	cfg.StoreBackend = config.StoreMemory
	assert.NoError(t, cfg.Validate(), "memory backend needs no path")
}

func TestValidate_SyncedBackend(t *testing.T) {
	tests := []struct {
		name          string
		remote        string
		expectedError string
	}{
		{name: "missing remote", remote: "", expectedError: "REMOTE_DB_PATH cannot be empty"},
		{name: "remote equals local", remote: "test.db", expectedError: "REMOTE_DB_PATH must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.StoreBackend = config.StoreSynced
			cfg.RemoteDBPath = tt.remote

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_InvalidLogSettings(t *testing.T) {
	tests := []struct {
		name          string
		level, format string
		expectedError string
	}{
		{name: "unknown level", level: "TRACE", format: "console", expectedError: "LOG_LEVEL"},
		{name: "empty level", level: "", format: "console", expectedError: "LOG_LEVEL"},
		{name: "unknown format", level: "INFO", format: "xml", expectedError: "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level
			cfg.LogFormat = tt.format

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"DEBUG", "info", "Warn", "WARNING", "ERROR"} {
		cfg := validConfig()
		cfg.LogLevel = level
		assert.NoError(t, cfg.Validate(), level)
	}
}

func TestValidate_InvalidSRSDefaults(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{name: "ease bounds inverted", mutate: func(c *config.Config) { c.SRSMinEase, c.SRSMaxEase = 2.8, 1.5 }, expectedError: "MaxEaseFactor"},
		{name: "initial ease outside bounds", mutate: func(c *config.Config) { c.SRSInitialEase = 3.5 }, expectedError: "InitialEaseFactor"},
		{name: "zero max interval", mutate: func(c *config.Config) { c.SRSMaxInterval = 0 }, expectedError: "MaxInterval"},
		{name: "negative decay", mutate: func(c *config.Config) { c.SRSDecayRate = -0.1 }, expectedError: "MemoryDecayRate"},
		{name: "bad learning steps", mutate: func(c *config.Config) { c.SRSLearningSteps = "1m,soon" }, expectedError: "SRS_LEARNING_STEPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		StoreBackend:     "s3",
		LogLevel:         "INVALID",
		LogFormat:        "yaml",
		SyncWorkerCount:  0,
		SyncQueueSize:    0,
		SRSLearningSteps: "10m,1m",
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "STORE_BACKEND")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "LOG_FORMAT")
	assert.Contains(t, errStr, "SYNC_WORKER_COUNT")
	assert.Contains(t, errStr, "SYNC_QUEUE_SIZE")
	assert.Contains(t, errStr, "USER_ID cannot be empty")
	assert.Contains(t, errStr, "SRS_LEARNING_STEPS")
}

func TestSRSDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.SRSMaxInterval = 120
	cfg.SRSLearningSteps = "30s, 5m, 1h"

	srs, err := cfg.SRSDefaults()
	require.NoError(t, err)
	assert.Equal(t, 120, srs.MaxInterval)
	assert.Equal(t, []time.Duration{30 * time.Second, 5 * time.Minute, time.Hour}, srs.LearningSteps)
	assert.Equal(t, models.DefaultSRSConfig().PassingGrade, srs.PassingGrade)
}

func TestParseLearningSteps(t *testing.T) {
	steps, err := config.ParseLearningSteps("")
	require.NoError(t, err)
	assert.Empty(t, steps)

	_, err = config.ParseLearningSteps("0s")
	assert.Error(t, err)

	_, err = config.ParseLearningSteps("5m,5m")
	assert.Error(t, err)

	defaults := models.DefaultSRSConfig().LearningSteps
	steps, err = config.ParseLearningSteps(config.FormatLearningSteps(defaults))
	require.NoError(t, err)
	assert.Equal(t, defaults, steps)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("STORE_BACKEND", config.StoreSynced)
	t.Setenv("SYNC_WORKER_COUNT", "4")
	t.Setenv("SRS_MAX_EASE", "2.9")
	t.Setenv("SRS_MAX_INTERVAL", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, config.StoreSynced, cfg.StoreBackend)
	assert.Equal(t, 4, cfg.SyncWorkerCount)
	assert.Equal(t, 2.9, cfg.SRSMaxEase)
	assert.Equal(t, 365, cfg.SRSMaxInterval, "invalid values fall back to defaults")
	assert.Equal(t, "1m0s,10m0s", cfg.SRSLearningSteps)
}
