package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/drillflash/internal/config"
)

func writeBands(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadLevelBands(t *testing.T) {
	path := writeBands(t, `
bands:
  - min_level: 0
    max_level: 1
    initial_ease_factor: 2.2
    max_interval: 120
    learning_steps: 1m,5m,10m
  - min_level: 5
    easy_interval: 8
`)

	bands, err := config.LoadLevelBands(path)
	require.NoError(t, err)
	require.Len(t, bands, 2)

	beginner := bands[0]
	assert.Equal(t, 0, beginner.MinLevel)
	assert.Equal(t, 1, beginner.MaxLevel)
	require.NotNil(t, beginner.Override.InitialEaseFactor)
	assert.InDelta(t, 2.2, *beginner.Override.InitialEaseFactor, 1e-9)
	require.NotNil(t, beginner.Override.MaxInterval)
	assert.Equal(t, 120, *beginner.Override.MaxInterval)
	assert.Equal(t, []time.Duration{time.Minute, 5 * time.Minute, 10 * time.Minute}, beginner.Override.LearningSteps)
	assert.Nil(t, beginner.Override.EasyInterval)

	advanced := bands[1]
	assert.Equal(t, 5, advanced.MinLevel)
	assert.Equal(t, math.MaxInt, advanced.MaxLevel)
	require.NotNil(t, advanced.Override.EasyInterval)
	assert.Equal(t, 8, *advanced.Override.EasyInterval)
	assert.Nil(t, advanced.Override.LearningSteps)
}

func TestLoadLevelBands_Errors(t *testing.T) {
	tests := map[string]string{
		"overlapping bands": `
bands:
  - min_level: 0
    max_level: 3
  - min_level: 2
    max_level: 4
`,
		"inverted range": `
bands:
  - min_level: 4
    max_level: 2
`,
		"bad learning steps": `
bands:
  - min_level: 0
    learning_steps: 10m,1m
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadLevelBands(writeBands(t, body))
			assert.Error(t, err)
		})
	}

	_, err := config.LoadLevelBands(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
