package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 8080
database:
  dsn: "host=localhost user=labsched dbname=labsched"
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 30, cfg.Server.CacheTTLSeconds)

	assert.Equal(t, 10, cfg.Matcher.ToleranceBeforeMinutes)
	assert.Equal(t, 20, cfg.Matcher.ToleranceAfterMinutes)

	assert.Equal(t, "21:00", cfg.Sweeper.RunAt)
	assert.False(t, cfg.Sweeper.Enabled)

	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 3600, cfg.Push.TTL)

	// Without an explicit partition the three standard labs apply.
	require.Len(t, cfg.Labs, 3)
	assert.Equal(t, DefaultLabs(), cfg.Labs)
}

func TestLoadExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
  rate_limit_per_sec: 50
  rate_limit_burst: 25
matcher:
  tolerance_before_minutes: 5
  tolerance_after_minutes: 15
labs:
  - id: 1
    name: "LAB A"
    first_pc: 1
    last_pc: 20
  - id: 2
    name: "LAB B"
    first_pc: 21
    last_pc: 30
sweeper:
  enabled: true
  run_at: "20:30"
`))
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Matcher.ToleranceBeforeMinutes)
	assert.Equal(t, 15, cfg.Matcher.ToleranceAfterMinutes)
	require.Len(t, cfg.Labs, 2)
	assert.Equal(t, "LAB B", cfg.Labs[1].Name)
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, "20:30", cfg.Sweeper.RunAt)
}

func TestLoadRejectsOverlappingLabRanges(t *testing.T) {
	_, err := Load(writeConfig(t, `
labs:
  - id: 1
    name: "LAB A"
    first_pc: 1
    last_pc: 40
  - id: 2
    name: "LAB B"
    first_pc: 30
    last_pc: 60
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlaps")
}

func TestLoadRejectsInvalidPCRange(t *testing.T) {
	_, err := Load(writeConfig(t, `
labs:
  - id: 1
    name: "LAB A"
    first_pc: 10
    last_pc: 5
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PC range")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
