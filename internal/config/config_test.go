package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8, cfg.Events.MaxRunning)
	assert.Equal(t, 2, cfg.Events.Cap("high"))
	assert.Equal(t, 4, cfg.Events.Cap("low"))
	assert.Equal(t, 0, cfg.Events.Cap("bogus"))
	assert.Equal(t, 45, cfg.Market.SignNegativeBound)
	assert.Equal(t, 9, cfg.Progression.MaxStage)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bourse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
events:
  max_running_high: 0
  execution_rate: 0
market:
  reset_bottom: 0.5
  reset_top: 0.5
log:
  level: debug
seed: 42
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Events.MaxRunningHigh)
	assert.Equal(t, 0, cfg.Events.ExecutionRate)
	assert.Equal(t, 8, cfg.Events.MaxRunning, "unset fields keep defaults")
	assert.Equal(t, 0.5, cfg.Market.ResetTop)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bourse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("events:\n  max_runing: 3\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bourse.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed = 7

[player]
money_normal = 60.0
currency = "$"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.Player.MoneyNormal)
	assert.Equal(t, "$", cfg.Player.Currency)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bourse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 1\n"), 0o644))
	t.Setenv("BOURSE_SEED", "99")
	t.Setenv("BOURSE_EVENTS_MAX_RUNNING_LOW", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 1, cfg.Events.MaxRunningLow)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bourse.ini")
	require.NoError(t, os.WriteFile(path, []byte("seed=1"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "unsupported config format")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative cap", func(c *Config) { c.Events.MaxRunningMid = -1 }},
		{"rate too high", func(c *Config) { c.Events.ExecutionRate = 200 }},
		{"zero reset", func(c *Config) { c.Market.ResetBottom = 0 }},
		{"inverted reset", func(c *Config) { c.Market.ResetTop = 0.05 }},
		{"start stage zero", func(c *Config) { c.Progression.StartStage = 0 }},
		{"max below start", func(c *Config) { c.Progression.MaxStage = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
