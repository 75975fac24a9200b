// Package config holds the static tunables consumed by the simulation.
//
// Configuration is layered: Default() values, then an optional YAML or TOML
// file, then BOURSE_* environment variables. Validate runs last.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "BOURSE_"

// Config is the full set of simulation tunables.
type Config struct {
	Events      Events      `yaml:"events" toml:"events" envPrefix:"EVENTS_"`
	Market      Market      `yaml:"market" toml:"market" envPrefix:"MARKET_"`
	Progression Progression `yaml:"progression" toml:"progression" envPrefix:"PROGRESSION_"`
	Player      Player      `yaml:"player" toml:"player" envPrefix:"PLAYER_"`
	Log         Log         `yaml:"log" toml:"log" envPrefix:"LOG_"`

	// Seed fixes the random source. Zero means "pick one at startup".
	Seed int64 `yaml:"seed" toml:"seed" env:"SEED"`
}

// Events bounds how many events may run at once and how main events self-admit.
type Events struct {
	MaxRunning     int `yaml:"max_running" toml:"max_running" env:"MAX_RUNNING"`
	MaxRunningLow  int `yaml:"max_running_low" toml:"max_running_low" env:"MAX_RUNNING_LOW"`
	MaxRunningMid  int `yaml:"max_running_mid" toml:"max_running_mid" env:"MAX_RUNNING_MID"`
	MaxRunningHigh int `yaml:"max_running_high" toml:"max_running_high" env:"MAX_RUNNING_HIGH"`

	// ExecutionRate gates admission: a ready event starts when
	// uniform(0,100) >= ExecutionRate.
	ExecutionRate int `yaml:"execution_rate" toml:"execution_rate" env:"EXECUTION_RATE"`

	// SignNegativeBound biases the pressure-index walk: the step is positive
	// when uniform(0,100) > SignNegativeBound.
	SignNegativeBound int `yaml:"sign_negative_bound" toml:"sign_negative_bound" env:"SIGN_NEGATIVE_BOUND"`
}

// Market tunes the autonomous random walk of untouched tradeables.
type Market struct {
	SignNegativeBound int     `yaml:"sign_negative_bound" toml:"sign_negative_bound" env:"SIGN_NEGATIVE_BOUND"`
	ResetBottom       float64 `yaml:"reset_bottom" toml:"reset_bottom" env:"RESET_BOTTOM"`
	ResetTop          float64 `yaml:"reset_top" toml:"reset_top" env:"RESET_TOP"`
}

// Progression bounds the stage registry.
type Progression struct {
	StartStage int `yaml:"start_stage" toml:"start_stage" env:"START_STAGE"`
	MaxStage   int `yaml:"max_stage" toml:"max_stage" env:"MAX_STAGE"`
}

// Player sets the starting balance per difficulty.
type Player struct {
	MoneyEasy   float64 `yaml:"money_easy" toml:"money_easy" env:"MONEY_EASY"`
	MoneyNormal float64 `yaml:"money_normal" toml:"money_normal" env:"MONEY_NORMAL"`
	MoneyHard   float64 `yaml:"money_hard" toml:"money_hard" env:"MONEY_HARD"`
	Currency    string  `yaml:"currency" toml:"currency" env:"CURRENCY"`
	Nationality string  `yaml:"nationality" toml:"nationality" env:"NATIONALITY"`
}

// Log configures the slog handler installed by the CLI.
type Log struct {
	Level  slog.Level `yaml:"level" toml:"level" env:"LEVEL"`
	Format string     `yaml:"format" toml:"format" env:"FORMAT"` // "text" | "json"
}

// Default returns the stock tunables.
func Default() Config {
	return Config{
		Events: Events{
			MaxRunning:        8,
			MaxRunningLow:     4,
			MaxRunningMid:     2,
			MaxRunningHigh:    2,
			ExecutionRate:     35,
			SignNegativeBound: 35,
		},
		Market: Market{
			SignNegativeBound: 45,
			ResetBottom:       0.1,
			ResetTop:          3.0,
		},
		Progression: Progression{
			StartStage: 1,
			MaxStage:   9,
		},
		Player: Player{
			MoneyEasy:   50,
			MoneyNormal: 40,
			MoneyHard:   25,
			Currency:    "€",
		},
		Log: Log{
			Level:  slog.LevelInfo,
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, the file at path (if non-empty) and
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate rejects tunables the engine cannot honor.
func (c Config) Validate() error {
	e := c.Events
	if e.MaxRunning < 0 || e.MaxRunningLow < 0 || e.MaxRunningMid < 0 || e.MaxRunningHigh < 0 {
		return fmt.Errorf("%w: running-event caps must be >= 0", ErrInvalid)
	}
	if e.ExecutionRate < 0 || e.ExecutionRate > 101 {
		return fmt.Errorf("%w: execution_rate %d outside [0,101]", ErrInvalid, e.ExecutionRate)
	}
	if c.Market.ResetBottom <= 0 || c.Market.ResetTop < c.Market.ResetBottom {
		return fmt.Errorf("%w: reset range [%g,%g] must be positive and ordered",
			ErrInvalid, c.Market.ResetBottom, c.Market.ResetTop)
	}
	p := c.Progression
	if p.StartStage < 1 || p.MaxStage < p.StartStage {
		return fmt.Errorf("%w: stages must satisfy 1 <= start_stage (%d) <= max_stage (%d)",
			ErrInvalid, p.StartStage, p.MaxStage)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Cap returns the running cap for a priority name ("low", "mid", "high").
func (e Events) Cap(priority string) int {
	switch priority {
	case "low":
		return e.MaxRunningLow
	case "mid":
		return e.MaxRunningMid
	case "high":
		return e.MaxRunningHigh
	default:
		return 0
	}
}
