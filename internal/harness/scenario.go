package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/player"
)

// Scenario is a scripted play-through with expectations on its outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed fixes the random source. Required and non-zero.
	Seed int64 `yaml:"seed"`

	// Session is the fixed session ID. Defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Difficulty sets the starting balance. Defaults to normal.
	Difficulty string `yaml:"difficulty,omitempty"`

	// Builtin loads the packs compiled into the binary.
	Builtin bool `yaml:"builtin,omitempty"`

	// Content lists content files or directories, relative to the scenario
	// file once loaded with LoadScenario.
	Content []string `yaml:"content,omitempty"`

	// Config overrides the default tunables. Unset fields keep their default.
	Config config.Config `yaml:"config,omitempty"`

	// Choices answer interactive prompts in order.
	Choices []int `yaml:"choices,omitempty"`

	// Steps run in order after the session starts.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	// Rounds plays that many rounds, stopping early if the campaign ends.
	Rounds int `yaml:"rounds,omitempty"`

	Buy  *TradeStep `yaml:"buy,omitempty"`
	Sell *TradeStep `yaml:"sell,omitempty"`

	// SetMoney overwrites the balance, for driving level goals directly.
	SetMoney *float64 `yaml:"set_money,omitempty"`

	// CheckLevels re-evaluates level goals outside a round.
	CheckLevels bool `yaml:"check_levels,omitempty"`
}

// TradeStep buys or sells shares of the active tradeable at Index (1-based,
// as shown to the player).
type TradeStep struct {
	Index  int `yaml:"index"`
	Amount int `yaml:"amount"`

	// ExpectError, if set, must be contained in the trade's error. A
	// rejected trade without ExpectError fails the scenario.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event and Change select entries for event_count. Change defaults to
	// "admitted".
	Event  string `yaml:"event,omitempty"`
	Change string `yaml:"change,omitempty"`
	Count  int    `yaml:"count,omitempty"`

	// Events is the expected first-start order for event_order.
	Events []string `yaml:"events,omitempty"`

	// Level is the level name for level_passed.
	Level string `yaml:"level,omitempty"`

	// Tradeable, Min and Max bound a final value (quote, money).
	Tradeable string   `yaml:"tradeable,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`

	// Names is the expected list for active_tradeables.
	Names []string `yaml:"names,omitempty"`

	// Value is the expected flag for campaign_complete.
	Value *bool `yaml:"value,omitempty"`

	// Stage is the expected stage for stage.
	Stage int `yaml:"stage,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount       = "event_count"
	AssertEventOrder       = "event_order"
	AssertLevelPassed      = "level_passed"
	AssertMoney            = "money"
	AssertQuote            = "quote"
	AssertActiveTradeables = "active_tradeables"
	AssertCampaignComplete = "campaign_complete"
	AssertStage            = "stage"
)

// DefaultSession is the session ID used when a scenario names none.
const DefaultSession = "test-session-default"

// LoadScenario reads and parses a scenario YAML file. Content paths are
// resolved relative to the file. Returns an error if the file doesn't exist,
// is malformed, contains unknown fields (typos), or is missing required
// fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Content {
		if !filepath.IsAbs(p) {
			scenario.Content[i] = filepath.Join(base, p)
		}
	}
	for _, p := range scenario.Content {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("invalid scenario: content not found: %s", p)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Content paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Config: config.Default()}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Seed == 0 {
		return fmt.Errorf("seed is required and must be non-zero")
	}
	if _, err := player.ParseDifficulty(s.Difficulty); err != nil {
		return err
	}
	if !s.Builtin && len(s.Content) == 0 {
		return fmt.Errorf("no level packs: set builtin or list content")
	}
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s Step) error {
	set := 0
	if s.Rounds != 0 {
		set++
		if s.Rounds < 0 {
			return fmt.Errorf("steps[%d]: rounds must be positive", index)
		}
	}
	for _, trade := range []*TradeStep{s.Buy, s.Sell} {
		if trade == nil {
			continue
		}
		set++
		if trade.Index < 1 {
			return fmt.Errorf("steps[%d]: trade index is 1-based", index)
		}
	}
	if s.SetMoney != nil {
		set++
	}
	if s.CheckLevels {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of rounds, buy, sell, set_money, check_levels is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertLevelPassed:
		if a.Level == "" {
			return fmt.Errorf("assertions[%d]: level is required for level_passed", index)
		}
	case AssertMoney:
		if a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for money", index)
		}
	case AssertQuote:
		if a.Tradeable == "" {
			return fmt.Errorf("assertions[%d]: tradeable is required for quote", index)
		}
		if a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for quote", index)
		}
	case AssertActiveTradeables:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: names is required for active_tradeables (use [] for none)", index)
		}
	case AssertCampaignComplete:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for campaign_complete", index)
		}
	case AssertStage:
		if a.Stage < 0 {
			return fmt.Errorf("assertions[%d]: stage must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
