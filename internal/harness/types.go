package harness

import (
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

// StepTrace is the outcome of one scenario step.
type StepTrace struct {
	Seq    int64                `json:"seq"`
	Rounds []engine.RoundReport `json:"rounds,omitempty"`
	Trade  *engine.Trade        `json:"trade,omitempty"`
	Levels []engine.LevelChange `json:"levels,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// FinalState is the simulation state after the last step.
type FinalState struct {
	Money    float64        `json:"money"`
	Stage    int            `json:"stage"`
	Complete bool           `json:"complete"`
	Quotes   []market.Quote `json:"quotes"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every step and assertion succeeded.
	Pass bool `json:"pass"`

	// Trace holds every step in execution order.
	Trace []StepTrace `json:"trace"`

	Final FinalState `json:"final"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Rounds returns every played round in order.
func (r *Result) Rounds() []engine.RoundReport {
	var out []engine.RoundReport
	for _, s := range r.Trace {
		out = append(out, s.Rounds...)
	}
	return out
}

// LevelChanges returns every level change, from rounds, trades and level
// checks, in order.
func (r *Result) LevelChanges() []engine.LevelChange {
	var out []engine.LevelChange
	for _, s := range r.Trace {
		for _, round := range s.Rounds {
			out = append(out, round.Levels...)
		}
		if s.Trade != nil {
			out = append(out, s.Trade.Levels...)
		}
		out = append(out, s.Levels...)
	}
	return out
}
