package harness

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// goldenPrecision is the number of decimals floats keep in a snapshot.
// Prices are products of repeated percentage moves, so the last bits differ
// between architectures.
const goldenPrecision = 4

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	Scenario string      `json:"scenario"`
	Seed     int64       `json:"seed"`
	Session  string      `json:"session"`
	Steps    []StepTrace `json:"steps"`
	Final    FinalState  `json:"final"`
}

// MarshalSnapshot renders s as canonical JSON: object keys sorted, floats
// rounded to goldenPrecision decimals, two-space indent, trailing newline.
func MarshalSnapshot(s TraceSnapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(roundFloats(tree), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func roundFloats(v any) any {
	switch x := v.(type) {
	case float64:
		p := math.Pow10(goldenPrecision)
		r := math.Round(x*p) / p
		if r == 0 {
			return 0.0
		}
		return r
	case []any:
		for i := range x {
			x[i] = roundFloats(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = roundFloats(x[k])
		}
	}
	return v
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. A mismatch fails t via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	return result, assertSnapshot(t, scenario.Name, NewSnapshot(scenario, result))
}

// NewSnapshot pairs a scenario with the result of running it.
func NewSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	session := scenario.Session
	if session == "" {
		session = DefaultSession
	}
	return TraceSnapshot{
		Scenario: scenario.Name,
		Seed:     scenario.Seed,
		Session:  session,
		Steps:    result.Trace,
		Final:    result.Final,
	}
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario. Only the steps and the final state are recorded.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()
	return assertSnapshot(t, name, TraceSnapshot{
		Scenario: name,
		Steps:    result.Trace,
		Final:    result.Final,
	})
}

func assertSnapshot(t *testing.T, name string, snapshot TraceSnapshot) error {
	t.Helper()

	data, err := MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
