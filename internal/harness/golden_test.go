package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

func TestRunWithGolden_HarborStorm(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "harbor_storm.yaml"))
	require.NoError(t, err)

	// To regenerate: go test ./internal/harness -run TestRunWithGolden_HarborStorm -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalSnapshot_Canonical(t *testing.T) {
	snapshot := TraceSnapshot{
		Scenario: "rounding",
		Seed:     3,
		Session:  DefaultSession,
		Steps: []StepTrace{{
			Seq: 1,
			Rounds: []engine.RoundReport{{
				Round:  1,
				Quotes: []market.Quote{{Name: "Salt", Value: 0.1 + 0.2, Shares: 4}},
				Money:  12.345678,
				Stage:  1,
			}},
		}},
		Final: FinalState{Money: 1e-9, Stage: 1, Quotes: []market.Quote{}},
	}

	data, err := MarshalSnapshot(snapshot)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"value": 0.3`)
	assert.Contains(t, out, `"money": 12.3457`)
	assert.Contains(t, out, `"money": 0,`)
	assert.NotContains(t, out, "-0")
	assert.Regexp(t, `(?s)^\{\n  "final".*"scenario".*"seed".*"session".*"steps"`, out)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	again, err := MarshalSnapshot(snapshot)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
