package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJSON(t *testing.T, args ...string) (TestResult, error) {
	t.Helper()
	out, err := execute(t, "", append([]string{"--format", "json", "test"}, args...)...)

	var result TestResult
	decodeResponse(t, out, &result)
	return result, err
}

func TestTestCommand_Scenarios(t *testing.T) {
	result, err := testJSON(t, scenarioDir)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Passed)
	assert.Zero(t, result.Failed)
	var names []string
	for _, s := range result.Scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"harbor_storm", "lemonade_campaign", "rejected_trade"}, names)
}

func TestTestCommand_Golden(t *testing.T) {
	result, err := testJSON(t, scenarioDir, "--golden", goldenDir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Passed)
}

func TestTestCommand_Filter(t *testing.T) {
	result, err := testJSON(t, scenarioDir, "--filter", "harbor*")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "harbor_storm", result.Scenarios[0].Name)
}

func TestTestCommand_Text(t *testing.T) {
	out, err := execute(t, "", "test", scenarioDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ harbor_storm")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_NoMatches(t *testing.T) {
	out, err := execute(t, "", "test", scenarioDir, "--filter", "nothing*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_UpdateRequiresGolden(t *testing.T) {
	_, err := execute(t, "", "test", scenarioDir, "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "golden")

	_, err := testJSON(t, scenarioDir, "--golden", dir, "--update")
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Regenerated files match the checked-in ones.
	written, err := os.ReadFile(filepath.Join(dir, "harbor_storm.golden"))
	require.NoError(t, err)
	checkedIn, err := os.ReadFile(filepath.Join(goldenDir, "harbor_storm.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(checkedIn), string(written))

	result, err := testJSON(t, scenarioDir, "--golden", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Passed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rejected_trade.golden"), []byte("{}\n"), 0644))
	result, err = testJSON(t, scenarioDir, "--golden", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, 1, result.Failed)
	for _, s := range result.Scenarios {
		if s.Name == "rejected_trade" {
			require.Len(t, s.Errors, 1)
			assert.Contains(t, s.Errors[0], "trace does not match")
		}
	}
}

func TestTestCommand_FailingScenario(t *testing.T) {
	harbor, err := filepath.Abs(harborContent)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rich.yaml")
	doc := fmt.Sprintf(`name: rich
seed: 1
content: [%q]
steps:
  - rounds: 1
assertions:
  - type: money
    min: 1000
`, harbor)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	out, err := execute(t, "", "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ rich")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, err := execute(t, "", "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
