package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlay_Session(t *testing.T) {
	input := "buy 1.1\ninfo\nfind lemn\nhelp\nnext\nbogus\nquit\n"
	out, err := execute(t, input, "play", "--difficulty", "normal", "--seed", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "Starting with 40.00€.")
	assert.Contains(t, out, "Level Lemonade stand")
	assert.Contains(t, out, "1) Lemons")
	assert.Contains(t, out, "Bought 1 Lemons at")
	assert.Contains(t, out, "Portfolio:")
	assert.Contains(t, out, "tradeable   Lemons")
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "=== Round 1 (stage 1) ===")
	assert.Contains(t, out, `unknown command: "bogus"`)
	assert.Contains(t, out, "1 rounds")
}

func TestPlay_HarborTrade(t *testing.T) {
	input := "buy 1.2\nsell 1.5\nsell 1.1\nquit\n"
	out, err := execute(t, input, "play", "--no-builtin", "--difficulty", "normal", "--seed", "11", harborContent)
	require.NoError(t, err)

	assert.Contains(t, out, "Bought 2 Grain at 16.00€. Balance: 8.00€")
	assert.Contains(t, out, "Trade rejected: not enough shares")
	assert.Contains(t, out, "Sold 1 Grain at 16.00€. Balance: 24.00€")
}

func TestPlay_PromptsForDifficulty(t *testing.T) {
	out, err := execute(t, "5\n3\nquit\n", "play", "--seed", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "Choose a difficulty")
	assert.Contains(t, out, "3) hard - start with 25€")
	assert.Contains(t, out, "Please enter a number between 1 and 3.")
	assert.Contains(t, out, "Starting with 25.00€.")
}

func TestPlay_EndOfInputEndsSession(t *testing.T) {
	out, err := execute(t, "next\nnext\n", "play", "--difficulty", "easy", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Round 2 (stage 1) ===")
	assert.Contains(t, out, "2 rounds")
}

func TestPlay_JSONSummary(t *testing.T) {
	out, err := execute(t, "quit\n", "play", "--difficulty", "hard", "--seed", "7", "--format", "json")
	require.NoError(t, err)

	// The console shares stdout; the summary is the last line.
	lines := splitLines(out)
	require.NotEmpty(t, lines)

	var summary SessionSummary
	resp := decodeResponse(t, lines[len(lines)-1], &summary)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, summary.Session, resp.Session)
	assert.Equal(t, int64(7), summary.Seed)
	assert.InDelta(t, 25, summary.Money, 1e-9)
}

func TestPlay_Errors(t *testing.T) {
	t.Run("no level packs", func(t *testing.T) {
		_, err := execute(t, "", "play", "--no-builtin", "--difficulty", "easy")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "NO_LEVEL_PACKS")
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		_, err := execute(t, "", "play", "--difficulty", "brutal")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("strict content", func(t *testing.T) {
		_, err := execute(t, "", "play", "--strict", "--difficulty", "easy", brokenContent)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "content records rejected")
	})

	t.Run("missing content", func(t *testing.T) {
		_, err := execute(t, "", "play", "--difficulty", "easy", filepath.Join(t.TempDir(), "none.yaml"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestPlay_SkipsRejectedContent(t *testing.T) {
	out, err := execute(t, "quit\n", "play", "--difficulty", "easy", "--seed", "7", brokenContent)
	require.NoError(t, err)
	assert.Contains(t, out, "Starting with 50.00€.")
}
