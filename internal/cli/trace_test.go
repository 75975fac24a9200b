package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/store"
)

// journaled runs a simulation into a fresh database and returns its path
// and the session ID.
func journaled(t *testing.T, rounds string) (string, string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "bourse.db")
	result := simulateJSON(t, "--rounds", rounds, "--seed", "9", "--difficulty", "hard", "--db", db)
	return db, result.Session
}

func TestTrace_Session(t *testing.T) {
	db, session := journaled(t, "6")

	out, err := execute(t, "", "--format", "json", "trace", "--db", db, "--session", session, "--tradeable", "Lemons")
	require.NoError(t, err)

	var result TraceResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, session, resp.Session)

	assert.Equal(t, session, result.Session.ID)
	assert.Equal(t, int64(9), result.Session.Seed)
	assert.Equal(t, "hard", result.Session.Difficulty)
	assert.Equal(t, "Lemonade", result.Session.StartPack)

	require.Len(t, result.Timeline, 6)
	assert.Equal(t, int64(6), result.Timeline[5].Round)
	assert.Len(t, result.History, 6)
	assert.Equal(t, 6, result.Stats.Rounds)
	assert.InDelta(t, 25, result.Stats.FinalMoney, 1e-9)
	assert.False(t, result.Stats.IsComplete)

	for _, r := range result.Timeline {
		require.NotEmpty(t, r.Values)
		assert.Equal(t, "Lemons", r.Values[0].Tradeable)
	}
}

func TestTrace_Text(t *testing.T) {
	db, session := journaled(t, "3")

	out, err := execute(t, "", "trace", "--db", db, "--session", session, "--tradeable", "Lemons")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: "+session+" (seed 9, hard, starting pack Lemonade)")
	assert.Contains(t, out, "round 3: balance 25.00, stage 1")
	assert.Contains(t, out, "quote             Lemons")
	assert.Contains(t, out, "History of Lemons:")
	assert.Contains(t, out, "Stats: 3 rounds")
}

func TestTrace_ListSessions(t *testing.T) {
	db, session := journaled(t, "1")

	out, err := execute(t, "", "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, session+"  seed=9  difficulty=hard  pack=Lemonade")
}

func TestTrace_EmptyJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "", "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions journaled.")
}

func TestTrace_Errors(t *testing.T) {
	t.Run("missing db flag", func(t *testing.T) {
		_, err := execute(t, "", "trace")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required flag")
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := execute(t, "", "trace", "--db", filepath.Join(t.TempDir(), "absent.db"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("unknown session", func(t *testing.T) {
		db, _ := journaled(t, "1")
		_, err := execute(t, "", "trace", "--db", db, "--session", "nope")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})
}
