package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/event"
)

func TestPriorityQuota_Caps(t *testing.T) {
	cfg := config.Default().Events
	cfg.MaxRunning = 3
	cfg.MaxRunningHigh = 1
	q := NewPriorityQuota(cfg)

	assert.False(t, q.Blocked(event.High))
	q.Admit(event.High)
	assert.True(t, q.Blocked(event.High))
	assert.False(t, q.Blocked(event.Low))

	q.Admit(event.Low)
	q.Admit(event.Low)
	assert.True(t, q.Full())
	assert.True(t, q.Blocked(event.Low), "overall cap blocks every priority")
	assert.Equal(t, 3, q.All())

	q.Release(event.High)
	assert.False(t, q.Full())
	assert.Equal(t, 0, q.Running(event.High))
}

func TestPriorityQuota_ZeroCap(t *testing.T) {
	cfg := config.Default().Events
	cfg.MaxRunningHigh = 0
	q := NewPriorityQuota(cfg)

	assert.True(t, q.Blocked(event.High))
}

func TestPriorityQuota_Verify(t *testing.T) {
	q := NewPriorityQuota(config.Default().Events)
	low := event.New("low", "", event.Low)
	mid := event.New("mid", "", event.Mid)

	q.Admit(event.Low)
	q.Admit(event.Mid)
	require.NoError(t, q.Verify([]*event.Event{low, mid}, "s", 1))

	err := q.Verify([]*event.Event{low}, "s", 2)
	require.Error(t, err)
	assert.True(t, IsCounterDrift(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "mid", re.Details["priority"])
	assert.Equal(t, int64(2), re.Round)
}
