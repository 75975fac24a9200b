package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/player"
	"github.com/roach88/bourse/internal/random"
)

func TestNew(t *testing.T) {
	e := New("Greece lemon plague", "Lemon trees are dying", High)

	assert.Equal(t, action.KindEvent, e.Kind)
	assert.Equal(t, "Greece lemon plague", e.Label().Name)
	assert.Equal(t, Idle, e.State())
	assert.False(t, e.IsMain())

	e.Admission = &Admission{}
	assert.True(t, e.IsMain())
}

func TestStartTick(t *testing.T) {
	e := New("Drought", "", Mid)
	e.RoundsBottom, e.RoundsTop = 3, 3

	require.Equal(t, 3, e.Start(random.New(1)))
	assert.Equal(t, Active, e.State())

	assert.False(t, e.Tick())
	assert.False(t, e.Tick())
	assert.Equal(t, 1, e.Remaining())
	assert.True(t, e.Tick())
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, 0, e.Remaining())
}

func TestTick_ZeroLifetimeExpiresImmediately(t *testing.T) {
	e := New("Flash", "", Low)
	e.Start(random.New(1))

	assert.True(t, e.Tick())
}

func TestApplyEffects(t *testing.T) {
	cfg := config.Default().Player
	p := player.New(cfg)
	p.SetDifficulty(cfg, player.Normal)

	e := New("Tax", "", Low)
	e.Effects[player.TargetMoney] = -10
	e.Effects[player.TargetBought] = 2
	e.ApplyEffects(p)

	assert.Equal(t, 30.0, p.Money)
	assert.Equal(t, int64(2), p.Bought)
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]Priority{"LOW": Low, "mid": Mid, "medium": Mid, "high": High} {
		got, err := ParsePriority(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEmpty(t, got.String())
	}
	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}

func TestUpdateIndex_ZeroReinitializes(t *testing.T) {
	a := &Admission{InitBottom: 12, InitTop: 12, Ceiling: 100, StepBottom: 50, StepTop: 50}

	assert.Equal(t, 12, a.UpdateIndex(random.New(1), 35))
}

func TestUpdateIndex_Clamps(t *testing.T) {
	up := &Admission{Index: 90, Ceiling: 100, StepBottom: 30, StepTop: 30}
	for i := 0; i < 5; i++ {
		up.UpdateIndex(random.New(int64(i)), -1)
		assert.Equal(t, 100, up.Index)
	}

	down := &Admission{Index: 10, Ceiling: 100, StepBottom: 30, StepTop: 30}
	down.UpdateIndex(random.New(1), 100)
	assert.Equal(t, 0, down.Index)
}

func TestUpdateIndex_StaysInBounds(t *testing.T) {
	rng := random.New(7)
	a := &Admission{InitBottom: 0, InitTop: 30, Ceiling: 100, Threshold: 70, StepBottom: 2, StepTop: 5}
	a.InitializeIndex(rng)

	for i := 0; i < 1000; i++ {
		v := a.UpdateIndex(rng, 35)
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, 100)
	}
}

func TestFire(t *testing.T) {
	a := &Admission{Index: 70, Threshold: 70}
	assert.True(t, a.Ready())
	assert.True(t, a.Fire(random.New(1), 0), "rate 0 always fires once ready")
	assert.False(t, a.Fire(random.New(1), 101), "rate 101 never fires")

	a.Index = 69
	assert.False(t, a.Fire(random.New(1), 0))
}
