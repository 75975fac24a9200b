package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/progression"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSim builds a simulation with seed 1, a discarded log and a fixed
// session ID. mutate may adjust the default config.
func newSim(t *testing.T, mutate func(*config.Config), opts ...Option) *Simulation {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	base := []Option{
		WithSeed(1),
		WithLogger(discard()),
		WithSessionGenerator(NewFixedGenerator("session-1")),
	}
	sim, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return sim
}

// alwaysFires builds a main event that is admitted on every eligible pass
// when the execution rate is 0.
func alwaysFires(name string, p event.Priority, rounds int) *event.Event {
	e := event.New(name, "", p)
	e.RoundsBottom, e.RoundsTop = rounds, rounds
	e.Admission = &event.Admission{InitBottom: 100, InitTop: 100, Ceiling: 100, Threshold: 0}
	return e
}

func fixedTradeable(name string, value float64, shares int) *market.Tradeable {
	return &market.Tradeable{
		Name:            name,
		InitBottom:      value,
		InitTop:         value,
		InfluenceBottom: 1,
		InfluenceTop:    1,
		MinShares:       shares,
		MaxShares:       shares,
	}
}

// packOf returns a factory for a pack with the given entry levels.
func packOf(p *progression.Pack, first ...*progression.Level) PackFactory {
	return func(*Simulation) (*progression.Pack, error) {
		for _, l := range first {
			p.AddFirstLevel(l)
		}
		return p, nil
	}
}

// endless is a level that is never passed.
func endless(name string) *progression.Level {
	return progression.NewLevel(name, "", nil, nil)
}

func zeroRate(c *config.Config) {
	c.Events.ExecutionRate = 0
}
