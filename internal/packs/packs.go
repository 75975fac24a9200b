// Package packs holds the level packs compiled into the binary.
package packs

import (
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/market"
)

// Builtin returns the factories of every built-in pack, in stage order.
func Builtin() []engine.PackFactory {
	return []engine.PackFactory{Lemonade}
}

// environmentOf returns the environment registered under name, creating it
// when missing so packs can share environments by name.
func environmentOf(g *environment.Graph, name, description string, rank environment.Rank) (*environment.Environment, error) {
	if e, ok := g.Get(name); ok {
		return e, nil
	}
	return g.Add(name, description, rank)
}

// tradeableOf returns the tradeable known to m under t.Name, or registers t.
func tradeableOf(m *market.Market, t *market.Tradeable) (*market.Tradeable, bool) {
	if known, ok := m.Find(t.Name); ok {
		return known, false
	}
	m.Register(t)
	return t, true
}
