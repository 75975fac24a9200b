// Package market holds the tradeable registry and the two-phase per-round
// price update.
//
// A round starts with SaveSnapshot. Events then move prices through SetValue.
// UpdateUnchanged closes the round by walking every active tradeable whose
// price still equals its snapshot, so no tradeable is moved by both an event
// and the autonomous walk in the same round.
package market

import (
	"log/slog"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/random"
)

// Market tracks known tradeables, the active subset with current values, and
// the snapshot taken at the start of the round.
type Market struct {
	cfg    config.Market
	rng    *random.Source
	logger *slog.Logger

	known    []*Tradeable
	isKnown  map[*Tradeable]struct{}
	active   []*Tradeable
	values   map[*Tradeable]float64
	snapshot map[*Tradeable]float64
}

// Option configures a Market.
type Option func(*Market)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Market) {
		m.logger = l
	}
}

// New creates an empty market.
func New(cfg config.Market, rng *random.Source, opts ...Option) *Market {
	m := &Market{
		cfg:      cfg,
		rng:      rng,
		logger:   slog.Default(),
		isKnown:  make(map[*Tradeable]struct{}),
		values:   make(map[*Tradeable]float64),
		snapshot: make(map[*Tradeable]float64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds t to the known registry. The first registration draws its
// share count and initial value. Returns false if t was already known.
func (m *Market) Register(t *Tradeable) bool {
	if _, ok := m.isKnown[t]; ok {
		return false
	}
	m.isKnown[t] = struct{}{}
	m.known = append(m.known, t)
	t.InitializeShares(m.rng)
	t.InitializeValue(m.rng)
	return true
}

// Known returns every registered tradeable in registration order.
func (m *Market) Known() []*Tradeable {
	out := make([]*Tradeable, len(m.known))
	copy(out, m.known)
	return out
}

// Find returns the known tradeable with the given name.
func (m *Market) Find(name string) (*Tradeable, bool) {
	for _, t := range m.known {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Activate puts t into play with a freshly drawn value. Activating an active
// tradeable is a no-op and returns false.
func (m *Market) Activate(t *Tradeable) bool {
	if _, ok := m.values[t]; ok {
		return false
	}
	m.Register(t)
	m.values[t] = t.InitializeValue(m.rng)
	m.active = append(m.active, t)
	m.logger.Debug("tradeable activated", "tradeable", t.Name, "value", t.Value)
	return true
}

// Deactivate takes t out of play. Returns false if t was not active.
func (m *Market) Deactivate(t *Tradeable) bool {
	if _, ok := m.values[t]; !ok {
		return false
	}
	delete(m.values, t)
	delete(m.snapshot, t)
	for i, a := range m.active {
		if a == t {
			m.active = append(m.active[:i], m.active[i+1:]...)
			break
		}
	}
	m.logger.Debug("tradeable deactivated", "tradeable", t.Name)
	return true
}

// IsActive reports whether t is in play.
func (m *Market) IsActive(t *Tradeable) bool {
	_, ok := m.values[t]
	return ok
}

// Active returns the tradeables in play, in activation order.
func (m *Market) Active() []*Tradeable {
	out := make([]*Tradeable, len(m.active))
	copy(out, m.active)
	return out
}

// Value returns the current value of an active tradeable.
func (m *Market) Value(t *Tradeable) (float64, bool) {
	v, ok := m.values[t]
	return v, ok
}

// SetValue writes v to both the active registry and the tradeable. Returns
// false and changes nothing if t is not active.
func (m *Market) SetValue(t *Tradeable, v float64) bool {
	if _, ok := m.values[t]; !ok {
		return false
	}
	m.values[t] = v
	t.Value = v
	return true
}

// SaveSnapshot records the current active values. Call before events run.
func (m *Market) SaveSnapshot() {
	clear(m.snapshot)
	for t, v := range m.values {
		m.snapshot[t] = v
	}
}

// UpdateUnchanged walks every active tradeable whose value equals its
// snapshot. Tradeables activated after the snapshot are left alone. Returns
// the walked tradeables in activation order.
func (m *Market) UpdateUnchanged() []*Tradeable {
	var walked []*Tradeable
	for _, t := range m.active {
		before, ok := m.snapshot[t]
		if !ok || m.values[t] != before {
			continue
		}
		t.Value = m.values[t]
		m.values[t] = t.walk(m.rng, m.cfg.SignNegativeBound, m.cfg.ResetBottom, m.cfg.ResetTop)
		walked = append(walked, t)
	}
	return walked
}

// Quote is a point-in-time view of an active tradeable.
type Quote struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Shares int     `json:"shares"`
}

// Quotes returns the active tradeables' values in activation order.
func (m *Market) Quotes() []Quote {
	out := make([]Quote, 0, len(m.active))
	for _, t := range m.active {
		out = append(out, Quote{Name: t.Name, Value: m.values[t], Shares: t.Shares})
	}
	return out
}
