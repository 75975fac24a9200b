package market

import (
	"github.com/roach88/bourse/internal/random"
)

// Owner is anything a tradeable can belong to. Environments satisfy it.
type Owner interface {
	OwnerName() string
}

// Tradeable is a commodity the player can buy and sell.
type Tradeable struct {
	Name        string
	Description string

	// Value is the tradeable's own copy of its price. The market keeps the
	// authoritative active value and writes both together.
	Value float64

	InitBottom      float64
	InitTop         float64
	InfluenceBottom float64
	InfluenceTop    float64

	MinShares int
	MaxShares int
	Shares    int

	owners []Owner
}

// AddOwner records o as owning t. Returns false if o was already recorded.
func (t *Tradeable) AddOwner(o Owner) bool {
	for _, existing := range t.owners {
		if existing == o {
			return false
		}
	}
	t.owners = append(t.owners, o)
	return true
}

// Owners returns the owning environments in registration order.
func (t *Tradeable) Owners() []Owner {
	out := make([]Owner, len(t.owners))
	copy(out, t.owners)
	return out
}

// InitializeShares draws the available share count from [MinShares, MaxShares].
func (t *Tradeable) InitializeShares(rng *random.Source) int {
	t.Shares = rng.Int(t.MinShares, t.MaxShares)
	return t.Shares
}

// InitializeValue draws the price from [InitBottom, InitTop].
func (t *Tradeable) InitializeValue(rng *random.Source) float64 {
	t.Value = rng.Float(t.InitBottom, t.InitTop)
	return t.Value
}

// IncShares returns n shares to the market pool.
func (t *Tradeable) IncShares(n int) {
	t.Shares += n
}

// DecShares removes n shares from the market pool.
func (t *Tradeable) DecShares(n int) {
	t.Shares -= n
}

// walk is the autonomous per-round price move:
//
//	sign  = +1 if uniform(0,100) > signNegativeBound else -1
//	value = value + uniform(InfluenceBottom, InfluenceTop) * sign
//
// A non-positive result bounces to uniform(resetBottom, resetTop).
func (t *Tradeable) walk(rng *random.Source, signNegativeBound int, resetBottom, resetTop float64) float64 {
	sign := -1.0
	if rng.Int(0, 100) > signNegativeBound {
		sign = 1.0
	}
	next := t.Value + rng.Float(t.InfluenceBottom, t.InfluenceTop)*sign
	if next <= 0 {
		next = rng.Float(resetBottom, resetTop)
	}
	t.Value = next
	return next
}
