package engine

import "sync/atomic"

// Clock numbers rounds.
//
// Every round gets a strictly increasing number from this clock. Journal
// records are keyed and ordered by it, never by wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// The Simulation's round lock means only one goroutine calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next round number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued round number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
