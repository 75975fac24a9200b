package engine

import (
	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/event"
)

// PriorityQuota tracks running events overall and per priority and decides
// whether another main event may start.
//
// Counters move only through Admit and Release. Verify checks them against
// the true set of active events after every round.
type PriorityQuota struct {
	maxAll  int
	caps    map[event.Priority]int
	running map[event.Priority]int
	all     int
}

// NewPriorityQuota creates a quota from the event caps.
func NewPriorityQuota(cfg config.Events) *PriorityQuota {
	return &PriorityQuota{
		maxAll: cfg.MaxRunning,
		caps: map[event.Priority]int{
			event.Low:  cfg.MaxRunningLow,
			event.Mid:  cfg.MaxRunningMid,
			event.High: cfg.MaxRunningHigh,
		},
		running: make(map[event.Priority]int),
	}
}

// Full reports whether the overall cap is reached.
func (q *PriorityQuota) Full() bool {
	return q.all >= q.maxAll
}

// Blocked reports whether a main event of priority p may not start now.
func (q *PriorityQuota) Blocked(p event.Priority) bool {
	return q.Full() || q.running[p] >= q.caps[p]
}

// Admit counts a started event.
func (q *PriorityQuota) Admit(p event.Priority) {
	q.running[p]++
	q.all++
}

// Release uncounts a finished event.
func (q *PriorityQuota) Release(p event.Priority) {
	q.running[p]--
	q.all--
}

// Running returns the counter for p.
func (q *PriorityQuota) Running(p event.Priority) int {
	return q.running[p]
}

// All returns the overall counter.
func (q *PriorityQuota) All() int {
	return q.all
}

// Verify compares the counters with active. The returned error carries the
// first mismatch; sessionID and round only label it.
func (q *PriorityQuota) Verify(active []*event.Event, sessionID string, round int64) error {
	actual := make(map[event.Priority]int)
	for _, e := range active {
		actual[e.Priority]++
	}
	for _, p := range event.Priorities {
		if q.running[p] != actual[p] {
			return NewCounterDriftError(sessionID, round, p.String(), q.running[p], actual[p])
		}
	}
	if q.all != len(active) {
		return NewCounterDriftError(sessionID, round, "all", q.all, len(active))
	}
	return nil
}
