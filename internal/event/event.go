// Package event models scheduled events and the pressure index that lets a
// main event admit itself.
package event

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/player"
	"github.com/roach88/bourse/internal/random"
)

// Priority is the admission class of an event.
type Priority int

const (
	Low Priority = iota + 1
	Mid
	High
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{Low, Mid, High}

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Mid:
		return "mid"
	case High:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority accepts low, mid or high in any case.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "mid", "medium":
		return Mid, nil
	case "high":
		return High, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

// State is where an event sits in the scheduler.
type State int

const (
	// Idle events are waiting in the pool (or have never run).
	Idle State = iota
	// Active events are counting down their remaining rounds.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Event is an action that influences environment groups for a number of
// rounds and may hand over to a successor event.
type Event struct {
	action.Action[*Event]

	Priority Priority

	// RoundsBottom and RoundsTop bound how long the event runs once started.
	RoundsBottom int
	RoundsTop    int

	Groups []*environment.Group

	// Effects are applied to the player once when the event starts.
	Effects map[player.Target]float64

	// Admission is set for main events only.
	Admission *Admission

	state     State
	remaining int
}

// New creates an idle event.
func New(name, description string, priority Priority) *Event {
	return &Event{
		Action: action.Action[*Event]{
			Kind:        action.KindEvent,
			Name:        name,
			Description: description,
		},
		Priority: priority,
		Effects:  make(map[player.Target]float64),
	}
}

// IsMain reports whether the event can admit itself from the pool.
func (e *Event) IsMain() bool {
	return e.Admission != nil
}

// State returns the scheduler state.
func (e *Event) State() State {
	return e.state
}

// Remaining returns the rounds left while active.
func (e *Event) Remaining() int {
	return e.remaining
}

// Start marks the event active for a lifetime drawn from
// [RoundsBottom, RoundsTop] and returns that lifetime.
func (e *Event) Start(rng *random.Source) int {
	e.state = Active
	e.remaining = rng.Int(e.RoundsBottom, e.RoundsTop)
	return e.remaining
}

// Tick consumes one round and reports whether the event has expired.
// An expired event is back to Idle.
func (e *Event) Tick() bool {
	e.remaining--
	if e.remaining > 0 {
		return false
	}
	e.Stop()
	return true
}

// Stop returns the event to Idle.
func (e *Event) Stop() {
	e.state = Idle
	e.remaining = 0
}

// ApplyEffects shifts the player by every effect, in target order.
func (e *Event) ApplyEffects(p *player.Player) {
	targets := make([]player.Target, 0, len(e.Effects))
	for t := range e.Effects {
		targets = append(targets, t)
	}
	slices.Sort(targets)
	for _, t := range targets {
		p.ApplyInfluence(t, e.Effects[t])
	}
}
