// Package environment models the hierarchy that carries event influence to
// tradeables.
//
// Environments have a rank (Group < Area < Location) and link to environments
// of the same rank or exactly one rank above. A tradeable is reachable from an
// environment if the environment owns it or any linked environment reaches it.
// An EnvironmentGroup affects only the tradeables reachable from every one of
// its members.
package environment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/bourse/internal/market"
)

// Rank orders environments from narrowest to widest.
type Rank int

const (
	RankGroup Rank = iota + 1
	RankArea
	RankLocation
)

func (r Rank) String() string {
	switch r {
	case RankGroup:
		return "group"
	case RankArea:
		return "area"
	case RankLocation:
		return "location"
	default:
		return fmt.Sprintf("rank(%d)", int(r))
	}
}

// ParseRank accepts "group", "area" or "location" in any case.
func ParseRank(s string) (Rank, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "group":
		return RankGroup, nil
	case "area":
		return RankArea, nil
	case "location":
		return RankLocation, nil
	default:
		return 0, fmt.Errorf("unknown environment rank %q", s)
	}
}

// CanLink reports whether an environment of rank from may link to one of rank to.
func CanLink(from, to Rank) bool {
	return to == from || (to == from+1 && to <= RankLocation)
}

// ErrSelfLink is returned when an environment is linked to itself.
var ErrSelfLink = errors.New("environment cannot link to itself")

// RankError is returned when a link would break the rank rule.
type RankError struct {
	From *Environment
	To   *Environment
}

func (e *RankError) Error() string {
	return fmt.Sprintf("cannot link %s %q to %s %q",
		e.From.Rank, e.From.Name, e.To.Rank, e.To.Name)
}

// Environment is a node in the influence hierarchy.
type Environment struct {
	Name        string
	Description string
	Rank        Rank

	links []*Environment
	owned []*market.Tradeable
	graph *Graph
}

// New creates a detached environment. Prefer Graph.Add, which keeps the
// reachability memo in sync.
func New(name string, rank Rank) *Environment {
	return &Environment{Name: name, Rank: rank}
}

// OwnerName implements market.Owner.
func (e *Environment) OwnerName() string {
	return e.Name
}

// Link adds to as a linked environment. A rejected link changes nothing.
// Linking an already linked environment is a no-op.
func (e *Environment) Link(to *Environment) error {
	if e == to {
		return ErrSelfLink
	}
	if !CanLink(e.Rank, to.Rank) {
		return &RankError{From: e, To: to}
	}
	for _, l := range e.links {
		if l == to {
			return nil
		}
	}
	e.links = append(e.links, to)
	e.changed()
	return nil
}

// Own registers t directly at e and records e as an owner of t.
// Returns false if e already owned t.
func (e *Environment) Own(t *market.Tradeable) bool {
	for _, o := range e.owned {
		if o == t {
			return false
		}
	}
	e.owned = append(e.owned, t)
	t.AddOwner(e)
	e.changed()
	return true
}

// Links returns the linked environments in link order.
func (e *Environment) Links() []*Environment {
	out := make([]*Environment, len(e.links))
	copy(out, e.links)
	return out
}

// Owned returns the directly owned tradeables in registration order.
func (e *Environment) Owned() []*market.Tradeable {
	out := make([]*market.Tradeable, len(e.owned))
	copy(out, e.owned)
	return out
}

func (e *Environment) changed() {
	if e.graph != nil {
		e.graph.invalidate()
	}
}
