package action

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/bourse/internal/random"
)

// Kind tags which variant an action belongs to.
type Kind int

const (
	// KindEvent marks actions that run for a number of rounds.
	KindEvent Kind = iota + 1
	// KindLevel marks actions that complete when a goal is reached.
	KindLevel
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindLevel:
		return "level"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Option is a single menu entry presented to a Chooser.
type Option struct {
	Name        string
	Description string
}

// Chooser asks the player to pick one of several options.
//
// Implementations may block (console prompts). Returning an index outside
// [0, len(options)) is not an error: the caller reports it and asks again.
// A non-nil error means no answer can be obtained at all (input closed,
// context cancelled).
type Chooser interface {
	Choose(ctx context.Context, prompt string, options []Option) (int, error)
}

// Labeled is anything that can be listed in an option menu.
type Labeled interface {
	Label() Option
}

// Node is the constraint for successor elements.
type Node interface {
	comparable
	Labeled
}

// Action holds the fields shared by events and levels.
type Action[T comparable] struct {
	Kind        Kind
	Name        string
	Description string

	// HasOptions makes successor resolution interactive instead of random.
	HasOptions bool

	successors []T
}

// Label returns the menu entry for this action.
func (a *Action[T]) Label() Option {
	return Option{Name: a.Name, Description: a.Description}
}

// AddSuccessor appends s unless it is already a successor.
// Returns false when s was already present.
func (a *Action[T]) AddSuccessor(s T) bool {
	for _, existing := range a.successors {
		if existing == s {
			return false
		}
	}
	a.successors = append(a.successors, s)
	return true
}

// Successors returns the successors in insertion order.
func (a *Action[T]) Successors() []T {
	return a.successors
}

// Resolve selects the successor that replaces a when it finishes.
//
// ok is false when a has no successors. A nil chooser degrades interactive
// selection to a random pick (headless sessions).
func Resolve[T Node](ctx context.Context, a *Action[T], rng *random.Source, chooser Chooser) (next T, ok bool, err error) {
	return Select(ctx, a.successors, a.HasOptions, "Please choose an option", rng, chooser)
}

// Select picks one of items: directly when there is one, interactively when
// interactive is set, otherwise uniformly at random.
func Select[T Labeled](ctx context.Context, items []T, interactive bool, prompt string, rng *random.Source, chooser Chooser) (T, bool, error) {
	var zero T

	switch {
	case len(items) == 0:
		return zero, false, nil
	case len(items) == 1:
		return items[0], true, nil
	case interactive && chooser != nil:
		idx, err := choose(ctx, items, prompt, chooser)
		if err != nil {
			return zero, false, err
		}
		return items[idx], true, nil
	default:
		return items[rng.Index(len(items))], true, nil
	}
}

// choose blocks until the chooser returns an in-range index.
func choose[T Labeled](ctx context.Context, items []T, prompt string, chooser Chooser) (int, error) {
	options := make([]Option, len(items))
	for i, item := range items {
		options[i] = item.Label()
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		idx, err := chooser.Choose(ctx, prompt, options)
		if err != nil {
			return 0, fmt.Errorf("choose option: %w", err)
		}
		if idx >= 0 && idx < len(options) {
			return idx, nil
		}

		slog.Warn("option out of range",
			"index", idx,
			"options", len(options),
		)
	}
}
