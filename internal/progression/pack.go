package progression

import (
	"context"
	"fmt"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/random"
)

// Pack groups levels that share events and tradeables.
type Pack struct {
	Name        string
	Description string
	Nation      string
	Stage       int

	// HasOption lets the player pick among several first levels.
	HasOption bool

	Events     []*event.Event
	Tradeables []*market.Tradeable

	// Init builds the pack's content. It runs once, from Initialize.
	Init func(*Pack) error

	firstLevels []*Level
	initialized bool
}

// NewPack creates an uninitialized pack.
func NewPack(name string, stage int) *Pack {
	return &Pack{Name: name, Stage: stage}
}

// Label implements action.Labeled so packs can be offered as options.
func (p *Pack) Label() action.Option {
	desc := p.Description
	if p.Nation != "" {
		desc = fmt.Sprintf("%s (%s)", desc, p.Nation)
	}
	return action.Option{Name: p.Name, Description: desc}
}

// AddFirstLevel adds an entry level. The stages are synchronized: a pack with
// a stage imposes it on the level, otherwise the pack takes the level's.
func (p *Pack) AddFirstLevel(l *Level) {
	if l == nil {
		return
	}
	if p.Stage != StageUnset {
		l.Stage = p.Stage
	} else if l.Stage != StageUnset {
		p.Stage = l.Stage
	}
	l.Pack = p
	p.firstLevels = append(p.firstLevels, l)
}

// FirstLevels returns the entry levels in order.
func (p *Pack) FirstLevels() []*Level {
	out := make([]*Level, len(p.firstLevels))
	copy(out, p.firstLevels)
	return out
}

// Initialized reports whether Initialize has completed.
func (p *Pack) Initialized() bool {
	return p.initialized
}

// Initialize runs Init once and then links every level reachable from the
// first levels to p, giving levels with an unset stage the pack's stage.
// Further calls are no-ops.
func (p *Pack) Initialize() error {
	if p.initialized {
		return nil
	}
	if p.Init != nil {
		if err := p.Init(p); err != nil {
			return fmt.Errorf("initialize pack %q: %w", p.Name, err)
		}
	}
	for _, l := range p.Levels() {
		if l.Pack == nil {
			l.Pack = p
		}
		if l.Stage == StageUnset {
			l.Stage = p.Stage
		}
	}
	p.initialized = true
	return nil
}

// Levels returns every level reachable from the first levels, breadth first.
func (p *Pack) Levels() []*Level {
	var (
		out     []*Level
		visited = make(map[*Level]struct{})
		queue   = append([]*Level(nil), p.firstLevels...)
	)
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		if _, ok := visited[l]; ok {
			continue
		}
		visited[l] = struct{}{}
		out = append(out, l)
		queue = append(queue, l.Successors()...)
	}
	return out
}

// StartLevel picks the level a player begins the pack with.
func (p *Pack) StartLevel(ctx context.Context, rng *random.Source, chooser action.Chooser) (*Level, bool, error) {
	return action.Select(ctx, p.firstLevels, p.HasOption, "Please choose a level", rng, chooser)
}
