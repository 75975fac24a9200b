package environment

import (
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"

	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/random"
)

// DefaultMemoSize bounds the number of memoized reachability sets.
const DefaultMemoSize = 256

// ErrDuplicate is returned by Add for a name that is already registered.
var ErrDuplicate = errors.New("environment already registered")

// Graph is the registry of environments. It memoizes reachability and drops
// the memo whenever a registered environment gains a link or a tradeable.
type Graph struct {
	envs   []*Environment
	byName map[string]*Environment
	memo   *lru.Cache
	logger *slog.Logger
}

// Option configures a Graph.
type Option func(*graphOptions)

type graphOptions struct {
	memoSize int
	logger   *slog.Logger
}

// WithMemoSize sets the reachability memo capacity.
func WithMemoSize(n int) Option {
	return func(o *graphOptions) {
		o.memoSize = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *graphOptions) {
		o.logger = l
	}
}

// NewGraph creates an empty registry.
func NewGraph(opts ...Option) (*Graph, error) {
	o := graphOptions{memoSize: DefaultMemoSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	memo, err := lru.New(o.memoSize)
	if err != nil {
		return nil, fmt.Errorf("reachability memo: %w", err)
	}
	return &Graph{
		byName: make(map[string]*Environment),
		memo:   memo,
		logger: o.logger,
	}, nil
}

// Add creates and registers an environment.
func (g *Graph) Add(name, description string, rank Rank) (*Environment, error) {
	if _, ok := g.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	e := &Environment{Name: name, Description: description, Rank: rank, graph: g}
	g.envs = append(g.envs, e)
	g.byName[name] = e
	return e, nil
}

// Get returns the environment registered under name.
func (g *Graph) Get(name string) (*Environment, bool) {
	e, ok := g.byName[name]
	return e, ok
}

// All returns every registered environment in registration order.
func (g *Graph) All() []*Environment {
	out := make([]*Environment, len(g.envs))
	copy(out, g.envs)
	return out
}

// Link links a to b, logging a rejected link.
func (g *Graph) Link(a, b *Environment) error {
	if err := a.Link(b); err != nil {
		g.logger.Warn("environment link rejected", "from", a.Name, "to", b.Name, "error", err)
		return err
	}
	return nil
}

func (g *Graph) invalidate() {
	g.memo.Purge()
}

// Reachable returns the tradeables owned by e or by any environment reachable
// through its links, in depth-first order without duplicates. Link cycles are
// tolerated: each environment is visited once.
func (g *Graph) Reachable(e *Environment) []*market.Tradeable {
	if cached, ok := g.memo.Get(e); ok {
		return cached.([]*market.Tradeable)
	}

	var (
		out     []*market.Tradeable
		seen    = make(map[*market.Tradeable]struct{})
		visited = map[*Environment]struct{}{e: {}}
		stack   = []*Environment{e}
	)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, t := range cur.owned {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
		// Push in reverse so links are expanded in link order.
		for i := len(cur.links) - 1; i >= 0; i-- {
			next := cur.links[i]
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}

	g.memo.Add(e, out)
	return out
}

// Intersect returns the tradeables reachable from every member, ordered as
// reached from the first member. No members yields nil.
func (g *Graph) Intersect(members []*Environment) []*market.Tradeable {
	if len(members) == 0 {
		return nil
	}

	counts := make(map[*market.Tradeable]int)
	for _, m := range members {
		for _, t := range g.Reachable(m) {
			counts[t]++
		}
	}

	var out []*market.Tradeable
	for _, t := range g.Reachable(members[0]) {
		if counts[t] == len(members) {
			out = append(out, t)
		}
	}
	return out
}

// Influence records one price move caused by a group.
type Influence struct {
	Group     string  `json:"group"`
	Tradeable string  `json:"tradeable"`
	Percent   float64 `json:"percent"`
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
}

// ApplyInfluence moves every active tradeable in each group's intersection by
// uniform(bottom, top) percent in the group's direction. Both the market and
// the tradeable receive the new value.
func (g *Graph) ApplyInfluence(groups []*Group, m *market.Market, rng *random.Source) []Influence {
	var applied []Influence
	for _, grp := range groups {
		bottom, top := grp.Bounds()
		for _, t := range g.Intersect(grp.members) {
			cur, ok := m.Value(t)
			if !ok {
				continue
			}
			pct := rng.Float(bottom, top)
			next := cur + cur/100*pct*grp.Sign()
			m.SetValue(t, next)
			applied = append(applied, Influence{
				Group:     grp.Name,
				Tradeable: t.Name,
				Percent:   pct * grp.Sign(),
				Before:    cur,
				After:     next,
			})
		}
	}
	return applied
}
