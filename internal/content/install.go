package content

import (
	"fmt"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/player"
	"github.com/roach88/bourse/internal/progression"
)

// Counts are the objects an Install created.
type Counts struct {
	Environments int `json:"environments"`
	Links        int `json:"links"`
	Tradeables   int `json:"tradeables"`
	Events       int `json:"events"`
	Packs        int `json:"packs"`
	Levels       int `json:"levels"`
	Skipped      int `json:"skipped"`
}

// Installation is the result of installing content into a simulation.
type Installation struct {
	Counts Counts
	// Packs has one factory per installed pack, for Simulation.LoadPacks.
	Packs []engine.PackFactory
}

// Install creates c's environments, tradeables and events inside sim and
// builds its packs. Records that reference unknown names are skipped and
// returned as *RecordError. A dangling event successor only drops that link.
func (ld *Loader) Install(c *Content, sim *engine.Simulation) (*Installation, []error) {
	in := &installer{
		ld:      ld,
		c:       c,
		sim:     sim,
		byName:  make(map[string]*event.Event),
		envOK:   make(map[int]bool),
		eventOK: make(map[int]bool),
	}
	in.environments()
	in.links()
	in.tradeables()
	in.events()
	in.successors()
	in.packs()
	in.result.Counts.Skipped = len(in.errs)
	return &in.result, in.errs
}

// installer carries one Install. envOK and eventOK mark the records that
// were created, so duplicates do not apply their links or successors.
type installer struct {
	ld      *Loader
	c       *Content
	sim     *engine.Simulation
	byName  map[string]*event.Event
	envOK   map[int]bool
	eventOK map[int]bool
	result  Installation
	errs    []error
}

func (in *installer) skip(err *RecordError) {
	in.ld.logger.Warn("content record skipped", "file", err.File, "kind", err.Kind, "name", err.Name, "error", err.Err)
	in.errs = append(in.errs, err)
}

func (in *installer) environments() {
	for i, r := range in.c.Environments {
		src := in.c.source(KindEnvironment, i)
		rank, err := environment.ParseRank(r.Rank)
		if err != nil {
			in.skip(src.errorf(KindEnvironment, r.Name, "%v", err))
			continue
		}
		if _, err := in.sim.Graph.Add(r.Name, r.Description, rank); err != nil {
			in.skip(src.errorf(KindEnvironment, r.Name, "%v", err))
			continue
		}
		in.envOK[i] = true
		in.result.Counts.Environments++
	}
}

func (in *installer) links() {
	for i, r := range in.c.Environments {
		if !in.envOK[i] {
			continue
		}
		src := in.c.source(KindEnvironment, i)
		from, _ := in.sim.Graph.Get(r.Name)
		for _, name := range r.Links {
			to, ok := in.sim.Graph.Get(name)
			if !ok {
				in.skip(src.errorf(KindEnvironment, r.Name, "link to unknown environment %q", name))
				continue
			}
			if err := in.sim.Graph.Link(from, to); err != nil {
				in.skip(src.errorf(KindEnvironment, r.Name, "%w", err))
				continue
			}
			in.result.Counts.Links++
		}
	}
}

func (in *installer) tradeables() {
	for i, r := range in.c.Tradeables {
		src := in.c.source(KindTradeable, i)
		if _, ok := in.sim.Market.Find(r.Name); ok {
			in.skip(src.errorf(KindTradeable, r.Name, "duplicate tradeable"))
			continue
		}
		owners, err := in.lookupEnvironments(r.Owners)
		if err != nil {
			in.skip(src.errorf(KindTradeable, r.Name, "owner: %w", err))
			continue
		}

		t := &market.Tradeable{
			Name:            r.Name,
			Description:     r.Description,
			InitBottom:      r.Value.Bottom,
			InitTop:         r.Value.Top,
			InfluenceBottom: r.Influence.Bottom,
			InfluenceTop:    r.Influence.Top,
			MinShares:       r.Shares.Bottom,
			MaxShares:       r.Shares.Top,
		}
		for _, env := range owners {
			env.Own(t)
		}
		in.sim.Market.Register(t)
		in.result.Counts.Tradeables++
	}
}

func (in *installer) lookupEnvironments(names []string) ([]*environment.Environment, error) {
	out := make([]*environment.Environment, 0, len(names))
	for _, name := range names {
		env, ok := in.sim.Graph.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown environment %q", name)
		}
		out = append(out, env)
	}
	return out, nil
}

func (in *installer) events() {
	for i, r := range in.c.Events {
		src := in.c.source(KindEvent, i)
		if _, ok := in.byName[r.Name]; ok {
			in.skip(src.errorf(KindEvent, r.Name, "duplicate event"))
			continue
		}
		e, err := in.buildEvent(r)
		if err != nil {
			in.skip(src.errorf(KindEvent, r.Name, "%w", err))
			continue
		}
		in.byName[r.Name] = e
		in.eventOK[i] = true
		in.result.Counts.Events++
	}
}

func (in *installer) buildEvent(r EventRecord) (*event.Event, error) {
	priority, err := event.ParsePriority(r.Priority)
	if err != nil {
		return nil, err
	}

	e := event.New(r.Name, r.Description, priority)
	e.HasOptions = r.HasOptions
	e.RoundsBottom, e.RoundsTop = r.Rounds.Bottom, r.Rounds.Top

	if a := r.Admission; a != nil {
		e.Admission = &event.Admission{
			InitBottom: a.Init.Bottom,
			InitTop:    a.Init.Top,
			Ceiling:    a.Ceiling,
			Threshold:  a.Threshold,
			StepBottom: a.Step.Bottom,
			StepTop:    a.Step.Top,
		}
	}

	for _, g := range r.Groups {
		members, err := in.lookupEnvironments(g.Members)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
		e.Groups = append(e.Groups, environment.NewGroup(g.Name, g.Percent.Bottom, g.Percent.Top, g.Positive, members...))
	}

	for tag, delta := range r.Effects {
		target, err := player.ParseTarget(tag)
		if err != nil {
			return nil, err
		}
		e.Effects[target] = delta
	}
	return e, nil
}

func (in *installer) successors() {
	for i, r := range in.c.Events {
		if !in.eventOK[i] {
			continue
		}
		e := in.byName[r.Name]
		for _, name := range r.Successors {
			succ, ok := in.byName[name]
			if !ok {
				src := in.c.source(KindEvent, i)
				in.skip(src.errorf(KindEvent, r.Name, "unknown successor %q", name))
				continue
			}
			e.AddSuccessor(succ)
		}
	}
}

func (in *installer) packs() {
	for i, r := range in.c.Packs {
		src := in.c.source(KindPack, i)
		pack, levels, err := in.buildPack(r)
		if err != nil {
			in.skip(src.errorf(KindPack, r.Name, "%w", err))
			continue
		}
		in.result.Packs = append(in.result.Packs, func(*engine.Simulation) (*progression.Pack, error) {
			return pack, nil
		})
		in.result.Counts.Packs++
		in.result.Counts.Levels += levels
	}
}

func (in *installer) buildPack(r PackRecord) (*progression.Pack, int, error) {
	pack := progression.NewPack(r.Name, r.Stage)
	pack.Description = r.Description
	pack.Nation = r.Nation
	pack.HasOption = r.HasOption

	var err error
	if pack.Events, err = in.lookupEvents(r.Events); err != nil {
		return nil, 0, err
	}
	if pack.Tradeables, err = in.lookupTradeables(r.Tradeables); err != nil {
		return nil, 0, err
	}

	levels := make(map[string]*progression.Level, len(r.Levels))
	for _, lr := range r.Levels {
		if _, ok := levels[lr.Name]; ok {
			return nil, 0, fmt.Errorf("duplicate level %q", lr.Name)
		}
		l, err := in.buildLevel(lr)
		if err != nil {
			return nil, 0, fmt.Errorf("level %q: %w", lr.Name, err)
		}
		levels[lr.Name] = l
	}

	for _, lr := range r.Levels {
		for _, name := range lr.Successors {
			succ, ok := levels[name]
			if !ok {
				return nil, 0, fmt.Errorf("level %q: unknown successor %q", lr.Name, name)
			}
			levels[lr.Name].AddSuccessor(succ)
		}
	}

	for _, name := range r.FirstLevels {
		l, ok := levels[name]
		if !ok {
			return nil, 0, fmt.Errorf("unknown first level %q", name)
		}
		pack.AddFirstLevel(l)
	}
	return pack, len(levels), nil
}

func (in *installer) buildLevel(r LevelRecord) (*progression.Level, error) {
	var goal progression.Goal
	if r.Goal.MoneyAtLeast != nil {
		goal = progression.MoneyAtLeast(*r.Goal.MoneyAtLeast)
	}
	var award progression.Award
	if r.Award.Money != 0 {
		award = progression.Money(r.Award.Money)
	}

	l := progression.NewLevel(r.Name, r.Description, goal, award)
	l.HasOptions = r.HasOptions

	var err error
	if l.Events, err = in.lookupEvents(r.Events); err != nil {
		return nil, err
	}
	if l.Tradeables, err = in.lookupTradeables(r.Tradeables); err != nil {
		return nil, err
	}
	return l, nil
}

func (in *installer) lookupEvents(names []string) ([]*event.Event, error) {
	out := make([]*event.Event, 0, len(names))
	for _, name := range names {
		e, ok := in.byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown event %q", name)
		}
		out = append(out, e)
	}
	return out, nil
}

func (in *installer) lookupTradeables(names []string) ([]*market.Tradeable, error) {
	out := make([]*market.Tradeable, 0, len(names))
	for _, name := range names {
		t, ok := in.sim.Market.Find(name)
		if !ok {
			return nil, fmt.Errorf("unknown tradeable %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}
