package engine

import (
	"context"
	"fmt"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/progression"
	"github.com/roach88/bourse/internal/store"
)

// IterateActiveEvents applies every active event's group influence and
// consumes one of its rounds. Expired events release their quota and hand
// over to a successor, which starts with a freshly drawn lifetime. The
// expired event itself is dropped. A successor's one-time effects belong to
// admission and are not applied on hand-over. A successor that was already
// running keeps its freshly drawn lifetime untouched for the rest of the
// round, wherever it sits in the active list.
func (s *Simulation) IterateActiveEvents(ctx context.Context) ([]EventChange, []environment.Influence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iterateActiveEvents(ctx)
}

func (s *Simulation) iterateActiveEvents(ctx context.Context) ([]EventChange, []environment.Influence, error) {
	var (
		changes    []EventChange
		influences []environment.Influence
		next       = make([]*event.Event, 0, len(s.active))
		restarted  = make(map[*event.Event]bool)
	)

	for _, e := range s.active {
		influences = append(influences, s.Graph.ApplyInfluence(e.Groups, s.Market, s.rng)...)

		if restarted[e] {
			next = append(next, e)
			continue
		}
		if !e.Tick() {
			next = append(next, e)
			continue
		}

		s.quota.Release(e.Priority)
		changes = append(changes, EventChange{Event: e.Name, Priority: e.Priority.String(), Change: store.KindExpired})
		s.logger.Info("event finished", "event", e.Name, "priority", e.Priority)

		succ, ok, err := action.Resolve(ctx, &e.Action, s.rng, s.chooser)
		if err != nil {
			s.active = append(next, s.unvisited(e)...)
			return changes, influences, fmt.Errorf("resolve successor of %q: %w", e.Name, err)
		}
		if !ok {
			continue
		}

		if succ.State() == event.Active {
			// Already running: restart its lifetime, keep its single slot.
			succ.Start(s.rng)
			restarted[succ] = true
			changes = append(changes, EventChange{Event: succ.Name, Priority: succ.Priority.String(), Change: store.KindSuccessor, Remaining: succ.Remaining()})
			continue
		}

		rounds := succ.Start(s.rng)
		s.quota.Admit(succ.Priority)
		next = append(next, succ)
		changes = append(changes, EventChange{Event: succ.Name, Priority: succ.Priority.String(), Change: store.KindSuccessor, Remaining: rounds})
		s.logger.Info("event started", "event", succ.Name, "priority", succ.Priority, "rounds", rounds, "after", e.Name)
	}

	s.active = next
	return changes, influences, nil
}

// unvisited returns the events in s.active after e, for restoring the active
// list when a tick is aborted.
func (s *Simulation) unvisited(e *event.Event) []*event.Event {
	for i, a := range s.active {
		if a == e {
			return s.active[i+1:]
		}
	}
	return nil
}

// IterateMainEvents lets idle main events admit themselves. Nothing happens
// while the overall cap is reached. The pool is shuffled, then each idle
// event whose priority is not capped advances its pressure index and starts
// if the index is ready and the execution draw passes.
func (s *Simulation) IterateMainEvents() []EventChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iterateMainEvents()
}

func (s *Simulation) iterateMainEvents() []EventChange {
	if s.quota.Full() {
		return nil
	}

	s.rng.Shuffle(len(s.pool), func(i, j int) {
		s.pool[i], s.pool[j] = s.pool[j], s.pool[i]
	})

	var changes []EventChange
	for _, e := range s.pool {
		if e.State() == event.Active {
			continue
		}
		if s.quota.Blocked(e.Priority) {
			continue
		}

		e.Admission.UpdateIndex(s.rng, s.cfg.Events.SignNegativeBound)
		if !e.Admission.Fire(s.rng, s.cfg.Events.ExecutionRate) {
			continue
		}

		e.Admission.InitializeIndex(s.rng)
		rounds := e.Start(s.rng)
		e.ApplyEffects(s.Player)
		s.active = append(s.active, e)
		s.quota.Admit(e.Priority)

		changes = append(changes, EventChange{Event: e.Name, Priority: e.Priority.String(), Change: store.KindAdmitted, Remaining: rounds})
		s.logger.Info("event admitted", "event", e.Name, "priority", e.Priority, "rounds", rounds)
	}
	return changes
}

// IterateActiveLevels checks every active level's goal. A passed level
// confers its award, withdraws its content and is replaced by its successor.
// Without a successor the pack is finished: its content is withdrawn too and
// the next stage's pack supplies the start level. Award-stage levels without
// a successor simply retire. Running out of stages completes the campaign.
func (s *Simulation) IterateActiveLevels(ctx context.Context) ([]LevelChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iterateActiveLevels(ctx)
}

func (s *Simulation) iterateActiveLevels(ctx context.Context) ([]LevelChange, error) {
	var (
		changes []LevelChange
		next    = make([]*progression.Level, 0, len(s.levels))
	)

	for i, l := range s.levels {
		if !l.Passed(s.Player) {
			next = append(next, l)
			continue
		}

		l.Confer(s.Player)
		change := LevelChange{Passed: l.Name, Pack: packName(l.Pack)}
		s.logger.Info("level finished", "level", l.Name, "pack", change.Pack, "money", s.Player.Money)

		succ, ok, err := action.Resolve(ctx, &l.Action, s.rng, s.chooser)
		if err != nil {
			s.levels = append(next, s.levels[i:]...)
			return changes, fmt.Errorf("resolve successor of level %q: %w", l.Name, err)
		}

		s.deregisterLevel(l)

		if ok {
			s.registerLevel(succ)
			next = append(next, succ)
			change.Next, change.NextPack = succ.Name, packName(succ.Pack)
			changes = append(changes, change)
			continue
		}

		if l.Pack != nil {
			s.deregisterPack(l.Pack)
		}

		if l.Stage == progression.AwardStage {
			changes = append(changes, change)
			continue
		}

		pack, ok, err := s.Stages.NextStagePack(ctx)
		if err != nil {
			s.levels = append(next, s.levels[i+1:]...)
			return changes, fmt.Errorf("next level pack: %w", err)
		}
		var start *progression.Level
		if ok {
			start, ok, err = pack.StartLevel(ctx, s.rng, s.chooser)
			if err != nil {
				s.levels = append(next, s.levels[i+1:]...)
				return changes, fmt.Errorf("start level of %q: %w", pack.Name, err)
			}
		}
		if !ok {
			s.complete = true
			change.Complete = true
			changes = append(changes, change)
			s.logger.Info("campaign complete", "stage", s.Stages.Stage()-1)
			continue
		}

		s.registerPack(pack)
		s.registerLevel(start)
		next = append(next, start)
		change.Next, change.NextPack = start.Name, pack.Name
		changes = append(changes, change)
		s.logger.Info("level pack started", "pack", pack.Name, "stage", pack.Stage, "level", start.Name)
	}

	s.levels = next
	return changes, nil
}

func packName(p *progression.Pack) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// Round plays one full round and verifies the running counters afterwards.
// The whole round runs under the simulation lock. With a journal configured
// the round is recorded before Round returns.
func (s *Simulation) Round(ctx context.Context) (RoundReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return RoundReport{}, newNotStartedError()
	}
	if s.complete {
		return RoundReport{}, NewCampaignCompleteError(s.sessionID, s.clock.Current())
	}

	report := RoundReport{Round: s.clock.Next()}

	s.Market.SaveSnapshot()

	changes, influences, err := s.iterateActiveEvents(ctx)
	report.Events, report.Influences = changes, influences
	if err != nil {
		return report, err
	}

	report.Events = append(report.Events, s.iterateMainEvents()...)

	levels, err := s.iterateActiveLevels(ctx)
	report.Levels = levels
	if err != nil {
		return report, err
	}

	for _, t := range s.Market.UpdateUnchanged() {
		report.Walked = append(report.Walked, t.Name)
	}

	if err := s.quota.Verify(s.active, s.sessionID, report.Round); err != nil {
		return report, err
	}

	report.Quotes = s.Market.Quotes()
	report.Money = s.Player.Money
	report.Stage = s.Stages.Stage()
	report.Complete = s.complete

	if s.journal != nil {
		if err := s.journal.RecordRound(ctx, journalRound(s.sessionID, report)); err != nil {
			return report, err
		}
	}

	s.logger.Debug("round complete",
		"round", report.Round,
		"events", len(report.Events),
		"influences", len(report.Influences),
		"walked", len(report.Walked),
		"money", report.Money,
	)
	return report, nil
}
