package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/player"
	"github.com/roach88/bourse/internal/progression"
	"github.com/roach88/bourse/internal/random"
	"github.com/roach88/bourse/internal/store"
)

// PackFactory builds one level pack against a simulation. Factories create
// their environments in sim.Graph and their tradeables with sim.Market so
// that content is shared by name across packs.
type PackFactory func(sim *Simulation) (*progression.Pack, error)

// Simulation is the session context.
//
// Thread-safety model:
//   - Round, Buy, Sell and CheckLevels take the simulation lock
//   - Read accessors take the lock and return copies
//   - Setup (LoadPacks, Start) must finish before rounds begin
//
// INVARIANTS:
//   - an event is in active iff its State is event.Active
//   - quota counters equal the number of active events per priority
//   - pool holds main events only, each at most once
type Simulation struct {
	mu sync.Mutex

	cfg        config.Config
	seed       int64
	rng        *random.Source
	chooser    action.Chooser
	logger     *slog.Logger
	journal    *store.Store
	sessionGen SessionIDGenerator
	sessionID  string
	difficulty player.Difficulty

	Market *market.Market
	Graph  *environment.Graph
	Player *player.Player
	Stages *progression.Registry

	pool   []*event.Event
	active []*event.Event
	levels []*progression.Level
	quota  *PriorityQuota
	clock  *Clock

	started  bool
	complete bool
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed fixes the random source. Overrides config.Seed.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.seed = seed
	}
}

// WithChooser sets who answers option prompts. Without one every choice is
// random.
func WithChooser(c action.Chooser) Option {
	return func(s *Simulation) {
		s.chooser = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithJournal records every round to st.
func WithJournal(st *store.Store) Option {
	return func(s *Simulation) {
		s.journal = st
	}
}

// WithSessionGenerator sets the session ID source.
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionIDGenerator) Option {
	return func(s *Simulation) {
		s.sessionGen = g
	}
}

// New creates a simulation with empty registries.
//
// The seed comes from WithSeed, else cfg.Seed, else a fresh random seed.
func New(cfg config.Config, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		cfg:        cfg,
		seed:       cfg.Seed,
		logger:     slog.Default(),
		sessionGen: UUIDv7Generator{},
		quota:      NewPriorityQuota(cfg.Events),
		clock:      NewClock(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.seed == 0 {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		s.seed = seed
	}
	s.rng = random.New(s.seed)

	graph, err := environment.NewGraph(environment.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.Graph = graph
	s.Market = market.New(cfg.Market, s.rng, market.WithLogger(s.logger))
	s.Player = player.New(cfg.Player)
	s.Stages = progression.NewRegistry(cfg.Progression, s.rng,
		progression.WithChooser(s.chooser),
		progression.WithLogger(s.logger),
	)
	return s, nil
}

// Seed returns the seed of the random source.
func (s *Simulation) Seed() int64 {
	return s.seed
}

// Rand returns the session's random source, for content that draws at build
// time.
func (s *Simulation) Rand() *random.Source {
	return s.rng
}

// Config returns the tunables the simulation was built with.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// SessionID returns the ID assigned by Start.
func (s *Simulation) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// LoadPacks builds and registers every pack. A factory or registration
// failure is logged and the pack skipped. Returns the number of packs
// registered.
func (s *Simulation) LoadPacks(factories ...PackFactory) int {
	loaded := 0
	for i, build := range factories {
		pack, err := build(s)
		if err != nil {
			s.logger.Warn("level pack skipped", "factory", i, "error", err)
			continue
		}
		added, err := s.Stages.Register(pack)
		if err != nil {
			s.logger.Warn("level pack skipped", "pack", pack.Name, "error", err)
			continue
		}
		if added {
			loaded++
			s.logger.Info("level pack loaded", "pack", pack.Name, "stage", pack.Stage)
		}
	}
	return loaded
}

// Start funds the player, activates every award pack and the campaign's
// first pack, and opens the journal session. It fails with NO_LEVEL_PACKS if
// the first campaign stage has nothing to play.
func (s *Simulation) Start(ctx context.Context, difficulty player.Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	stage := s.Stages.Stage()
	pack, ok, err := s.Stages.ChoosePack(ctx, stage)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if !ok {
		return NewNoLevelPacksError(stage)
	}
	first, ok, err := pack.StartLevel(ctx, s.rng, s.chooser)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if !ok {
		return NewNoLevelPacksError(stage)
	}

	s.difficulty = difficulty
	s.Player.SetDifficulty(s.cfg.Player, difficulty)

	for _, award := range s.Stages.AwardPacks() {
		level, ok, err := award.StartLevel(ctx, s.rng, s.chooser)
		if err != nil {
			return fmt.Errorf("start award pack %q: %w", award.Name, err)
		}
		if !ok {
			continue
		}
		s.registerPack(award)
		s.registerLevel(level)
		s.levels = append(s.levels, level)
	}

	s.registerPack(pack)
	s.registerLevel(first)
	s.levels = append(s.levels, first)

	s.sessionID = s.sessionGen.Generate()
	if s.journal != nil {
		err := s.journal.BeginSession(ctx, store.Session{
			ID:         s.sessionID,
			Seed:       s.seed,
			Difficulty: string(difficulty),
			StartPack:  pack.Name,
		})
		if err != nil {
			return err
		}
	}

	s.started = true
	s.logger.Info("session started",
		"session", s.sessionID,
		"seed", s.seed,
		"difficulty", difficulty,
		"pack", pack.Name,
		"level", first.Name,
	)
	return nil
}

// RegisterEvent adds a main event to the pool and draws its pressure index.
// Events without admission data only run as successors and are not pooled.
// Returns false if e was not added.
func (s *Simulation) RegisterEvent(e *event.Event) bool {
	if !e.IsMain() || slices.Contains(s.pool, e) {
		return false
	}
	e.Admission.InitializeIndex(s.rng)
	s.pool = append(s.pool, e)
	return true
}

// DeregisterEvent removes e from the pool. A running event keeps running.
func (s *Simulation) DeregisterEvent(e *event.Event) bool {
	i := slices.Index(s.pool, e)
	if i < 0 {
		return false
	}
	s.pool = slices.Delete(s.pool, i, i+1)
	return true
}

func (s *Simulation) registerContent(events []*event.Event, tradeables []*market.Tradeable) {
	for _, e := range events {
		s.RegisterEvent(e)
	}
	for _, t := range tradeables {
		s.Market.Activate(t)
	}
}

func (s *Simulation) deregisterContent(events []*event.Event, tradeables []*market.Tradeable) {
	for _, e := range events {
		s.DeregisterEvent(e)
	}
	for _, t := range tradeables {
		s.Market.Deactivate(t)
	}
}

func (s *Simulation) registerPack(p *progression.Pack) {
	s.registerContent(p.Events, p.Tradeables)
}

func (s *Simulation) deregisterPack(p *progression.Pack) {
	s.deregisterContent(p.Events, p.Tradeables)
}

func (s *Simulation) registerLevel(l *progression.Level) {
	s.registerContent(l.Events, l.Tradeables)
}

func (s *Simulation) deregisterLevel(l *progression.Level) {
	s.deregisterContent(l.Events, l.Tradeables)
}

// Pool returns the main events waiting for admission, in pool order.
func (s *Simulation) Pool() []*event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pool)
}

// ActiveEvents returns the running events in activation order.
func (s *Simulation) ActiveEvents() []*event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.active)
}

// Levels returns the active levels.
func (s *Simulation) Levels() []*progression.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.levels)
}

// Running returns the running-event counter for p.
func (s *Simulation) Running(p event.Priority) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quota.Running(p)
}

// Complete reports whether the campaign has ended.
func (s *Simulation) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// CurrentRound returns the number of the last played round.
func (s *Simulation) CurrentRound() int64 {
	return s.clock.Current()
}
