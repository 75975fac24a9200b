package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/content"
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/packs"
	"github.com/roach88/bourse/internal/player"
	"github.com/roach88/bourse/internal/store"
)

// LoadMode controls how rejected content records are handled.
type LoadMode int

const (
	// LoadModeSkip logs rejected records and plays without them.
	LoadModeSkip LoadMode = iota
	// LoadModeStrict refuses to start when any record is rejected.
	LoadModeStrict
)

// GameOptions are the flags shared by play and simulate.
type GameOptions struct {
	Content    []string
	NoBuiltin  bool
	Seed       int64
	Difficulty string
	Database   string
	Strict     bool

	// SessionGenerator overrides the session ID generator (for testing).
	// If nil, sessions get UUIDv7 IDs.
	SessionGenerator engine.SessionIDGenerator
}

// Game is a started simulation plus the resources it holds.
type Game struct {
	Sim      *engine.Simulation
	Journal  *store.Store // nil without --db
	Counts   content.Counts
	Rejected []error
}

// Close releases the journal.
func (g *Game) Close() error {
	if g.Journal == nil {
		return nil
	}
	return g.Journal.Close()
}

// openGame builds a simulation from the built-in packs and content files and
// starts the session. Errors are ExitErrors.
func openGame(ctx context.Context, gopts GameOptions, cfg config.Config, logger *slog.Logger, chooser action.Chooser) (*Game, error) {
	difficulty, err := player.ParseDifficulty(gopts.Difficulty)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid difficulty", err)
	}

	game := &Game{}
	simOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithChooser(chooser),
	}
	if gopts.Seed != 0 {
		simOpts = append(simOpts, engine.WithSeed(gopts.Seed))
	}
	if gopts.SessionGenerator != nil {
		simOpts = append(simOpts, engine.WithSessionGenerator(gopts.SessionGenerator))
	}
	if gopts.Database != "" {
		st, err := store.Open(gopts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		game.Journal = st
		simOpts = append(simOpts, engine.WithJournal(st))
	}

	sim, err := engine.New(cfg, simOpts...)
	if err != nil {
		game.Close()
		return nil, WrapExitError(ExitFailure, "failed to create simulation", err)
	}
	game.Sim = sim

	mode := LoadModeSkip
	if gopts.Strict {
		mode = LoadModeStrict
	}
	factories, err := game.loadContent(gopts, mode, logger)
	if err != nil {
		game.Close()
		return nil, err
	}
	if !gopts.NoBuiltin {
		factories = append(packs.Builtin(), factories...)
	}

	loaded := sim.LoadPacks(factories...)
	logger.Debug("level packs loaded", "loaded", loaded, "offered", len(factories))

	if err := sim.Start(ctx, difficulty); err != nil {
		game.Close()
		if engine.IsNoLevelPacks(err) {
			return nil, WrapExitError(ExitCommandError, "no level pack to start with", err)
		}
		return nil, WrapExitError(ExitFailure, "failed to start session", err)
	}
	return game, nil
}

func (g *Game) loadContent(gopts GameOptions, mode LoadMode, logger *slog.Logger) ([]engine.PackFactory, error) {
	if len(gopts.Content) == 0 {
		return nil, nil
	}
	for _, p := range gopts.Content {
		if _, err := os.Stat(p); err != nil {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("content not found: %s", p))
		}
	}

	loader := content.NewLoader(content.WithLogger(logger))
	c, rejected, err := loader.Load(gopts.Content...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load content", err)
	}
	inst, errs := loader.Install(c, g.Sim)
	rejected = append(rejected, errs...)

	g.Counts = inst.Counts
	g.Rejected = rejected
	if len(rejected) > 0 && mode == LoadModeStrict {
		return nil, WrapExitError(ExitFailure,
			fmt.Sprintf("%d content records rejected", len(rejected)), errors.Join(rejected...))
	}
	for _, err := range rejected {
		logger.Warn("content record skipped", "error", err)
	}
	return inst.Packs, nil
}
