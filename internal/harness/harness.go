package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/bourse/internal/content"
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/packs"
	"github.com/roach88/bourse/internal/player"
	"github.com/roach88/bourse/internal/store"
	"github.com/roach88/bourse/internal/testutil"
)

// Harness is one scenario execution.
type Harness struct {
	store   *store.Store
	sim     *engine.Simulation
	clock   *testutil.DeterministicClock
	chooser *testutil.ScriptedChooser
	logger  *slog.Logger
}

// Option configures a run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger routes simulation logs to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal. Execution flow:
//  1. Build the simulation from the scenario's seed, session and config
//  2. Load content and built-in packs, then start the session
//  3. Execute steps in order
//  4. Check the journal against the played rounds
//  5. Evaluate assertions
//
// The returned error is reserved for setup failures. Failed steps and
// assertions are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	session := scenario.Session
	if session == "" {
		session = DefaultSession
	}

	chooser := testutil.NewScriptedChooser(scenario.Choices...)
	sim, err := engine.New(scenario.Config,
		engine.WithSeed(scenario.Seed),
		engine.WithChooser(chooser),
		engine.WithLogger(o.logger),
		engine.WithJournal(st),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(session)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}

	h := &Harness{
		store:   st,
		sim:     sim,
		clock:   testutil.NewDeterministicClock(),
		chooser: chooser,
		logger:  o.logger,
	}

	ctx := context.Background()
	if err := h.setup(ctx, scenario); err != nil {
		return nil, err
	}

	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)

	result.Final = FinalState{
		Money:    sim.Player.Money,
		Stage:    sim.Stages.Stage(),
		Complete: sim.Complete(),
		Quotes:   sim.Market.Quotes(),
	}

	if err := h.checkJournal(ctx, result); err != nil {
		result.AddError(err.Error())
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) setup(ctx context.Context, scenario *Scenario) error {
	var factories []engine.PackFactory
	if scenario.Builtin {
		factories = append(factories, packs.Builtin()...)
	}

	if len(scenario.Content) > 0 {
		loader := content.NewLoader(content.WithLogger(h.logger))
		c, skipped, err := loader.Load(scenario.Content...)
		if err != nil {
			return fmt.Errorf("failed to load content: %w", err)
		}
		inst, errs := loader.Install(c, h.sim)
		if all := append(skipped, errs...); len(all) > 0 {
			return fmt.Errorf("content has %d invalid records: %w", len(all), errors.Join(all...))
		}
		factories = append(factories, inst.Packs...)
	}

	if n := h.sim.LoadPacks(factories...); n != len(factories) {
		return fmt.Errorf("only %d of %d level packs loaded", n, len(factories))
	}

	difficulty, err := player.ParseDifficulty(scenario.Difficulty)
	if err != nil {
		return err
	}
	if err := h.sim.Start(ctx, difficulty); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

// executeSteps runs every step. A failing step is recorded and the run
// continues with the next one.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		trace := StepTrace{Seq: h.clock.Next()}
		if err := h.executeStep(ctx, step, &trace); err != nil {
			trace.Error = err.Error()
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		}
		result.Trace = append(result.Trace, trace)

		h.logger.Info("scenario step completed",
			"step", i,
			"seq", trace.Seq,
			"rounds", len(trace.Rounds),
			"error", trace.Error,
		)
	}
}

func (h *Harness) executeStep(ctx context.Context, step Step, trace *StepTrace) error {
	switch {
	case step.Rounds > 0:
		for i := 0; i < step.Rounds && !h.sim.Complete(); i++ {
			report, err := h.sim.Round(ctx)
			if err != nil {
				return err
			}
			trace.Rounds = append(trace.Rounds, report)
		}
		return nil

	case step.Buy != nil:
		return h.trade(ctx, step.Buy, true, trace)

	case step.Sell != nil:
		return h.trade(ctx, step.Sell, false, trace)

	case step.SetMoney != nil:
		h.sim.Player.Money = *step.SetMoney
		return nil

	case step.CheckLevels:
		levels, err := h.sim.CheckLevels(ctx)
		trace.Levels = levels
		return err
	}
	return fmt.Errorf("empty step")
}

func (h *Harness) trade(ctx context.Context, t *TradeStep, buy bool, trace *StepTrace) error {
	var (
		res engine.Trade
		err error
	)
	if buy {
		res, err = h.sim.Buy(ctx, t.Index-1, t.Amount)
	} else {
		res, err = h.sim.Sell(ctx, t.Index-1, t.Amount)
	}

	switch {
	case err == nil && t.ExpectError != "":
		return fmt.Errorf("trade succeeded, expected error containing %q", t.ExpectError)
	case err == nil:
		trace.Trade = &res
		return nil
	case t.ExpectError != "" && strings.Contains(err.Error(), t.ExpectError):
		trace.Error = err.Error()
		return nil
	default:
		return err
	}
}

// checkJournal verifies that the journal recorded exactly the played rounds.
func (h *Harness) checkJournal(ctx context.Context, result *Result) error {
	state, err := h.store.GetSessionState(ctx, h.sim.SessionID())
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	rounds := result.Rounds()
	if state.Rounds != len(rounds) {
		return fmt.Errorf("journal: recorded %d rounds, played %d", state.Rounds, len(rounds))
	}
	if len(rounds) > 0 && state.FinalMoney != rounds[len(rounds)-1].Money {
		return fmt.Errorf("journal: final money %g, last round reported %g", state.FinalMoney, rounds[len(rounds)-1].Money)
	}
	return nil
}
