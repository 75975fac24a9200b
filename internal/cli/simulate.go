package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/market"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	GameOptions
	Rounds int
}

// SimulateResult is the outcome of a headless run.
type SimulateResult struct {
	SessionSummary
	Quotes  []market.Quote       `json:"quotes"`
	Reports []engine.RoundReport `json:"reports"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate [content...]",
		Short: "Play rounds without a player",
		Long: `Play a number of rounds without trading.

Interactive successor choices are resolved at random. Use --seed to
reproduce a run and --db to journal it for the trace command.

Exit codes:
  0 - All rounds played
  1 - Runtime error (counter drift, content rejected with --strict)
  2 - Command error (no level pack, bad config, invalid paths)

Example:
  bourse simulate --rounds 50 --seed 7
  bourse simulate ./content --db ./bourse.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Content = args
			return runSimulate(opts, cmd)
		},
	}

	addGameFlags(cmd, &opts.GameOptions)
	cmd.Flags().IntVarP(&opts.Rounds, "rounds", "n", 20, "number of rounds to play")
	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	if opts.Rounds < 1 {
		return NewExitError(ExitCommandError, "--rounds must be at least 1")
	}
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := newLogger(opts.RootOptions, cfg, cmd.ErrOrStderr())
	ctx := cmd.Context()

	game, err := openGame(ctx, opts.GameOptions, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := game.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	sim := game.Sim
	result := SimulateResult{Reports: make([]engine.RoundReport, 0, opts.Rounds)}
	for i := 0; i < opts.Rounds && !sim.Complete(); i++ {
		report, err := sim.Round(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("round %d failed", sim.CurrentRound()), err)
		}
		result.Reports = append(result.Reports, report)
	}
	result.SessionSummary = summarize(sim)
	result.Quotes = sim.Market.Quotes()

	formatter := newFormatter(cmd, opts.RootOptions)
	if opts.Format == "json" {
		return formatter.SessionSuccess(result.Session, result)
	}
	writeSimulateText(cmd.OutOrStdout(), result, sim.Player.Currency)
	return nil
}

func writeSimulateText(w io.Writer, result SimulateResult, currency string) {
	for _, r := range result.Reports {
		fmt.Fprintf(w, "round %3d  stage %d  balance %.2f%s", r.Round, r.Stage, r.Money, currency)
		for _, e := range r.Events {
			fmt.Fprintf(w, "  [%s %s]", e.Change, e.Event)
		}
		for _, l := range r.Levels {
			fmt.Fprintf(w, "  [passed %s]", l.Passed)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Final quotes:")
	for i, q := range result.Quotes {
		fmt.Fprintf(w, "  %d) %-20s %8.2f%s  %4d shares\n", i+1, q.Name, q.Value, currency, q.Shares)
	}
	fmt.Fprintln(w, result.SessionSummary)
}
