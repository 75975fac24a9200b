package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/player"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	GameOptions
}

// SessionSummary is printed when a session ends.
type SessionSummary struct {
	Session  string  `json:"session"`
	Seed     int64   `json:"seed"`
	Rounds   int64   `json:"rounds"`
	Money    float64 `json:"money"`
	Stage    int     `json:"stage"`
	Complete bool    `json:"complete"`
}

func (s SessionSummary) String() string {
	status := "in progress"
	if s.Complete {
		status = "complete"
	}
	return fmt.Sprintf("Session %s: %d rounds, balance %.2f, stage %d, campaign %s (seed %d)",
		s.Session, s.Rounds, s.Money, s.Stage, status, s.Seed)
}

func summarize(sim *engine.Simulation) SessionSummary {
	return SessionSummary{
		Session:  sim.SessionID(),
		Seed:     sim.Seed(),
		Rounds:   sim.CurrentRound(),
		Money:    sim.Player.Money,
		Stage:    sim.Stages.Stage(),
		Complete: sim.Complete(),
	}
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play [content...]",
		Short: "Play an interactive session",
		Long: `Play the trading game in the terminal.

Each round, events move prices and the market drifts. Between rounds,
buy and sell shares of the listed tradeables to reach the level goals.
Type "help" at the prompt for the command list.

Content files or directories (.yaml, .yml, .cue) add environments,
tradeables, events and level packs on top of the built-in packs.

Example:
  bourse play
  bourse play --difficulty hard --db ./bourse.db
  bourse play ./content --seed 42`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Content = args
			return runPlay(opts, cmd)
		},
	}

	addGameFlags(cmd, &opts.GameOptions)
	return cmd
}

func addGameFlags(cmd *cobra.Command, g *GameOptions) {
	cmd.Flags().StringVar(&g.Difficulty, "difficulty", "", "easy, normal or hard")
	cmd.Flags().Int64Var(&g.Seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&g.Database, "db", "", "journal rounds to this SQLite database")
	cmd.Flags().BoolVar(&g.NoBuiltin, "no-builtin", false, "skip the built-in level packs")
	cmd.Flags().BoolVar(&g.Strict, "strict", false, "refuse to start when a content record is rejected")
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := newLogger(opts.RootOptions, cfg, cmd.ErrOrStderr())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())

	if opts.Difficulty == "" {
		d, err := chooseDifficulty(ctx, console, cfg)
		if err != nil {
			return WrapExitError(ExitCommandError, "no difficulty chosen", err)
		}
		opts.Difficulty = string(d)
	}

	game, err := openGame(ctx, opts.GameOptions, cfg, logger, console)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := game.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	sim := game.Sim
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting with %.2f%s.\n", sim.Player.Money, sim.Player.Currency)
	for _, l := range sim.Levels() {
		fmt.Fprintf(out, "Level %s: %s\n", l.Name, l.Description)
	}
	console.printQuotes(engine.RoundReport{Quotes: sim.Market.Quotes()}, sim.Player.Currency)
	fmt.Fprintln(out, `Type "help" for commands.`)

	err = playLoop(ctx, console, sim, out)
	formatter := newFormatter(cmd, opts.RootOptions)
	summary := summarize(sim)
	if err != nil {
		return WrapExitError(ExitFailure, "session aborted", err)
	}
	return formatter.SessionSuccess(summary.Session, summary)
}

func chooseDifficulty(ctx context.Context, chooser action.Chooser, cfg config.Config) (player.Difficulty, error) {
	levels := []player.Difficulty{player.Easy, player.Normal, player.Hard}
	money := []float64{cfg.Player.MoneyEasy, cfg.Player.MoneyNormal, cfg.Player.MoneyHard}

	options := make([]action.Option, len(levels))
	for i, d := range levels {
		options[i] = action.Option{
			Name:        string(d),
			Description: fmt.Sprintf("start with %.0f%s", money[i], cfg.Player.Currency),
		}
	}
	idx, err := chooser.Choose(ctx, "Choose a difficulty", options)
	if err != nil {
		return "", err
	}
	return levels[idx], nil
}

// playLoop reads commands until the player quits, input ends or the campaign
// is complete. Rejected trades are shown and the player is prompted again.
func playLoop(ctx context.Context, console *Console, sim *engine.Simulation, out io.Writer) error {
	currency := sim.Player.Currency
	for {
		command, err := console.ReadCommand(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		switch command.Kind {
		case CmdQuit:
			return nil

		case CmdHelp:
			fmt.Fprintln(out, helpText)

		case CmdInfo:
			console.PrintInfo(sim)

		case CmdFind:
			console.PrintMatches(command.Query, Find(sim, command.Query))

		case CmdBuy, CmdSell:
			var trade engine.Trade
			if command.Kind == CmdBuy {
				trade, err = sim.Buy(ctx, command.Index-1, command.Amount)
			} else {
				trade, err = sim.Sell(ctx, command.Index-1, command.Amount)
			}
			if err != nil {
				fmt.Fprintf(out, "Trade rejected: %v\n", err)
				continue
			}
			verb := "Bought"
			if command.Kind == CmdSell {
				verb = "Sold"
			}
			fmt.Fprintf(out, "%s %d %s at %.2f%s. Balance: %.2f%s\n",
				verb, trade.Amount, trade.Tradeable, trade.Price, currency, trade.Money, currency)
			if done := printLevels(out, trade.Levels); done {
				return nil
			}

		case CmdNext:
			report, err := sim.Round(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}
			console.PrintRound(report, currency)
			if report.Complete {
				return nil
			}
		}
	}
}

// printLevels writes level changes and reports whether the campaign ended.
func printLevels(out io.Writer, changes []engine.LevelChange) bool {
	done := false
	for _, l := range changes {
		fmt.Fprintf(out, "Level passed: %s\n", l.Passed)
		switch {
		case l.Next != "":
			fmt.Fprintf(out, "Next level: %s (%s)\n", l.Next, l.NextPack)
		case l.Complete:
			fmt.Fprintln(out, "Campaign complete!")
			done = true
		}
	}
	return done
}
