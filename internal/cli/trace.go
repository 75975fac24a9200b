package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bourse/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	Session   string
	Tradeable string // optional - price history of one tradeable
}

// TraceRound is one journaled round in the timeline.
type TraceRound struct {
	Round    int64        `json:"round"`
	Money    float64      `json:"money"`
	Stage    int          `json:"stage"`
	Complete bool         `json:"complete,omitempty"`
	Values   []TraceValue `json:"values"`
	Entries  []TraceEntry `json:"entries,omitempty"`
}

// TraceValue is a tradeable's state at the end of a round.
type TraceValue struct {
	Tradeable string  `json:"tradeable"`
	Value     float64 `json:"value"`
	Shares    int     `json:"shares"`
}

// TraceEntry is one thing that happened during a round.
type TraceEntry struct {
	Kind    string  `json:"kind"`
	Subject string  `json:"subject"`
	Detail  string  `json:"detail,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
}

// TraceResult holds the complete trace output of a session.
type TraceResult struct {
	Session  TraceSession `json:"session"`
	Timeline []TraceRound `json:"timeline"`
	History  []float64    `json:"history,omitempty"`
	Stats    TraceStats   `json:"stats"`
}

// TraceSession identifies the traced session.
type TraceSession struct {
	ID         string `json:"id"`
	Seed       int64  `json:"seed"`
	Difficulty string `json:"difficulty"`
	StartPack  string `json:"start_pack"`
}

// TraceStats holds summary statistics for the session.
type TraceStats struct {
	Rounds     int     `json:"rounds"`
	Admitted   int     `json:"admitted"`
	Successors int     `json:"successors"`
	Influences int     `json:"influences"`
	LevelsPast int     `json:"levels_passed"`
	FinalMoney float64 `json:"final_money"`
	FinalStage int     `json:"final_stage"`
	IsComplete bool    `json:"is_complete"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journal of a session",
		Long: `Read a session back from a round journal written with --db.

Without --session, lists the journaled sessions. With --session, shows
every round: events started and ended, price influences, market drift,
passed levels and the closing quotes.

Examples:
  bourse trace --db ./bourse.db
  bourse trace --db ./bourse.db --session 0190c0de-...
  bourse trace --db ./bourse.db --session 0190c0de-... --tradeable Lemons
  bourse trace --db ./bourse.db --session 0190c0de-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID to trace")
	cmd.Flags().StringVar(&opts.Tradeable, "tradeable", "", "include the value history of this tradeable")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(cmd, opts.RootOptions)

	// store.Open would create a missing database.
	if _, err := os.Stat(opts.Database); err != nil {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, formatter)
	}

	result, err := buildTrace(ctx, st, opts.Session, opts.Tradeable)
	if errors.Is(err, store.ErrSessionNotFound) {
		formatter.Error(ErrCodeSession, fmt.Sprintf("no session %q in journal", opts.Session), nil)
		return WrapExitError(ExitCommandError, "unknown session", err)
	}
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if opts.Format == "json" {
		return formatter.SessionSuccess(result.Session.ID, result)
	}
	writeTraceText(formatter.Writer, result, opts.Tradeable)
	return nil
}

func listSessions(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	sessions, err := st.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	out := make([]TraceSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, TraceSession{ID: s.ID, Seed: s.Seed, Difficulty: s.Difficulty, StartPack: s.StartPack})
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	if len(out) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions journaled.")
		return nil
	}
	for _, s := range out {
		fmt.Fprintf(formatter.Writer, "%s  seed=%d  difficulty=%s  pack=%s\n", s.ID, s.Seed, s.Difficulty, s.StartPack)
	}
	return nil
}

// buildTrace reads one session's rounds and summary.
func buildTrace(ctx context.Context, st *store.Store, sessionID, tradeable string) (*TraceResult, error) {
	state, err := st.GetSessionState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rounds, err := st.ReadRounds(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s := state.Session
	result := &TraceResult{
		Session:  TraceSession{ID: s.ID, Seed: s.Seed, Difficulty: s.Difficulty, StartPack: s.StartPack},
		Timeline: make([]TraceRound, 0, len(rounds)),
		Stats: TraceStats{
			Rounds:     state.Rounds,
			FinalMoney: state.FinalMoney,
			FinalStage: state.Stage,
			IsComplete: state.IsComplete,
		},
	}

	for _, r := range rounds {
		tr := TraceRound{Round: r.Number, Money: r.Money, Stage: r.Stage, Complete: r.Complete, Values: []TraceValue{}}
		for _, v := range r.Values {
			tr.Values = append(tr.Values, TraceValue{Tradeable: v.Tradeable, Value: v.Value, Shares: v.Shares})
		}
		for _, e := range r.Entries {
			tr.Entries = append(tr.Entries, TraceEntry{Kind: e.Kind, Subject: e.Subject, Detail: e.Detail, Amount: e.Amount})
			switch e.Kind {
			case store.KindAdmitted:
				result.Stats.Admitted++
			case store.KindSuccessor:
				result.Stats.Successors++
			case store.KindInfluence:
				result.Stats.Influences++
			case store.KindLevelPassed:
				result.Stats.LevelsPast++
			}
		}
		result.Timeline = append(result.Timeline, tr)
	}

	if tradeable != "" {
		result.History, err = st.ValueHistory(ctx, sessionID, tradeable)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func writeTraceText(w io.Writer, result *TraceResult, tradeable string) {
	s := result.Session
	fmt.Fprintf(w, "Session: %s (seed %d, %s, starting pack %s)\n", s.ID, s.Seed, s.Difficulty, s.StartPack)
	fmt.Fprintln(w, "Timeline:")

	for _, r := range result.Timeline {
		fmt.Fprintf(w, "  round %d: balance %.2f, stage %d\n", r.Round, r.Money, r.Stage)
		for _, e := range r.Entries {
			switch e.Kind {
			case store.KindInfluence:
				fmt.Fprintf(w, "    %-17s %s by %s (%+.2f)\n", e.Kind, e.Subject, e.Detail, e.Amount)
			case store.KindWalk:
				fmt.Fprintf(w, "    %-17s %s\n", e.Kind, e.Subject)
			default:
				if e.Detail != "" {
					fmt.Fprintf(w, "    %-17s %s (%s)\n", e.Kind, e.Subject, e.Detail)
				} else {
					fmt.Fprintf(w, "    %-17s %s\n", e.Kind, e.Subject)
				}
			}
		}
		for _, v := range r.Values {
			fmt.Fprintf(w, "    %-17s %s %.2f (%d shares)\n", "quote", v.Tradeable, v.Value, v.Shares)
		}
	}

	if tradeable != "" {
		fmt.Fprintf(w, "History of %s:", tradeable)
		for _, v := range result.History {
			fmt.Fprintf(w, " %.2f", v)
		}
		fmt.Fprintln(w)
	}

	st := result.Stats
	fmt.Fprintf(w, "Stats: %d rounds, %d admitted, %d successors, %d influences, %d levels passed\n",
		st.Rounds, st.Admitted, st.Successors, st.Influences, st.LevelsPast)
	fmt.Fprintf(w, "Final: balance %.2f, stage %d, complete=%t\n", st.FinalMoney, st.FinalStage, st.IsComplete)
}
