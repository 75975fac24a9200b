package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/engine"
)

// CommandKind identifies a console command.
type CommandKind int

const (
	CmdNext CommandKind = iota
	CmdBuy
	CmdSell
	CmdInfo
	CmdFind
	CmdHelp
	CmdQuit
)

// Command is one parsed console line.
type Command struct {
	Kind   CommandKind
	Index  int // 1-based, as listed in the round summary
	Amount int
	Query  string
}

var (
	// ErrUnknownCommand is returned for a line that names no command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrTradeSyntax is returned when buy or sell lacks "<index>.<amount>".
	ErrTradeSyntax = errors.New(`expected "<index>.<amount>", e.g. "buy 1.5"`)
)

// ParseCommand parses a console line. Commands and their short forms:
//
//	buy <index>.<amount>   b
//	sell <index>.<amount>  s
//	next                   n (also an empty line)
//	info                   i
//	find <text>            f
//	help                   h, ?
//	quit                   x, q
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: CmdNext}, nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "next", "n":
		return Command{Kind: CmdNext}, nil
	case "info", "i":
		return Command{Kind: CmdInfo}, nil
	case "help", "h", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "x", "q":
		return Command{Kind: CmdQuit}, nil
	case "find", "f":
		if len(args) == 0 {
			return Command{}, errors.New("find needs a search text")
		}
		return Command{Kind: CmdFind, Query: strings.Join(args, " ")}, nil
	case "buy", "b", "sell", "s":
		kind := CmdBuy
		if name[0] == 's' {
			kind = CmdSell
		}
		if len(args) != 1 {
			return Command{}, ErrTradeSyntax
		}
		index, amount, err := parseTrade(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Index: index, Amount: amount}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

func parseTrade(arg string) (int, int, error) {
	idx, amt, ok := strings.Cut(arg, ".")
	if !ok {
		return 0, 0, ErrTradeSyntax
	}
	index, err := strconv.Atoi(idx)
	if err != nil || index < 1 {
		return 0, 0, ErrTradeSyntax
	}
	amount, err := strconv.Atoi(amt)
	if err != nil || amount < 1 {
		return 0, 0, ErrTradeSyntax
	}
	return index, amount, nil
}

const helpText = `Commands:
  buy <index>.<amount>   (b)  buy shares of a listed tradeable
  sell <index>.<amount>  (s)  sell held shares
  next                   (n)  play the next round (also: empty line)
  info                   (i)  show balance, portfolio and goals
  find <text>            (f)  search tradeables, places and events by name
  help                   (h)  show this help
  quit                   (x)  end the session`

// Console is the interactive terminal. It answers option menus as an
// action.Chooser and reads player commands.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewConsole reads lines from in and writes to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewScanner(in), out: out}
}

// readLine returns the next input line, or io.EOF when input ends.
func (c *Console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// Choose lists the options numbered from 1 and re-prompts until the player
// picks one.
func (c *Console) Choose(ctx context.Context, prompt string, options []action.Option) (int, error) {
	fmt.Fprintln(c.out, prompt)
	for i, opt := range options {
		if opt.Description != "" {
			fmt.Fprintf(c.out, "  %d) %s - %s\n", i+1, opt.Name, opt.Description)
		} else {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, opt.Name)
		}
	}

	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.readLine(ctx)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(c.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

// ReadCommand prompts until a line parses. Parse errors are shown, not
// returned.
func (c *Console) ReadCommand(ctx context.Context) (Command, error) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.readLine(ctx)
		if err != nil {
			return Command{}, err
		}
		cmd, err := ParseCommand(line)
		if err == nil {
			return cmd, nil
		}
		fmt.Fprintf(c.out, "%v (type \"help\" for commands)\n", err)
	}
}

// PrintRound writes the round summary with the tradeables numbered for
// trade commands.
func (c *Console) PrintRound(r engine.RoundReport, currency string) {
	fmt.Fprintf(c.out, "\n=== Round %d (stage %d) ===\n", r.Round, r.Stage)
	for _, e := range r.Events {
		fmt.Fprintf(c.out, "  event %-9s %s (%s)\n", e.Change, e.Event, e.Priority)
	}
	for _, l := range r.Levels {
		fmt.Fprintf(c.out, "  level passed: %s\n", l.Passed)
		switch {
		case l.Next != "":
			fmt.Fprintf(c.out, "  next level: %s (%s)\n", l.Next, l.NextPack)
		case l.Complete:
			fmt.Fprintln(c.out, "  campaign complete!")
		}
	}
	c.printQuotes(r, currency)
	fmt.Fprintf(c.out, "Balance: %.2f%s\n", r.Money, currency)
}

func (c *Console) printQuotes(r engine.RoundReport, currency string) {
	moved := make(map[string]float64)
	for _, inf := range r.Influences {
		moved[inf.Tradeable] += inf.Percent
	}
	for i, q := range r.Quotes {
		line := fmt.Sprintf("  %d) %-20s %8.2f%s  %4d shares", i+1, q.Name, q.Value, currency, q.Shares)
		if pct, ok := moved[q.Name]; ok {
			line += fmt.Sprintf("  (%+.1f%%)", pct)
		}
		fmt.Fprintln(c.out, line)
	}
}

// PrintInfo writes the balance, the portfolio and the active level goals.
func (c *Console) PrintInfo(sim *engine.Simulation) {
	p := sim.Player
	fmt.Fprintf(c.out, "Balance: %.2f%s, shares bought: %d\n", p.Money, p.Currency, p.Bought)

	portfolio := p.Portfolio()
	if len(portfolio) == 0 {
		fmt.Fprintln(c.out, "Portfolio: empty")
	} else {
		fmt.Fprintln(c.out, "Portfolio:")
		for _, pos := range portfolio {
			value, _ := sim.Market.Value(pos.Tradeable)
			fmt.Fprintf(c.out, "  %-20s %4d  @ %.2f%s\n", pos.Tradeable.Name, pos.Amount, value, p.Currency)
		}
	}

	fmt.Fprintln(c.out, "Levels:")
	for _, l := range sim.Levels() {
		fmt.Fprintf(c.out, "  %s: %s\n", l.Name, l.Description)
	}
}

// Match is one fuzzy search hit.
type Match struct {
	Kind string // "tradeable", "environment" or "event"
	Name string
}

// Find fuzzy-matches query against the names of every known tradeable,
// environment and event, best match first.
func Find(sim *engine.Simulation, query string) []Match {
	var candidates []Match
	for _, t := range sim.Market.Known() {
		candidates = append(candidates, Match{Kind: "tradeable", Name: t.Name})
	}
	for _, e := range sim.Graph.All() {
		candidates = append(candidates, Match{Kind: "environment", Name: e.Name})
	}
	for _, e := range sim.Pool() {
		candidates = append(candidates, Match{Kind: "event", Name: e.Name})
	}

	names := make([]string, len(candidates))
	for i, m := range candidates {
		names[i] = m.Name
	}

	results := fuzzy.Find(query, names)
	out := make([]Match, 0, len(results))
	for _, r := range results {
		out = append(out, candidates[r.Index])
	}
	return out
}

// PrintMatches writes fuzzy search hits.
func (c *Console) PrintMatches(query string, matches []Match) {
	if len(matches) == 0 {
		fmt.Fprintf(c.out, "Nothing matches %q.\n", query)
		return
	}
	for _, m := range matches {
		fmt.Fprintf(c.out, "  %-11s %s\n", m.Kind, m.Name)
	}
}
