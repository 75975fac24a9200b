// Package player keeps the portfolio bookkeeping for the single player of a
// session.
package player

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/market"
)

var (
	// ErrInsufficientMoney is returned when a purchase exceeds the balance.
	ErrInsufficientMoney = errors.New("not enough money")
	// ErrInsufficientShares is returned when the market or the player holds
	// fewer shares than requested.
	ErrInsufficientShares = errors.New("not enough shares")
	// ErrInvalidAmount is returned for non-positive trade amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrUnknownDifficulty is returned by ParseDifficulty.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Target names a player attribute an event may shift once on admission.
type Target string

const (
	TargetMoney  Target = "player.money"
	TargetBought Target = "player.bought"
)

// Difficulty selects the starting balance.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, normal or hard (or 1, 2, 3).
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "1":
		return Easy, nil
	case "normal", "2", "":
		return Normal, nil
	case "hard", "3":
		return Hard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// Player is the trader.
type Player struct {
	Money       float64
	Currency    string
	Nationality string

	// Bought counts every share ever bought.
	Bought int64

	holdings map[*market.Tradeable]int
	order    []*market.Tradeable
}

// New creates a player with no money. Call SetDifficulty to fund it.
func New(cfg config.Player) *Player {
	return &Player{
		Currency:    cfg.Currency,
		Nationality: cfg.Nationality,
		holdings:    make(map[*market.Tradeable]int),
	}
}

// SetDifficulty sets the starting balance for d.
func (p *Player) SetDifficulty(cfg config.Player, d Difficulty) {
	switch d {
	case Easy:
		p.Money = cfg.MoneyEasy
	case Hard:
		p.Money = cfg.MoneyHard
	default:
		p.Money = cfg.MoneyNormal
	}
}

// Buy takes amount shares of t at price from the market. The market's share
// count and the player's balance must both cover the trade.
func (p *Player) Buy(t *market.Tradeable, price float64, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Shares < amount {
		return fmt.Errorf("%w: %d of %s available", ErrInsufficientShares, t.Shares, t.Name)
	}
	cost := price * float64(amount)
	if cost > p.Money {
		return fmt.Errorf("%w: %.2f%s needed, %.2f%s available",
			ErrInsufficientMoney, cost, p.Currency, p.Money, p.Currency)
	}

	p.Money -= cost
	p.Bought += int64(amount)
	t.DecShares(amount)
	if _, ok := p.holdings[t]; !ok {
		p.order = append(p.order, t)
	}
	p.holdings[t] += amount
	return nil
}

// Sell returns amount shares of t to the market at price.
func (p *Player) Sell(t *market.Tradeable, price float64, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	held := p.holdings[t]
	if held < amount {
		return fmt.Errorf("%w: holding %d of %s", ErrInsufficientShares, held, t.Name)
	}

	p.Money += price * float64(amount)
	t.IncShares(amount)
	if held == amount {
		delete(p.holdings, t)
		for i, o := range p.order {
			if o == t {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
		return nil
	}
	p.holdings[t] = held - amount
	return nil
}

// Holding returns how many shares of t the player owns.
func (p *Player) Holding(t *market.Tradeable) int {
	return p.holdings[t]
}

// Position is one line of the portfolio.
type Position struct {
	Tradeable *market.Tradeable
	Amount    int
}

// Portfolio returns the holdings in first-bought order.
func (p *Player) Portfolio() []Position {
	out := make([]Position, 0, len(p.order))
	for _, t := range p.order {
		out = append(out, Position{Tradeable: t, Amount: p.holdings[t]})
	}
	return out
}

// ApplyInfluence shifts target by delta. Unknown targets are ignored and
// reported as false.
func (p *Player) ApplyInfluence(target Target, delta float64) bool {
	switch target {
	case TargetMoney:
		p.Money += delta
	case TargetBought:
		p.Bought += int64(delta)
	default:
		return false
	}
	return true
}

// ParseTarget validates a target tag.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetMoney, TargetBought:
		return t, nil
	default:
		return "", fmt.Errorf("unknown influence target %q", s)
	}
}
