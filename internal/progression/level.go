// Package progression holds levels, level packs and the stage registry that
// orders packs into a campaign.
package progression

import (
	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/player"
)

const (
	// StageUnset marks a level whose stage comes from its pack.
	StageUnset = -1
	// AwardStage holds packs that run alongside the campaign.
	AwardStage = 0
)

// Goal reports whether the player has passed a level.
type Goal func(*player.Player) bool

// Award is conferred once when a level is passed.
type Award func(*player.Player)

// MoneyAtLeast is the goal "the player holds at least amount".
func MoneyAtLeast(amount float64) Goal {
	return func(p *player.Player) bool {
		return p.Money >= amount
	}
}

// Money is the award "add amount to the player's balance".
func Money(amount float64) Award {
	return func(p *player.Player) {
		p.Money += amount
	}
}

// Level is one step of a pack. Its successors are the levels that may follow
// it inside the same pack.
type Level struct {
	action.Action[*Level]

	Pack  *Pack
	Stage int

	Events     []*event.Event
	Tradeables []*market.Tradeable

	Goal  Goal
	Award Award
}

// NewLevel creates a level with an unset stage.
func NewLevel(name, description string, goal Goal, award Award) *Level {
	return &Level{
		Action: action.Action[*Level]{
			Kind:        action.KindLevel,
			Name:        name,
			Description: description,
		},
		Stage: StageUnset,
		Goal:  goal,
		Award: award,
	}
}

// Passed evaluates the goal. A level without a goal is never passed.
func (l *Level) Passed(p *player.Player) bool {
	return l.Goal != nil && l.Goal(p)
}

// Confer applies the award, if any.
func (l *Level) Confer(p *player.Player) {
	if l.Award != nil {
		l.Award(p)
	}
}

// IsLast reports whether passing l ends its pack.
func (l *Level) IsLast() bool {
	return len(l.Successors()) == 0
}
