package packs

import (
	"github.com/roach88/bourse/internal/engine"
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/event"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/progression"
)

// Lemonade is the introductory stage-1 pack: a lemon trade in Greece that a
// recurring plague keeps pushing down. Its first level asks for 100 in cash
// and pays a 100 bonus; the second asks for 500 and adds sugar to the market.
func Lemonade(sim *engine.Simulation) (*progression.Pack, error) {
	pack := progression.NewPack("Lemonade", 1)
	pack.Description = "This is my first level pack which is about lemonades!"
	pack.Nation = "Germany"

	pack.Init = func(p *progression.Pack) error {
		eu, err := environmentOf(sim.Graph, "European Union",
			"Confederation of 27 member states which are located primarily in Europe", environment.RankLocation)
		if err != nil {
			return err
		}
		greece, err := environmentOf(sim.Graph, "Greece", "Greece", environment.RankLocation)
		if err != nil {
			return err
		}
		if err := sim.Graph.Link(eu, greece); err != nil {
			return err
		}
		plantations, err := environmentOf(sim.Graph, "Lemon plantations", "All lemon plantations", environment.RankArea)
		if err != nil {
			return err
		}

		lemons, fresh := tradeableOf(sim.Market, &market.Tradeable{
			Name:            "Lemons",
			Description:     "The lemon is a small ellipsoidal yellow fruit",
			InitBottom:      5,
			InitTop:         15,
			InfluenceBottom: 0.7,
			InfluenceTop:    3,
			MinShares:       14,
			MaxShares:       28,
		})
		if fresh {
			plantations.Own(lemons)
			greece.Own(lemons)
		}
		sugar, _ := tradeableOf(sim.Market, &market.Tradeable{
			Name:            "Sugar",
			Description:     "The sugar",
			InitBottom:      13,
			InitTop:         30,
			InfluenceBottom: 1.4,
			InfluenceTop:    4.5,
			MinShares:       22,
			MaxShares:       55,
		})

		plague := event.New("Greece lemon plague", "All greece lemons are affected by a plague", event.High)
		plague.RoundsBottom, plague.RoundsTop = 1, 4
		plague.Admission = &event.Admission{
			InitBottom: 0,
			InitTop:    30,
			Ceiling:    100,
			Threshold:  70,
			StepBottom: 2,
			StepTop:    5,
		}
		// Negative: lemon prices fall while the plague runs.
		plague.Groups = []*environment.Group{
			environment.NewGroup("greeceLemonPlantations", 7, 13, false, greece, plantations),
		}

		first := progression.NewLevel("Lemonade stand", "Get 100$ in money to win this level.",
			progression.MoneyAtLeast(100), progression.Money(100))
		second := progression.NewLevel("Lemonade factory", "Get 500$ in money to win this level.",
			progression.MoneyAtLeast(500), nil)
		second.Tradeables = []*market.Tradeable{sugar}
		first.AddSuccessor(second)

		p.Events = []*event.Event{plague}
		p.Tradeables = []*market.Tradeable{lemons}
		p.AddFirstLevel(first)
		return nil
	}
	return pack, nil
}
