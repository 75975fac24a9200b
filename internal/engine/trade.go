package engine

import (
	"context"
	"fmt"
)

// Trade is the outcome of a buy or sell.
type Trade struct {
	Tradeable string        `json:"tradeable"`
	Amount    int           `json:"amount"`
	Price     float64       `json:"price"`
	Money     float64       `json:"money"`
	Levels    []LevelChange `json:"levels,omitempty"`
}

// Buy purchases amount shares of the active tradeable at index (0-based, in
// market order) and then re-checks level goals while the campaign runs.
func (s *Simulation) Buy(ctx context.Context, index, amount int) (Trade, error) {
	return s.trade(ctx, index, amount, true)
}

// Sell sells amount held shares of the active tradeable at index and then
// re-checks level goals.
func (s *Simulation) Sell(ctx context.Context, index, amount int) (Trade, error) {
	return s.trade(ctx, index, amount, false)
}

func (s *Simulation) trade(ctx context.Context, index, amount int, buy bool) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return Trade{}, newNotStartedError()
	}

	active := s.Market.Active()
	if index < 0 || index >= len(active) {
		return Trade{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index+1)
	}
	t := active[index]
	price, _ := s.Market.Value(t)

	var err error
	if buy {
		err = s.Player.Buy(t, price, amount)
	} else {
		err = s.Player.Sell(t, price, amount)
	}
	if err != nil {
		return Trade{}, err
	}

	s.logger.Debug("trade", "buy", buy, "tradeable", t.Name, "amount", amount, "price", price)

	result := Trade{Tradeable: t.Name, Amount: amount, Price: price}
	if !s.complete {
		result.Levels, err = s.iterateActiveLevels(ctx)
	}
	result.Money = s.Player.Money
	return result, err
}

// CheckLevels re-evaluates level goals outside a round.
func (s *Simulation) CheckLevels(ctx context.Context) ([]LevelChange, error) {
	return s.IterateActiveLevels(ctx)
}
