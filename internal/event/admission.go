package event

import "github.com/roach88/bourse/internal/random"

// Admission is the pressure index of a main event. The index walks each round
// the event is eligible; once it reaches Threshold the event may start.
type Admission struct {
	Index int

	InitBottom int
	InitTop    int

	// Ceiling caps the index.
	Ceiling int
	// Threshold is the index an event must reach to be considered for start.
	Threshold int

	StepBottom int
	StepTop    int
}

// InitializeIndex draws a fresh index from [InitBottom, InitTop].
func (a *Admission) InitializeIndex(rng *random.Source) int {
	a.Index = rng.Int(a.InitBottom, a.InitTop)
	return a.Index
}

// UpdateIndex advances the pressure walk. A zero index is re-initialized
// instead of stepped. Otherwise the index moves by uniform(StepBottom,
// StepTop), upward when uniform(0,100) > signNegativeBound, clamped to
// [0, Ceiling].
func (a *Admission) UpdateIndex(rng *random.Source, signNegativeBound int) int {
	if a.Index == 0 {
		return a.InitializeIndex(rng)
	}

	sign := -1
	if rng.Int(0, 100) > signNegativeBound {
		sign = 1
	}
	next := a.Index + rng.Int(a.StepBottom, a.StepTop)*sign
	switch {
	case next < 0:
		next = 0
	case next > a.Ceiling:
		next = a.Ceiling
	}
	a.Index = next
	return next
}

// Ready reports whether the index has reached the threshold.
func (a *Admission) Ready() bool {
	return a.Index >= a.Threshold
}

// Fire reports whether a ready event starts this round: the draw
// uniform(0,100) must reach executionRate.
func (a *Admission) Fire(rng *random.Source, executionRate int) bool {
	return a.Ready() && rng.Int(0, 100) >= executionRate
}
