package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/bourse/internal/action"
	"github.com/roach88/bourse/internal/config"
	"github.com/roach88/bourse/internal/random"
)

// ErrInvalidStage is returned for a stage outside [AwardStage, MaxStage].
var ErrInvalidStage = errors.New("invalid level stage")

// Registry orders packs by stage and tracks the campaign cursor.
type Registry struct {
	maxStage int
	cursor   int
	stages   map[int][]*Pack

	rng     *random.Source
	chooser action.Chooser
	logger  *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithChooser sets who picks among several packs of a stage. Without one
// the pick is random.
func WithChooser(c action.Chooser) RegistryOption {
	return func(r *Registry) {
		r.chooser = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry with the cursor at cfg.StartStage.
func NewRegistry(cfg config.Progression, rng *random.Source, opts ...RegistryOption) *Registry {
	r := &Registry{
		maxStage: cfg.MaxStage,
		cursor:   cfg.StartStage,
		stages:   make(map[int][]*Pack),
		rng:      rng,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) validStage(stage int) bool {
	return stage >= AwardStage && stage <= r.maxStage
}

// Register initializes p and files it under its stage. Registering the same
// pack again is a no-op and returns false.
func (r *Registry) Register(p *Pack) (bool, error) {
	if !r.validStage(p.Stage) {
		return false, fmt.Errorf("%w: pack %q has stage %d", ErrInvalidStage, p.Name, p.Stage)
	}
	for _, existing := range r.stages[p.Stage] {
		if existing == p {
			return false, nil
		}
	}
	if err := p.Initialize(); err != nil {
		return false, err
	}
	r.stages[p.Stage] = append(r.stages[p.Stage], p)
	r.logger.Debug("level pack registered", "pack", p.Name, "stage", p.Stage)
	return true, nil
}

// Packs returns the packs registered for stage.
func (r *Registry) Packs(stage int) []*Pack {
	out := make([]*Pack, len(r.stages[stage]))
	copy(out, r.stages[stage])
	return out
}

// AwardPacks returns the stage-0 packs.
func (r *Registry) AwardPacks() []*Pack {
	return r.Packs(AwardStage)
}

// Len returns the number of registered packs across all stages.
func (r *Registry) Len() int {
	n := 0
	for _, packs := range r.stages {
		n += len(packs)
	}
	return n
}

// Stage returns the campaign cursor.
func (r *Registry) Stage() int {
	return r.cursor
}

// MaxStage returns the last campaign stage.
func (r *Registry) MaxStage() int {
	return r.maxStage
}

// Complete reports whether the cursor has moved past the last stage.
func (r *Registry) Complete() bool {
	return r.cursor > r.maxStage
}

// ChoosePack returns the pack to play for stage. A single pack is returned
// directly; several are offered to the chooser. An empty stage has no pack.
func (r *Registry) ChoosePack(ctx context.Context, stage int) (*Pack, bool, error) {
	if !r.validStage(stage) {
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	}
	return action.Select(ctx, r.stages[stage], true, "Please choose a level pack to play", r.rng, r.chooser)
}

// AdvanceStage moves the cursor forward and reports whether it is still a
// campaign stage.
func (r *Registry) AdvanceStage() (int, bool) {
	r.cursor++
	return r.cursor, r.cursor <= r.maxStage
}

// NextStagePack advances the cursor and chooses that stage's pack. Past the
// last stage there is no pack and no error.
func (r *Registry) NextStagePack(ctx context.Context) (*Pack, bool, error) {
	stage, ok := r.AdvanceStage()
	if !ok {
		r.logger.Info("last level stage finished", "stage", stage-1)
		return nil, false, nil
	}
	return r.ChoosePack(ctx, stage)
}
