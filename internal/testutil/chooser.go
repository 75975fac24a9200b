package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/bourse/internal/action"
)

// ScriptedChooser answers option prompts from a fixed script.
//
// Each call to Choose consumes the next answer. Answers may be out of range
// on purpose to exercise re-prompting. When the script runs out, Choose
// returns an error so a test never blocks on an unexpected prompt.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedChooser struct {
	mu      sync.Mutex
	answers []int
	prompts []string
}

// NewScriptedChooser creates a chooser that replies with answers in order.
func NewScriptedChooser(answers ...int) *ScriptedChooser {
	return &ScriptedChooser{answers: answers}
}

// Choose returns the next scripted answer.
//
// Implements action.Chooser interface.
func (c *ScriptedChooser) Choose(_ context.Context, prompt string, options []action.Option) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prompts = append(c.prompts, prompt)
	if len(c.answers) == 0 {
		return 0, fmt.Errorf("scripted chooser exhausted at prompt %q (%d options)", prompt, len(options))
	}
	next := c.answers[0]
	c.answers = c.answers[1:]
	return next, nil
}

// Prompts returns every prompt seen so far.
func (c *ScriptedChooser) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Remaining returns how many answers are left.
func (c *ScriptedChooser) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.answers)
}
