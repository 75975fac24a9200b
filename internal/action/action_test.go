package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bourse/internal/random"
)

type node struct {
	Action[*node]
}

func newNode(name string, hasOptions bool) *node {
	n := &node{}
	n.Kind = KindEvent
	n.Name = name
	n.HasOptions = hasOptions
	return n
}

// scripted returns the given answers in order, then fails.
type scripted struct {
	answers []int
	calls   int
}

func (s *scripted) Choose(_ context.Context, _ string, options []Option) (int, error) {
	if s.calls >= len(s.answers) {
		return 0, errors.New("no more answers")
	}
	a := s.answers[s.calls]
	s.calls++
	return a, nil
}

func TestAddSuccessor_Unique(t *testing.T) {
	a := newNode("a", false)
	b := newNode("b", false)

	assert.True(t, a.AddSuccessor(b))
	assert.False(t, a.AddSuccessor(b))
	assert.Len(t, a.Successors(), 1)
}

func TestResolve_NoSuccessors(t *testing.T) {
	a := newNode("a", false)

	next, ok, err := Resolve(context.Background(), &a.Action, random.New(1), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, next)
}

func TestResolve_SingleSuccessorSkipsChooser(t *testing.T) {
	a := newNode("a", true)
	b := newNode("b", false)
	a.AddSuccessor(b)

	ch := &scripted{}
	next, ok, err := Resolve(context.Background(), &a.Action, random.New(1), ch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, b, next)
	assert.Equal(t, 0, ch.calls)
}

func TestResolve_RandomAmongSuccessors(t *testing.T) {
	a := newNode("a", false)
	b := newNode("b", false)
	c := newNode("c", false)
	a.AddSuccessor(b)
	a.AddSuccessor(c)

	seen := map[*node]bool{}
	rng := random.New(7)
	for i := 0; i < 200; i++ {
		next, ok, err := Resolve(context.Background(), &a.Action, rng, nil)
		require.NoError(t, err)
		require.True(t, ok)
		seen[next] = true
	}
	assert.True(t, seen[b])
	assert.True(t, seen[c])
}

func TestResolve_InteractiveRepromptsOutOfRange(t *testing.T) {
	a := newNode("a", true)
	b := newNode("b", false)
	c := newNode("c", false)
	a.AddSuccessor(b)
	a.AddSuccessor(c)

	ch := &scripted{answers: []int{5, -1, 1}}
	next, ok, err := Resolve(context.Background(), &a.Action, random.New(1), ch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, c, next)
	assert.Equal(t, 3, ch.calls)
}

func TestResolve_ChooserErrorPropagates(t *testing.T) {
	a := newNode("a", true)
	a.AddSuccessor(newNode("b", false))
	a.AddSuccessor(newNode("c", false))

	_, ok, err := Resolve(context.Background(), &a.Action, random.New(1), &scripted{})
	require.Error(t, err)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "event", KindEvent.String())
	assert.Equal(t, "level", KindLevel.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
