package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt_StaysInRange(t *testing.T) {
	s := New(1)
	for i := 0; i < 1000; i++ {
		v := s.Int(3, 7)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 7)
	}
}

func TestInt_SwapsInvertedBounds(t *testing.T) {
	s := New(2)
	for i := 0; i < 100; i++ {
		v := s.Int(10, 5)
		assert.GreaterOrEqual(t, v, 5)
		assert.LessOrEqual(t, v, 10)
	}
}

func TestFloat_DegenerateRange(t *testing.T) {
	s := New(3)
	assert.Equal(t, 2.5, s.Float(2.5, 2.5))
	assert.Equal(t, 4, s.Int(4, 4))
}

func TestFloat_StaysInRange(t *testing.T) {
	s := New(4)
	for i := 0; i < 1000; i++ {
		v := s.Float(0.1, 3.0)
		assert.GreaterOrEqual(t, v, 0.1)
		assert.Less(t, v, 3.0)
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Int(0, 100), b.Int(0, 100))
		assert.Equal(t, a.Float(0, 1), b.Float(0, 1))
	}
}
