package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNGDeterministic(t *testing.T) {
	a, b := NewRNG(11), NewRNG(11)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
		assert.Equal(t, a.Choose(-1, 1), b.Choose(-1, 1))
	}
}

func TestRNGRanges(t *testing.T) {
	r := NewRNG(3)
	assert.Zero(t, r.IntN(0))
	assert.Equal(t, float32(2), r.Choose(2, 2))
	for i := 0; i < 200; i++ {
		v := r.Choose(5, 6)
		assert.GreaterOrEqual(t, v, float32(5))
		assert.Less(t, v, float32(6))
		n := r.IntN(4)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 4)
	}
}
