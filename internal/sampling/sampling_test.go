package sampling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource records how many draws were consumed.
type countingSource struct {
	floats []float64
	draws  int
}

func (c *countingSource) Float64() float64 {
	v := c.floats[c.draws%len(c.floats)]
	c.draws++
	return v
}

func (c *countingSource) Intn(n int) int {
	c.draws++
	return 0
}

func TestTruncatedNormal_ZeroStdDevIsClampedMean(t *testing.T) {
	src, _ := NewSource(7)
	s := New(src)

	for i := 0; i < 1000; i++ {
		require.Equal(t, 0.6, s.TruncatedNormal(0.6, 0, 0.6, 0.6))
	}

	assert.Equal(t, 2.0, s.TruncatedNormal(5, 0, 0, 2))
	assert.Equal(t, 1.0, s.TruncatedNormal(-3, 0, 1, 4))
	assert.Equal(t, 3.5, s.TruncatedNormal(3.5, 0, 0, 10))
}

func TestTruncatedNormal_ConsumesTwoDraws(t *testing.T) {
	src := &countingSource{floats: []float64{0.25, 0.75}}
	s := New(src)

	s.TruncatedNormal(0, 1, -10, 10)
	assert.Equal(t, 2, src.draws)

	s.TruncatedNormal(0, 0, 0, 0)
	assert.Equal(t, 4, src.draws, "zero variance still runs the transform")
}

func TestTruncatedNormal_ZeroUniformIsFinite(t *testing.T) {
	// Float64 may return exactly 0; the sample must stay finite.
	src := &countingSource{floats: []float64{0, 0}}
	s := New(src)

	v := s.TruncatedNormal(1, 0, -5, 5)
	assert.False(t, math.IsNaN(v))
	assert.Equal(t, 1.0, v)
}

func TestTruncatedNormal_WithinBounds(t *testing.T) {
	src, _ := NewSource(42)
	s := New(src)

	for i := 0; i < 10000; i++ {
		v := s.TruncatedNormal(3, 2, 1, 10)
		require.GreaterOrEqual(t, v, 1.0)
		require.LessOrEqual(t, v, 10.0)
	}
}

func TestTruncatedNormal_MomentsUnclamped(t *testing.T) {
	src, _ := NewSource(99)
	s := New(src)

	const n = 50000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := s.TruncatedNormal(10, 2, -1e9, 1e9)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)

	assert.InDelta(t, 10, mean, 0.05)
	assert.InDelta(t, 2, std, 0.05)
}

func TestTruncatedNormal_InvertedBoundsReturnsMax(t *testing.T) {
	src, _ := NewSource(3)
	s := New(src)
	assert.Equal(t, 1.0, s.TruncatedNormal(0, 1, 5, 1))
}

func TestBernoulli(t *testing.T) {
	src := &countingSource{floats: []float64{0.5}}
	s := New(src)
	assert.True(t, s.Bernoulli(0.5), "draw equal to p counts as success")
	assert.False(t, s.Bernoulli(0.49))
	assert.True(t, s.Bernoulli(1))
}

func TestNewSource_Reproducible(t *testing.T) {
	a, seedA := NewSource(1234)
	b, seedB := NewSource(1234)
	assert.Equal(t, seedA, seedB)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}

	_, seed := NewSource(0)
	assert.NotZero(t, seed)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0.6, 0.6, 0.6, 0.6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.v, tt.min, tt.max))
	}
}
