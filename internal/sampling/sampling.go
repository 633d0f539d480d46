// Package sampling draws every random decision of a batch run from one injected source.
package sampling

import (
	"math"
	"math/rand"
	"time"
)

// Source is the randomness stream consumed by the sampler. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSource returns a seeded generator. A zero seed is replaced by the current time;
// the seed actually used is returned so the run can be reproduced.
func NewSource(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// Sampler wraps a Source with the distributions used by laydown generation.
type Sampler struct {
	src Source
}

// New creates a sampler over src.
func New(src Source) *Sampler {
	return &Sampler{src: src}
}

// Uniform returns a draw in [0, 1).
func (s *Sampler) Uniform() float64 {
	return s.src.Float64()
}

// Intn returns a uniform integer in [0, n).
func (s *Sampler) Intn(n int) int {
	return s.src.Intn(n)
}

// Bernoulli returns true iff a fresh uniform draw is <= p.
func (s *Sampler) Bernoulli(p float64) bool {
	return s.src.Float64() <= p
}

// TruncatedNormal draws from N(mean, stdDev^2) via Box-Muller and clamps into [min, max].
// Exactly two uniform draws are consumed. With stdDev == 0 the result is
// clamp(mean, min, max). min > max is not checked and yields max.
func (s *Sampler) TruncatedNormal(mean, stdDev, min, max float64) float64 {
	// u1 in (0, 1] keeps the log finite
	u1 := 1.0 - s.src.Float64()
	u2 := s.src.Float64()
	z := math.Sqrt(-2.0*math.Log(u1)) * math.Sin(2.0*math.Pi*u2)
	return Clamp(mean+stdDev*z, min, max)
}

// Clamp limits v to [min, max], applying the lower bound first.
func Clamp(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}
