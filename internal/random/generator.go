// Package random wraps a Mersenne Twister engine for common sampling
// use cases: uniform integers, uniform reals, probabilities, and
// normally distributed values.
//
// The package makes a few deliberate assumptions:
//
//   - Cryptographic-level randomness is unnecessary. Only seed material
//     comes from the system entropy source; the output stream itself is
//     pseudo-random and fully determined by the seed.
//   - Moderately high space usage is okay (an engine holds ~2.5KB of
//     state).
//   - Seeding with a single unsigned integer's worth of entropy is okay.
//
// A Generator is exclusively owned and not safe for concurrent use:
// callers that need a generator per goroutine should create one per
// goroutine, or guard access externally.
package random

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// ErrMovedFrom indicates the generator's engine has been transferred
// away with Move; the instance can no longer sample.
var ErrMovedFrom = errors.New("generator engine has been moved away")

// ErrInvalidRange indicates a sampling range with low greater than high.
var ErrInvalidRange = errors.New("low bound must not exceed high bound")

// noCopy triggers `go vet -copylocks` when a Generator is copied by
// value. Copied generators would share one engine and produce
// correlated streams.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Generator owns a single pseudo-random engine and samples from it.
// Ownership can be transferred with Move or Swap but never duplicated.
type Generator struct {
	noCopy noCopy
	engine *engine
}

// New creates a generator with an explicit seed. The same seed always
// yields the same subsequent sample sequence.
func New(seed uint64) *Generator {
	return &Generator{engine: newEngine(seed)}
}

// NewFromEntropy creates a generator seeded from the system entropy
// source. The seed is random but the resulting stream is still only
// pseudo-random; do not use this for secrets.
func NewFromEntropy() (*Generator, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, fmt.Errorf("seed generator: %w", err)
	}
	return New(seed), nil
}

// Seed reseeds the engine in place. Subsequent samples follow the
// deterministic sequence implied by seed, independent of prior history.
func (g *Generator) Seed(seed uint64) error {
	if g == nil || g.engine == nil {
		return ErrMovedFrom
	}
	g.engine.seed(seed)
	return nil
}

// Move transfers engine ownership to a freshly returned generator. The
// receiver is left in a moved-from state where every sampling call
// reports ErrMovedFrom. Moving from a nil generator yields a moved-from
// generator.
func (g *Generator) Move() *Generator {
	if g == nil {
		return &Generator{}
	}
	moved := &Generator{engine: g.engine}
	g.engine = nil
	return moved
}

// Swap exchanges engines with other, including moved-from engines.
// Swapping with a nil generator is a no-op.
func (g *Generator) Swap(other *Generator) {
	if g == nil || other == nil {
		return
	}
	g.engine, other.engine = other.engine, g.engine
}

// Valid reports whether the generator still owns an engine.
func (g *Generator) Valid() bool {
	return g != nil && g.engine != nil
}

// UniformInt returns an integer in the closed range [low, high], each
// representable integer in the range equally probable. It works for any
// integer width and signedness; specify the type argument explicitly
// when the bounds are untyped constants.
func UniformInt[T constraints.Integer](g *Generator, low, high T) (T, error) {
	var zero T
	if g == nil || g.engine == nil {
		return zero, ErrMovedFrom
	}
	if low > high {
		return zero, ErrInvalidRange
	}
	// Two's complement makes the span arithmetic valid for signed
	// bounds as well: the subtraction and the final addition both wrap
	// to the right representable value.
	span := uint64(high) - uint64(low) + 1
	if span == 0 {
		// The range covers the whole 64-bit domain.
		return T(g.engine.next64()), nil
	}
	return T(uint64(low) + g.engine.bounded(span)), nil
}

// UniformReal returns a floating-point value in [low, high] sampled
// uniformly over the real interval: range-selection probability is
// proportional to interval width, not to the count of representable
// values inside it.
func UniformReal[T constraints.Float](g *Generator, low, high T) (T, error) {
	var zero T
	if g == nil || g.engine == nil {
		return zero, ErrMovedFrom
	}
	if low > high {
		return zero, ErrInvalidRange
	}
	value := float64(low) + g.engine.real()*(float64(high)-float64(low))
	// Guard the closed interval against rounding at the endpoints.
	if value > float64(high) {
		value = float64(high)
	}
	if value < float64(low) {
		value = float64(low)
	}
	return T(value), nil
}

// UniformProbability returns a value chosen uniformly from [0.0, 1.0].
func (g *Generator) UniformProbability() (float64, error) {
	if g == nil || g.engine == nil {
		return 0, ErrMovedFrom
	}
	return g.engine.real(), nil
}

// NormalReal returns a value drawn from a normal distribution with the
// given mean and standard deviation. It uses the Box-Muller transform,
// consuming two uniform draws per sample.
func (g *Generator) NormalReal(mean, sigma float64) (float64, error) {
	if g == nil || g.engine == nil {
		return 0, ErrMovedFrom
	}
	u1 := g.engine.real()
	for u1 == 0 {
		u1 = g.engine.real()
	}
	u2 := g.engine.real()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + sigma*z, nil
}
