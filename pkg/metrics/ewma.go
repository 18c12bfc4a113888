package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

// ewma is an exponentially-weighted moving average over duration samples.
// The half-life is expressed in samples: after halfLife observations an old
// value's weight has decayed to one half. The average lives in a single
// float64 register manipulated through its bit pattern, so updates are a
// compare-and-swap retry loop and readers never see a torn value.
type ewma struct {
	bits  atomic.Uint64 // math.Float64bits of the current average, 0 = unseeded
	alpha float64
}

// newEWMA returns an average with the given half-life in samples. Half-life
// values below 1 are clamped to 1 (every sample replaces half the average).
func newEWMA(halfLifeSamples int) *ewma {
	if halfLifeSamples < 1 {
		halfLifeSamples = 1
	}
	return &ewma{alpha: 1 - math.Exp2(-1/float64(halfLifeSamples))}
}

// Observe folds a new sample into the average.
func (e *ewma) Observe(d time.Duration) {
	sample := float64(d.Nanoseconds())
	for {
		old := e.bits.Load()
		var next float64
		if old == 0 {
			// First sample seeds the register directly. A genuine average
			// of +0.0 shares the bit pattern, which only happens when every
			// sample was zero; reseeding with another zero is harmless.
			next = sample
		} else {
			cur := math.Float64frombits(old)
			next = cur + e.alpha*(sample-cur)
		}
		if e.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return
		}
	}
}

// Value returns the current average, or zero before the first sample.
func (e *ewma) Value() time.Duration {
	bits := e.bits.Load()
	if bits == 0 {
		return 0
	}
	return time.Duration(math.Float64frombits(bits))
}
