/*
Package moments implements an online running-moments aggregator: mean,
variance, skewness and kurtosis computed in a single pass with Welford's
algorithm, mergeable across shards via Combine. It is a naive, out-of-focus
component relative to the sketch engines in package sketch - a numeric
stream is not itself a membership or cardinality query - but is carried for
completeness.
*/
package moments

import (
	"fmt"
	"math"
	"sync"
)

// Accumulator holds the running moments of a numeric stream observed so far.
// The zero value is an empty accumulator, ready to use.
type Accumulator struct {
	mu sync.RWMutex
	n  uint64
	m1 float64
	m2 float64
	m3 float64
	m4 float64
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Push folds x into the running moments.
func (a *Accumulator) Push(x float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.n++
	fN := float64(a.n)
	delta := x - a.m1
	deltaN := delta / fN
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * (fN - 1)

	a.m1 += deltaN
	a.m4 += term1*deltaN2*(fN*fN-3*fN+3) + 6*deltaN2*a.m2 - 4*deltaN*a.m3
	a.m3 += term1*deltaN*(fN-2) - 3*deltaN*a.m2
	a.m2 += term1
}

// N returns the number of values observed so far.
func (a *Accumulator) N() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.n
}

// Mean returns the running mean.
func (a *Accumulator) Mean() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.m1
}

// Variance returns the running sample variance, 0 for fewer than 2 observations.
func (a *Accumulator) Variance() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.n < 2 {
		return 0
	}
	return a.m2 / (float64(a.n) - 1)
}

// StdDev returns the running sample standard deviation.
func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}

// Skewness returns the running skewness as a single scalar. The source this
// package is grounded on subscripts a scalar result (stats.skew(...)[0]),
// a likely bug flagged as out of scope; this returns the scalar directly.
func (a *Accumulator) Skewness() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.m2 == 0 {
		return 0
	}
	return math.Sqrt(float64(a.n)) * a.m3 / math.Pow(a.m2, 1.5)
}

// Kurtosis returns the running excess kurtosis.
func (a *Accumulator) Kurtosis() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.m2 == 0 {
		return 0
	}
	return float64(a.n)*a.m4/(a.m2*a.m2) - 3.0
}

// Combine returns a new Accumulator representing the moments of the
// concatenation of a's and b's streams, without revisiting either one's
// observations. a and b are left unmodified.
func Combine(a, b *Accumulator) *Accumulator {
	a.mu.RLock()
	b.mu.RLock()
	defer a.mu.RUnlock()
	defer b.mu.RUnlock()

	combined := &Accumulator{n: a.n + b.n}
	if combined.n == 0 {
		return combined
	}

	aN, bN, cN := float64(a.n), float64(b.n), float64(combined.n)
	delta := b.m1 - a.m1
	delta2 := delta * delta
	delta3 := delta * delta2
	delta4 := delta2 * delta2

	combined.m1 = (aN*a.m1 + bN*b.m1) / cN
	combined.m2 = a.m2 + b.m2 + delta2*aN*bN/cN

	combined.m3 = a.m3 + b.m3 + delta3*aN*bN*(aN-bN)/(cN*cN)
	combined.m3 += 3.0 * delta * (aN*b.m2 - bN*a.m2) / cN

	combined.m4 = a.m4 + b.m4 + delta4*aN*bN*(aN*aN-aN*bN+bN*bN)/(cN*cN*cN)
	combined.m4 += 6.0*delta2*(aN*aN*b.m2+bN*bN*a.m2)/(cN*cN) + 4.0*delta*(aN*b.m3-bN*a.m3)/cN

	return combined
}

// String renders a's moments for debugging.
func (a *Accumulator) String() string {
	return fmt.Sprintf(
		"Mean: %f Variance: %f Skewness: %f Kurtosis: %f N: %d",
		a.Mean(), a.Variance(), a.Skewness(), a.Kurtosis(), a.N(),
	)
}
