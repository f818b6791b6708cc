package clock

import "time"

// Accumulator gates simulation steps on accumulated frame time.
// When the total strictly exceeds Interval a step is due and the total
// restarts from zero; the excess is dropped, so the effective step period
// is slightly longer than Interval.
type Accumulator struct {
	Interval time.Duration
	elapsed  time.Duration
}

// NewAccumulator creates an accumulator primed so that the first
// positive Advance reports a due step
func NewAccumulator(interval time.Duration) *Accumulator {
	return &Accumulator{Interval: interval, elapsed: interval}
}

// Advance adds delta and reports whether a step is due
func (a *Accumulator) Advance(delta time.Duration) bool {
	if delta > 0 {
		a.elapsed += delta
	}
	if a.elapsed > a.Interval {
		a.elapsed = 0
		return true
	}
	return false
}

// Elapsed returns the time accumulated towards the next step
func (a *Accumulator) Elapsed() time.Duration {
	return a.elapsed
}

// Prime makes the next positive Advance report a due step
func (a *Accumulator) Prime() {
	a.elapsed = a.Interval
}

// StepInterval applies a constant speed-up factor to a base period.
// Non-positive factors leave the base unchanged.
func StepInterval(base time.Duration, speedFactor float64) time.Duration {
	if speedFactor <= 0 {
		return base
	}
	return time.Duration(float64(base) / speedFactor)
}
