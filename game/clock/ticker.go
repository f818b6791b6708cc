package clock

import (
	"context"
	"time"
)

// Ticker delivers measured wall-clock deltas at a fixed period
type Ticker struct {
	Time TimeProvider
}

// NewTicker creates a ticker; a nil provider uses the system clock
func NewTicker(tp TimeProvider) *Ticker {
	if tp == nil {
		tp = NewRealTimeProvider()
	}
	return &Ticker{Time: tp}
}

// Run calls fn with the time since the previous call on every period until
// ctx is cancelled. It blocks and returns ctx.Err().
func (t *Ticker) Run(ctx context.Context, period time.Duration, fn func(delta time.Duration)) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	return t.drive(ctx, t.Time.Now(), ticker.C, fn)
}

func (t *Ticker) drive(ctx context.Context, last time.Time, ticks <-chan time.Time, fn func(delta time.Duration)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			now := t.Time.Now()
			delta := now.Sub(last)
			last = now
			fn(delta)
		}
	}
}
