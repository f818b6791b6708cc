// Package input buffers the player's pending turn between simulation steps.
package input

import (
	"sync"

	"github.com/wricardo/snake-game/game/engine"
)

// Latch holds at most one pending turn. Later turns overwrite earlier ones
// and the simulation consumes the command once per step.
type Latch struct {
	mu      sync.Mutex
	pending engine.TurnCommand
}

// NewLatch creates an empty latch
func NewLatch() *Latch {
	return &Latch{}
}

// TurnLeft records a left turn
func (l *Latch) TurnLeft() {
	l.Set(engine.TurnLeft)
}

// TurnRight records a right turn
func (l *Latch) TurnRight() {
	l.Set(engine.TurnRight)
}

// Set records cmd as the pending command
func (l *Latch) Set(cmd engine.TurnCommand) {
	l.mu.Lock()
	l.pending = cmd
	l.mu.Unlock()
}

// Pending returns the pending command without clearing it
func (l *Latch) Pending() engine.TurnCommand {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// ConsumeAndReset returns the pending command and clears it
func (l *Latch) ConsumeAndReset() engine.TurnCommand {
	l.mu.Lock()
	defer l.mu.Unlock()
	cmd := l.pending
	l.pending = engine.TurnNone
	return cmd
}

// Reset discards any pending command
func (l *Latch) Reset() {
	l.Set(engine.TurnNone)
}
