// Package play wires a simulation, its run state, the input latch and the
// step clock into a single playable game.
package play

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/wricardo/snake-game/game/clock"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/input"
	"github.com/wricardo/snake-game/game/state"
)

// Frame is a consistent view of one game for renderers
type Frame struct {
	Simulation     engine.Snapshot `json:"simulation"`
	State          state.Snapshot  `json:"state"`
	CollisionCause string          `json:"collision_cause,omitempty"`
	Error          string          `json:"error,omitempty"` // Why the last run ended early, if it did
}

// FrameListener receives frames after the game changed
type FrameListener func(Frame)

// Option configures a Game
type Option func(*Game)

// WithRand sets the random source used for fruit placement
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithSeed seeds the random source used for fruit placement
func WithSeed(seed int64) Option {
	return func(g *Game) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger sets the logger for run errors
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// WithTimeProvider sets the clock used by Run
func WithTimeProvider(tp clock.TimeProvider) Option {
	return func(g *Game) { g.timeProvider = tp }
}

// Game drives one simulation. All methods are safe for concurrent use.
//
// Store listeners registered with Subscribe run while the game lock is held
// and must not call back into the Game.
type Game struct {
	mu           sync.Mutex
	config       *engine.GameConfig
	sim          *engine.Simulation
	store        *state.Store
	latch        *input.Latch
	acc          *clock.Accumulator
	rng          *rand.Rand
	logger       *log.Logger
	timeProvider clock.TimeProvider

	listenersMu sync.Mutex
	listeners   []FrameListener

	lastErr error
}

// NewGame creates a stopped game laid out in its starting position
func NewGame(config *engine.GameConfig, opts ...Option) (*Game, error) {
	g := &Game{
		config: config,
		store:  state.NewStore(),
		latch:  input.NewLatch(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.timeProvider == nil {
		g.timeProvider = clock.NewRealTimeProvider()
	}

	sim, err := engine.NewSimulation(config, g.store, g.rng)
	if err != nil {
		return nil, err
	}
	g.sim = sim
	g.acc = clock.NewAccumulator(config.StepInterval())

	g.store.Subscribe(g.onStoreChange)
	return g, nil
}

// onStoreChange runs the start cascade when a run begins
func (g *Game) onStoreChange(field state.Field) {
	if field != state.FieldRunning || !g.store.Running() {
		return
	}

	g.store.Reset()
	if err := g.sim.Reset(); err != nil {
		g.lastErr = err
		g.logger.Printf("game: failed to reset simulation: %v", err)
		g.store.SetRunning(false)
		return
	}
	g.latch.Reset()
	g.lastErr = nil
}

// Config returns the game configuration
func (g *Game) Config() *engine.GameConfig {
	return g.config
}

// StepInterval returns the simulation step period
func (g *Game) StepInterval() time.Duration {
	return g.acc.Interval
}

// Subscribe registers a run state listener
func (g *Game) Subscribe(fn state.Listener) state.SubscriptionID {
	return g.store.Subscribe(fn)
}

// Unsubscribe removes a run state listener
func (g *Game) Unsubscribe(id state.SubscriptionID) {
	g.store.Unsubscribe(id)
}

// OnFrame registers a listener called after every change to the game
func (g *Game) OnFrame(fn FrameListener) {
	g.listenersMu.Lock()
	g.listeners = append(g.listeners, fn)
	g.listenersMu.Unlock()
}

// Running reports whether a run is in progress
func (g *Game) Running() bool {
	return g.store.Running()
}

// State returns the run state snapshot
func (g *Game) State() state.Snapshot {
	return g.store.Snapshot()
}

// LastError returns the error that ended the last run, if any
func (g *Game) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Frame returns a consistent snapshot of the simulation and run state
func (g *Game) Frame() Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frameLocked()
}

func (g *Game) frameLocked() Frame {
	frame := Frame{
		Simulation:     g.sim.Snapshot(),
		State:          g.store.Snapshot(),
		CollisionCause: g.sim.CollisionCause(),
	}
	if g.lastErr != nil {
		frame.Error = g.lastErr.Error()
	}
	return frame
}

// StartRun begins a new run. It returns false when a run is already in
// progress or the simulation could not be reset.
func (g *Game) StartRun() bool {
	g.mu.Lock()
	if g.store.Running() {
		g.mu.Unlock()
		return false
	}
	g.store.SetRunning(true)
	started := g.store.Running()
	frame := g.frameLocked()
	g.mu.Unlock()

	g.publish(frame)
	return started
}

// TurnLeft queues a left turn for the next step
func (g *Game) TurnLeft() {
	g.Turn(engine.TurnLeft)
}

// TurnRight queues a right turn for the next step
func (g *Game) TurnRight() {
	g.Turn(engine.TurnRight)
}

// Turn queues cmd for the next step; the latest command wins
func (g *Game) Turn(cmd engine.TurnCommand) {
	g.latch.Set(cmd)
}

// PendingTurn returns the command that the next step will consume
func (g *Game) PendingTurn() engine.TurnCommand {
	return g.latch.Pending()
}

// Tick advances the game by delta of frame time. A step runs when the
// accumulated time exceeds the step interval; delta is then added to the
// run time, including on the tick that ends the run. Nothing happens while
// no run is in progress.
func (g *Game) Tick(delta time.Duration) bool {
	g.mu.Lock()
	changed := g.tickLocked(delta)
	var frame Frame
	if changed {
		frame = g.frameLocked()
	}
	g.mu.Unlock()

	if changed {
		g.publish(frame)
	}
	return changed
}

func (g *Game) tickLocked(delta time.Duration) bool {
	if !g.store.Running() {
		return false
	}

	stepped := false
	if g.acc.Advance(delta) {
		cmd := g.latch.ConsumeAndReset()
		alive, err := g.sim.Step(cmd)
		if err != nil {
			g.lastErr = err
			g.logger.Printf("game: run ended: %v", err)
			alive = false
		}
		g.store.SetRunning(alive)
		stepped = true
	}

	// The tick that ends a run still counts towards its time
	before := g.store.TimeString()
	g.store.AddTime(delta)
	return stepped || g.store.TimeString() != before
}

// Run ticks the game every period until ctx is cancelled
func (g *Game) Run(ctx context.Context, period time.Duration) error {
	return clock.NewTicker(g.timeProvider).Run(ctx, period, func(delta time.Duration) {
		g.Tick(delta)
	})
}

func (g *Game) publish(frame Frame) {
	g.listenersMu.Lock()
	listeners := make([]FrameListener, len(g.listeners))
	copy(listeners, g.listeners)
	g.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(frame)
	}
}
