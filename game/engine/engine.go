package engine

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrInvalidTransition is returned when Step is called on a dead snake
	ErrInvalidTransition = errors.New("invalid transition: simulation is not alive")

	// ErrSpawnStarvation is returned when no free cell was found for a fruit
	ErrSpawnStarvation = errors.New("spawn starvation: no free cell found")
)

// Simulation advances one snake on a square grid, one step at a time.
// It is not safe for concurrent use; callers serialize access.
type Simulation struct {
	config *GameConfig
	scorer Scorer
	rng    *rand.Rand

	body        []Position
	heading     Direction
	fruit       *Position
	golden      *GoldenFruit
	fruitsEaten int
	steps       int
	phase       Phase
}

// NewSimulation creates a simulation laid out in its starting position.
// A nil scorer discards awarded score; a nil rng uses a time-seeded source.
func NewSimulation(config *GameConfig, scorer Scorer, rng *rand.Rand) (*Simulation, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if scorer == nil {
		scorer = ScorerFunc(func(int) {})
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	sim := &Simulation{
		config: config,
		scorer: scorer,
		rng:    rng,
	}
	if err := sim.Reset(); err != nil {
		return nil, err
	}
	return sim, nil
}

// Reset lays out the canonical snake, clears both fruits and spawns a new one
func (s *Simulation) Reset() error {
	gridSize := s.config.GridSize
	length := s.config.StartLength

	s.body = make([]Position, 0, length)
	for i := length; i > 0; i-- {
		s.body = append(s.body, Position{X: gridSize / 2, Y: gridSize - i})
	}

	s.heading = Up
	s.fruit = nil
	s.golden = nil
	s.fruitsEaten = 0
	s.steps = 0
	s.phase = PhaseIdle

	if err := s.spawnFruit(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Config returns the configuration the simulation was built with
func (s *Simulation) Config() *GameConfig {
	return s.config
}

// Body returns a copy of the snake cells, head first
func (s *Simulation) Body() []Position {
	out := make([]Position, len(s.body))
	copy(out, s.body)
	return out
}

// Head returns the head cell
func (s *Simulation) Head() Position {
	return s.body[0]
}

// Len returns the number of snake cells
func (s *Simulation) Len() int {
	return len(s.body)
}

// Heading returns the current direction of travel
func (s *Simulation) Heading() Direction {
	return s.heading
}

// Fruit returns the ordinary fruit cell, if any
func (s *Simulation) Fruit() (Position, bool) {
	if s.fruit == nil {
		return Position{}, false
	}
	return *s.fruit, true
}

// GoldenFruit returns the golden fruit and its remaining life, if any
func (s *Simulation) GoldenFruit() (GoldenFruit, bool) {
	if s.golden == nil {
		return GoldenFruit{}, false
	}
	return *s.golden, true
}

// Phase returns the lifecycle state
func (s *Simulation) Phase() Phase {
	return s.phase
}

// Alive reports whether the snake can still be stepped
func (s *Simulation) Alive() bool {
	return s.phase != PhaseDead
}

// FruitsEaten returns the number of ordinary fruits consumed since reset
func (s *Simulation) FruitsEaten() int {
	return s.fruitsEaten
}

// Steps returns the number of steps taken since reset
func (s *Simulation) Steps() int {
	return s.steps
}

// Snapshot returns a deep copy of the renderable state
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		GridSize:    s.config.GridSize,
		Body:        s.Body(),
		Heading:     s.heading,
		Phase:       s.phase,
		Alive:       s.Alive(),
		FruitsEaten: s.fruitsEaten,
		Steps:       s.steps,
	}
	if s.fruit != nil {
		fruit := *s.fruit
		snap.Fruit = &fruit
	}
	if s.golden != nil {
		golden := *s.golden
		snap.GoldenFruit = &golden
	}
	return snap
}

// Occupied reports whether p is covered by the snake
func (s *Simulation) Occupied(p Position) bool {
	for _, cell := range s.body {
		if cell == p {
			return true
		}
	}
	return false
}

// InBounds reports whether p lies on the grid
func (s *Simulation) InBounds(p Position) bool {
	size := s.config.GridSize
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}
