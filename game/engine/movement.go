package engine

import "fmt"

// Step advances the simulation by one cell and reports whether the snake survived.
// The turn command is applied to the heading first and is always consumed.
func (s *Simulation) Step(cmd TurnCommand) (bool, error) {
	if s.phase == PhaseDead {
		return false, ErrInvalidTransition
	}
	s.phase = PhaseAlive
	s.steps++

	s.heading = s.heading.Apply(cmd)

	// Golden fruit ages before the move, so it can expire on the step it would be eaten
	if s.golden != nil {
		s.golden.Life--
		if s.golden.Life <= 0 {
			s.golden = nil
		}
	}

	newHead := s.body[0].Add(s.heading.Vector())

	var spawnErr error
	switch {
	case s.fruit != nil && newHead == *s.fruit:
		s.body = s.grow(newHead)
		s.fruitsEaten++
		s.fruit = nil
		s.scorer.AddScore(s.config.FruitScore)

		if err := s.spawnFruit(); err != nil {
			spawnErr = err
		} else if err := s.spawnGoldenFruit(); err != nil {
			spawnErr = err
		}

	case s.golden != nil && newHead == s.golden.Position:
		s.body = s.grow(newHead)
		s.golden = nil
		s.scorer.AddScore(s.config.GoldenFruitScore)

	default:
		s.body = s.translate(newHead)
	}

	if s.collided() {
		s.phase = PhaseDead
		return false, nil
	}

	if spawnErr != nil {
		return true, fmt.Errorf("step %d: %w", s.steps, spawnErr)
	}
	return true, nil
}

// grow prepends the new head and keeps the whole previous body
func (s *Simulation) grow(head Position) []Position {
	body := make([]Position, 0, len(s.body)+1)
	body = append(body, head)
	return append(body, s.body...)
}

// translate prepends the new head and drops the tail
func (s *Simulation) translate(head Position) []Position {
	body := make([]Position, 0, len(s.body))
	body = append(body, head)
	return append(body, s.body[:len(s.body)-1]...)
}

// collided checks the head against the walls and the rest of the body
func (s *Simulation) collided() bool {
	head := s.body[0]
	if !s.InBounds(head) {
		return true
	}
	for _, cell := range s.body[1:] {
		if cell == head {
			return true
		}
	}
	return false
}

// CollisionCause describes why the last step killed the snake
func (s *Simulation) CollisionCause() string {
	if s.phase != PhaseDead {
		return ""
	}
	if !s.InBounds(s.body[0]) {
		return "wall"
	}
	return "self"
}
