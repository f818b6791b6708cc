package engine

// spawnFruit places an ordinary fruit on a free cell when none is present
func (s *Simulation) spawnFruit() error {
	if s.fruit != nil {
		return nil
	}

	pos, err := s.randomFreeCell(func(p Position) bool {
		return s.golden != nil && s.golden.Position == p
	})
	if err != nil {
		return err
	}
	s.fruit = &pos
	return nil
}

// spawnGoldenFruit places a golden fruit after every GoldenFruitPeriod-th ordinary fruit
func (s *Simulation) spawnGoldenFruit() error {
	if s.golden != nil || s.fruitsEaten == 0 || s.fruitsEaten%s.config.GoldenFruitPeriod != 0 {
		return nil
	}

	pos, err := s.randomFreeCell(func(p Position) bool {
		return s.fruit != nil && *s.fruit == p
	})
	if err != nil {
		return err
	}
	s.golden = &GoldenFruit{Position: pos, Life: s.config.GoldenFruitLife}
	return nil
}

// randomFreeCell draws cells until one is neither on the snake nor excluded
func (s *Simulation) randomFreeCell(excluded func(Position) bool) (Position, error) {
	attempts := s.config.MaxSpawnAttempts
	if attempts <= 0 {
		attempts = DefaultMaxSpawnAttempts
	}

	gridSize := s.config.GridSize
	for i := 0; i < attempts; i++ {
		p := Position{X: s.rng.Intn(gridSize), Y: s.rng.Intn(gridSize)}
		if s.Occupied(p) || excluded(p) {
			continue
		}
		return p, nil
	}
	return Position{}, ErrSpawnStarvation
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// IsContiguous reports whether consecutive cells are grid-adjacent
func IsContiguous(body []Position) bool {
	for i := 1; i < len(body); i++ {
		if ManhattanDistance(body[i-1], body[i]) != 1 {
			return false
		}
	}
	return true
}

// HasOverlap reports whether any two cells share a position
func HasOverlap(body []Position) bool {
	seen := make(map[Position]struct{}, len(body))
	for _, p := range body {
		if _, ok := seen[p]; ok {
			return true
		}
		seen[p] = struct{}{}
	}
	return false
}

// FreeCells counts grid cells not covered by the snake
func (s *Simulation) FreeCells() int {
	return s.config.GridSize*s.config.GridSize - len(s.body)
}
