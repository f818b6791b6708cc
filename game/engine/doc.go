// Package engine provides the core simulation for the snake game.
//
// The engine package implements the game mechanics including:
//   - Grid-based movement with relative (left/right) turns
//   - Ordinary and golden fruit lifecycle (spawn, consume, expire)
//   - Wall and self collision detection
//   - Configuration loading and validation
//
// Core Types:
//
// Simulation owns the snake body, heading and fruits and advances one cell
// per Step. Score is reported to a Scorer, so the simulation never owns the
// score itself. GameConfig defines grid size, timing and scoring rules and
// is loaded from JSON files.
//
// Usage:
//
//	config := engine.DefaultGameConfig()
//	sim, err := engine.NewSimulation(config, scorer, rand.New(rand.NewSource(1)))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	alive, err := sim.Step(engine.TurnLeft)
//	snapshot := sim.Snapshot()
//
// Game Rules:
//
// The snake starts as a vertical segment near the bottom of the grid heading
// up. Eating a fruit grows the snake by one cell and scores one point; every
// fifth fruit also spawns a golden fruit worth ten points that disappears
// after twenty steps. Leaving the grid or running into the body ends the run.
package engine
