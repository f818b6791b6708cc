package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/wricardo/snake-game/game/engine"
)

// CauseStepLimit and CauseBoardFull end a game without a collision
const (
	CauseStepLimit = "step limit"
	CauseBoardFull = "board full"
)

// SimulationOptions controls a batch of headless games
type SimulationOptions struct {
	Games      int
	Seed       int64
	MaxSteps   int
	TurnChance float64
}

// GameResult is the outcome of one headless game
type GameResult struct {
	Seed        int64
	Steps       int
	Score       int
	FruitsEaten int
	GoldenEaten int
	Length      int
	Cause       string
}

// SimulationReport aggregates a batch of games
type SimulationReport struct {
	Config  string
	Results []GameResult
	Causes  map[string]int
}

// Simulate plays opts.Games games with consecutive seeds
func Simulate(ctx context.Context, config *engine.GameConfig, opts SimulationOptions) (*SimulationReport, error) {
	if opts.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", opts.Games)
	}
	if opts.MaxSteps <= 0 {
		return nil, fmt.Errorf("max-steps must be positive, got %d", opts.MaxSteps)
	}
	if opts.TurnChance < 0 || opts.TurnChance > 1 {
		return nil, fmt.Errorf("turn-chance must be between 0 and 1, got %g", opts.TurnChance)
	}

	report := &SimulationReport{
		Config: config.Name,
		Causes: make(map[string]int),
	}
	for i := 0; i < opts.Games; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := playGame(config, opts, opts.Seed+int64(i))
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, result)
		report.Causes[result.Cause]++
	}
	return report, nil
}

func playGame(config *engine.GameConfig, opts SimulationOptions, seed int64) (GameResult, error) {
	result := GameResult{Seed: seed}
	scorer := engine.ScorerFunc(func(delta int) {
		result.Score += delta
		if delta == config.GoldenFruitScore {
			result.GoldenEaten++
		}
	})

	rng := rand.New(rand.NewSource(seed))
	sim, err := engine.NewSimulation(config, scorer, rng)
	if err != nil {
		return result, err
	}

	for sim.Steps() < opts.MaxSteps {
		alive, err := sim.Step(randomTurn(rng, opts.TurnChance))
		if err != nil {
			if !errors.Is(err, engine.ErrSpawnStarvation) {
				return result, err
			}
			result.Cause = CauseBoardFull
			break
		}
		if !alive {
			result.Cause = sim.CollisionCause()
			break
		}
	}
	if result.Cause == "" {
		result.Cause = CauseStepLimit
	}

	result.Steps = sim.Steps()
	result.FruitsEaten = sim.FruitsEaten()
	result.Length = sim.Len()
	return result, nil
}

func randomTurn(rng *rand.Rand, chance float64) engine.TurnCommand {
	if rng.Float64() >= chance {
		return engine.TurnNone
	}
	if rng.Intn(2) == 0 {
		return engine.TurnLeft
	}
	return engine.TurnRight
}

// Print writes a summary of the batch
func (r *SimulationReport) Print(w io.Writer) {
	games := len(r.Results)
	if games == 0 {
		fmt.Fprintln(w, "No games played")
		return
	}

	var steps, score, golden, maxScore, maxLength int
	for _, res := range r.Results {
		steps += res.Steps
		score += res.Score
		golden += res.GoldenEaten
		if res.Score > maxScore {
			maxScore = res.Score
		}
		if res.Length > maxLength {
			maxLength = res.Length
		}
	}

	fmt.Fprintf(w, "Preset: %s (%d games)\n", r.Config, games)
	fmt.Fprintf(w, "Average steps: %.1f\n", float64(steps)/float64(games))
	fmt.Fprintf(w, "Average score: %.1f (best %d)\n", float64(score)/float64(games), maxScore)
	fmt.Fprintf(w, "Longest snake: %d\n", maxLength)
	fmt.Fprintf(w, "Golden fruit eaten: %d\n", golden)

	causes := make([]string, 0, len(r.Causes))
	for cause := range r.Causes {
		causes = append(causes, cause)
	}
	sort.Strings(causes)
	fmt.Fprintln(w, "Endings:")
	for _, cause := range causes {
		fmt.Fprintf(w, "  %-10s %d\n", cause, r.Causes[cause])
	}
}
