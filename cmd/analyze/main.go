// Command analyze prints quick, human-readable heuristics about the game
// presets in the configs directory. It summarizes board size, effective
// speed and golden fruit settings, validates preset files, and runs seeded
// headless games with random turns to compare presets.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/snake-game/game/engine"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "inspect and exercise snake game presets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "configs",
				Usage:  "summarize every preset in the config directory",
				Action: configsAction,
			},
			{
				Name:      "validate",
				Usage:     "validate preset files (defaults to the whole config directory)",
				ArgsUsage: "[file.json ...]",
				Action:    validateAction,
			},
			{
				Name:  "simulate",
				Usage: "run seeded headless games against a preset",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "classic", Usage: "preset name or path to a .json file"},
					&cli.IntFlag{Name: "games", Value: 100, Usage: "number of games to play"},
					&cli.Int64Flag{Name: "seed", Value: 1, Usage: "seed of the first game; game i uses seed+i"},
					&cli.IntFlag{Name: "max-steps", Value: 10000, Usage: "step limit per game"},
					&cli.FloatFlag{Name: "turn-chance", Value: 0.2, Usage: "probability of a random turn on each step"},
				},
				Action: simulateAction,
			},
		},
		Action: configsAction,
	}
}

func configsAction(ctx context.Context, cmd *cli.Command) error {
	files, err := presetFiles(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	for _, file := range files {
		fmt.Fprintf(cmd.Root().Writer, "\n=== Analyzing %s ===\n", filepath.Base(file))
		config, err := engine.LoadGameConfig(file)
		if err != nil {
			fmt.Fprintf(cmd.Root().Writer, "Error: %v\n", err)
			continue
		}
		describeConfig(cmd.Root().Writer, config)
	}
	return nil
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		var err error
		files, err = presetFiles(cmd.String("config-dir"))
		if err != nil {
			return err
		}
	}

	invalid := 0
	for _, file := range files {
		if _, err := engine.LoadGameConfig(file); err != nil {
			invalid++
			fmt.Fprintf(cmd.Root().Writer, "FAIL %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(cmd.Root().Writer, "ok   %s\n", file)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d presets invalid", invalid, len(files))
	}
	return nil
}

func simulateAction(ctx context.Context, cmd *cli.Command) error {
	config, err := resolveConfig(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		return err
	}

	opts := SimulationOptions{
		Games:      cmd.Int("games"),
		Seed:       cmd.Int64("seed"),
		MaxSteps:   cmd.Int("max-steps"),
		TurnChance: cmd.Float("turn-chance"),
	}
	report, err := Simulate(ctx, config, opts)
	if err != nil {
		return err
	}
	report.Print(cmd.Root().Writer)
	return nil
}

// presetFiles lists the .json files of dir in name order
func presetFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no presets found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// resolveConfig accepts either a path to a preset file or a preset name in dir
func resolveConfig(dir, nameOrPath string) (*engine.GameConfig, error) {
	path := nameOrPath
	if !strings.HasSuffix(path, ".json") {
		path = filepath.Join(dir, nameOrPath+".json")
	}
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load preset %s: %w", nameOrPath, err)
	}
	return config, nil
}

func describeConfig(w io.Writer, config *engine.GameConfig) {
	cells := config.GridSize * config.GridSize
	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Description: %s\n", config.Description)
	fmt.Fprintf(w, "Grid Size: %d x %d (%d cells)\n", config.GridSize, config.GridSize, cells)
	fmt.Fprintf(w, "Start Length: %d\n", config.StartLength)
	fmt.Fprintf(w, "Step Interval: %v (%.1f steps/s)\n", config.StepInterval(), config.StepsPerSecond())
	fmt.Fprintf(w, "Fruit Score: %d\n", config.FruitScore)
	fmt.Fprintf(w, "Golden Fruit: %d points every %d fruits, lasts %d steps\n",
		config.GoldenFruitScore, config.GoldenFruitPeriod, config.GoldenFruitLife)

	// Distance from the start head to the farthest corner bounds the first fruit trip
	start := engine.Position{X: config.GridSize / 2, Y: config.GridSize - config.StartLength}
	farthest := 0
	for _, corner := range []engine.Position{
		{X: 0, Y: 0},
		{X: config.GridSize - 1, Y: 0},
		{X: 0, Y: config.GridSize - 1},
		{X: config.GridSize - 1, Y: config.GridSize - 1},
	} {
		if d := engine.ManhattanDistance(start, corner); d > farthest {
			farthest = d
		}
	}
	fmt.Fprintf(w, "Worst first trip: %d steps\n", farthest)

	if config.GoldenFruitLife < config.GridSize {
		fmt.Fprintf(w, "Warning: golden fruit may expire before it can be reached (life %d < grid %d)\n",
			config.GoldenFruitLife, config.GridSize)
	}
}
