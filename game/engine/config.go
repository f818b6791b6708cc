package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/snake-game/game/clock"
)

// DefaultGameConfig returns the classic 16x16 configuration
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:              "classic",
		Description:       "Classic 16x16 snake with golden fruit every 5 fruits",
		GridSize:          DefaultGridSize,
		StartLength:       DefaultStartLength,
		StepIntervalMS:    DefaultStepIntervalMS,
		SpeedFactor:       DefaultSpeedFactor,
		FruitScore:        DefaultFruitScore,
		GoldenFruitScore:  DefaultGoldenFruitScore,
		GoldenFruitPeriod: DefaultGoldenFruitPeriod,
		GoldenFruitLife:   DefaultGoldenFruitLife,
		MaxSpawnAttempts:  DefaultMaxSpawnAttempts,
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	if config.StartLength < MinStartLength || config.StartLength >= config.GridSize {
		return fmt.Errorf("config validation: start_length must be between %d and grid_size-1 (%d), got %d",
			MinStartLength, config.GridSize-1, config.StartLength)
	}

	// Validate timing
	if config.StepIntervalMS < MinStepIntervalMS || config.StepIntervalMS > MaxStepIntervalMS {
		return fmt.Errorf("config validation: step_interval_ms must be between %d and %d, got %d",
			MinStepIntervalMS, MaxStepIntervalMS, config.StepIntervalMS)
	}
	if config.SpeedFactor < MinSpeedFactor || config.SpeedFactor > MaxSpeedFactor {
		return fmt.Errorf("config validation: speed_factor must be between %g and %g, got %g",
			MinSpeedFactor, MaxSpeedFactor, config.SpeedFactor)
	}

	// Validate scoring
	if config.FruitScore <= 0 {
		return fmt.Errorf("config validation: fruit_score must be positive, got %d", config.FruitScore)
	}
	if config.GoldenFruitScore <= config.FruitScore {
		return fmt.Errorf("config validation: golden_fruit_score must exceed fruit_score (%d), got %d",
			config.FruitScore, config.GoldenFruitScore)
	}
	if config.GoldenFruitPeriod <= 0 {
		return fmt.Errorf("config validation: golden_fruit_period must be positive, got %d", config.GoldenFruitPeriod)
	}
	if config.GoldenFruitLife <= 0 {
		return fmt.Errorf("config validation: golden_fruit_life must be positive, got %d", config.GoldenFruitLife)
	}
	if config.MaxSpawnAttempts < 0 {
		return fmt.Errorf("config validation: max_spawn_attempts cannot be negative, got %d", config.MaxSpawnAttempts)
	}

	return nil
}

// ApplyDefaults fills zero-valued optional fields with their defaults
func (c *GameConfig) ApplyDefaults() {
	if c.StartLength == 0 {
		c.StartLength = DefaultStartLength
	}
	if c.StepIntervalMS == 0 {
		c.StepIntervalMS = DefaultStepIntervalMS
	}
	if c.SpeedFactor == 0 {
		c.SpeedFactor = DefaultSpeedFactor
	}
	if c.FruitScore == 0 {
		c.FruitScore = DefaultFruitScore
	}
	if c.GoldenFruitScore == 0 {
		c.GoldenFruitScore = DefaultGoldenFruitScore
	}
	if c.GoldenFruitPeriod == 0 {
		c.GoldenFruitPeriod = DefaultGoldenFruitPeriod
	}
	if c.GoldenFruitLife == 0 {
		c.GoldenFruitLife = DefaultGoldenFruitLife
	}
	if c.MaxSpawnAttempts == 0 {
		c.MaxSpawnAttempts = DefaultMaxSpawnAttempts
	}
}

// StepInterval is the logical step period after the speed-up factor is applied
func (c *GameConfig) StepInterval() time.Duration {
	return clock.StepInterval(time.Duration(c.StepIntervalMS)*time.Millisecond, c.SpeedFactor)
}

// StepsPerSecond is the nominal simulation rate
func (c *GameConfig) StepsPerSecond() float64 {
	interval := c.StepInterval()
	if interval <= 0 {
		return 0
	}
	return float64(time.Second) / float64(interval)
}

// Clone returns a copy that can be mutated independently
func (c *GameConfig) Clone() *GameConfig {
	cp := *c
	return &cp
}

// ParseGameConfig decodes and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	config, err := LoadGameConfig("configs/" + configName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file '%s' not found", configName)
		}
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}
	return config, nil
}
