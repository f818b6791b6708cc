package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func createValidConfig() *GameConfig {
	config := DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "A valid test configuration"
	return config
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
	if err := ValidateGameConfig(DefaultGameConfig()); err != nil {
		t.Errorf("Expected default config to be valid, got error: %v", err)
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestValidateGameConfig_InvalidFields(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *GameConfig)
		contains string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"grid too small", func(c *GameConfig) { c.GridSize = MinGridSize - 1 }, "grid_size"},
		{"grid too large", func(c *GameConfig) { c.GridSize = MaxGridSize + 1 }, "grid_size"},
		{"start length too short", func(c *GameConfig) { c.StartLength = 1 }, "start_length"},
		{"start length fills column", func(c *GameConfig) { c.StartLength = c.GridSize }, "start_length"},
		{"step interval too fast", func(c *GameConfig) { c.StepIntervalMS = MinStepIntervalMS - 1 }, "step_interval_ms"},
		{"step interval too slow", func(c *GameConfig) { c.StepIntervalMS = MaxStepIntervalMS + 1 }, "step_interval_ms"},
		{"speed factor too low", func(c *GameConfig) { c.SpeedFactor = 0.1 }, "speed_factor"},
		{"speed factor too high", func(c *GameConfig) { c.SpeedFactor = 9 }, "speed_factor"},
		{"zero fruit score", func(c *GameConfig) { c.FruitScore = 0 }, "fruit_score"},
		{"golden not above fruit", func(c *GameConfig) { c.GoldenFruitScore = c.FruitScore }, "golden_fruit_score"},
		{"zero golden period", func(c *GameConfig) { c.GoldenFruitPeriod = 0 }, "golden_fruit_period"},
		{"zero golden life", func(c *GameConfig) { c.GoldenFruitLife = 0 }, "golden_fruit_life"},
		{"negative spawn attempts", func(c *GameConfig) { c.MaxSpawnAttempts = -1 }, "max_spawn_attempts"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.mutate(config)

			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), test.contains) {
				t.Errorf("Expected error mentioning %q, got: %v", test.contains, err)
			}
			if !strings.HasPrefix(err.Error(), "config validation:") {
				t.Errorf("Expected config validation prefix, got: %v", err)
			}
		})
	}
}

func TestGameConfig_StepInterval(t *testing.T) {
	tests := []struct {
		name     string
		baseMS   int
		factor   float64
		expected time.Duration
	}{
		{"default", 166, 1, 166 * time.Millisecond},
		{"double speed", 166, 2, 83 * time.Millisecond},
		{"half speed", 100, 0.5, 200 * time.Millisecond},
		{"zero factor falls back to base", 100, 0, 100 * time.Millisecond},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			config.StepIntervalMS = test.baseMS
			config.SpeedFactor = test.factor

			if got := config.StepInterval(); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestGameConfig_StepsPerSecond(t *testing.T) {
	config := createValidConfig()
	config.StepIntervalMS = 100
	config.SpeedFactor = 1

	if got := config.StepsPerSecond(); got != 10 {
		t.Errorf("Expected 10 steps per second, got %g", got)
	}
}

func TestGameConfig_ApplyDefaults(t *testing.T) {
	config := &GameConfig{Name: "sparse", Description: "only required fields", GridSize: 20}
	config.ApplyDefaults()

	if config.StartLength != DefaultStartLength {
		t.Errorf("Expected start length %d, got %d", DefaultStartLength, config.StartLength)
	}
	if config.StepIntervalMS != DefaultStepIntervalMS {
		t.Errorf("Expected step interval %d, got %d", DefaultStepIntervalMS, config.StepIntervalMS)
	}
	if config.GoldenFruitPeriod != DefaultGoldenFruitPeriod {
		t.Errorf("Expected golden period %d, got %d", DefaultGoldenFruitPeriod, config.GoldenFruitPeriod)
	}
	if config.GridSize != 20 {
		t.Errorf("ApplyDefaults must not touch set fields, grid size is %d", config.GridSize)
	}
	if err := ValidateGameConfig(config); err != nil {
		t.Errorf("Expected defaulted config to validate, got: %v", err)
	}
}

func TestGameConfig_Clone(t *testing.T) {
	config := createValidConfig()
	clone := config.Clone()
	clone.GridSize = 32

	if config.GridSize == 32 {
		t.Error("Mutating the clone changed the original")
	}
}

func TestParseGameConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		config, err := ParseGameConfig([]byte(`{"name":"mini","description":"small grid","grid_size":10,"start_length":3}`))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if config.GridSize != 10 || config.StartLength != 3 {
			t.Errorf("Unexpected config: %+v", config)
		}
		if config.FruitScore != DefaultFruitScore {
			t.Errorf("Expected default fruit score, got %d", config.FruitScore)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := ParseGameConfig([]byte(`{"name":`)); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("fails validation", func(t *testing.T) {
		if _, err := ParseGameConfig([]byte(`{"name":"tiny","description":"too small","grid_size":4}`)); err == nil {
			t.Error("Expected validation error for tiny grid")
		}
	})
}

func TestLoadGameConfig(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_config.json")

	configContent := `{
		"name": "Test Config",
		"description": "Test description",
		"grid_size": 20,
		"start_length": 5,
		"step_interval_ms": 120,
		"speed_factor": 1.5,
		"fruit_score": 2,
		"golden_fruit_score": 15,
		"golden_fruit_period": 4,
		"golden_fruit_life": 30
	}`

	if err := os.WriteFile(tempFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadGameConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}
	if config.GridSize != 20 {
		t.Errorf("Expected grid size 20, got %d", config.GridSize)
	}
	if config.SpeedFactor != 1.5 {
		t.Errorf("Expected speed factor 1.5, got %g", config.SpeedFactor)
	}
	if config.GoldenFruitLife != 30 {
		t.Errorf("Expected golden life 30, got %d", config.GoldenFruitLife)
	}
	if config.MaxSpawnAttempts != DefaultMaxSpawnAttempts {
		t.Errorf("Expected default spawn attempts, got %d", config.MaxSpawnAttempts)
	}

	if _, err := LoadGameConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadConfigByName(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("CONFIG_DIR", tempDir)

	configContent := `{"name": "Test Config", "description": "Loaded by name", "grid_size": 12}`
	if err := os.WriteFile(filepath.Join(tempDir, "test.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "broken.json"), []byte(`{"name": "broken"}`), 0644); err != nil {
		t.Fatalf("Failed to create broken config file: %v", err)
	}

	// Test loading by name without extension
	config, err := LoadConfigByName("test")
	if err != nil {
		t.Fatalf("Failed to load config by name: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}

	// Test loading by name with extension
	config2, err := LoadConfigByName("test.json")
	if err != nil {
		t.Fatalf("Failed to load config by name with extension: %v", err)
	}
	if config2.GridSize != 12 {
		t.Errorf("Expected grid size 12, got %d", config2.GridSize)
	}

	// Test loading non-existent config
	_, err = LoadConfigByName("nonexistent")
	if err == nil {
		t.Fatal("Expected error for non-existent config")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}

	_, err = LoadConfigByName("broken")
	if err == nil {
		t.Fatal("Expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("Expected 'invalid config' error, got: %v", err)
	}
}
