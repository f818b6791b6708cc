// Package config provides configuration management for the snake game.
//
// The config package handles:
//   - Loading game presets from JSON files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Presets are stored as JSON files in the configs directory. Each preset
// defines the grid size, the starting snake length, the step interval and
// speed-up factor, and the fruit scoring rules. Omitted optional fields take
// the engine defaults.
//
// Available Configurations:
//   - classic: 16x16 grid, one step every 166ms
//   - turbo: classic rules at twice the speed
//   - arena: 24x24 grid with a longer starting snake
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("turbo")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When classic.json is missing, the first valid preset becomes the default;
// with no valid presets at all the built-in engine default is used.
package config
