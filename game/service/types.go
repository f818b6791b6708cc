package service

import (
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/play"
)

// CreateOptions configures a new session
type CreateOptions struct {
	SessionID   string `json:"session_id,omitempty"`  // Empty generates a random ID
	ConfigName  string `json:"config_name,omitempty"` // Empty uses the default config
	ManualClock bool   `json:"manual_clock,omitempty"`
	Seed        int64  `json:"seed,omitempty"` // Zero uses a random seed
}

// GameView is the wire form of one game frame
type GameView struct {
	SessionID   string `json:"session_id"`
	ConfigID    string `json:"config_id"`
	ManualClock bool   `json:"manual_clock"`
	play.Frame
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigID       string             `json:"config_id"`
	ConfigName     string             `json:"config_name"`
	ManualClock    bool               `json:"manual_clock"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Game           *GameView          `json:"game"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename       string  `json:"filename"`
	ConfigID       string  `json:"config_id"` // The identifier to use for session creation
	Name           string  `json:"name"`      // Display name
	Description    string  `json:"description"`
	GridSize       int     `json:"grid_size"`
	StepIntervalMS int     `json:"step_interval_ms"`
	SpeedFactor    float64 `json:"speed_factor"`
	StepsPerSecond float64 `json:"steps_per_second"`
}
