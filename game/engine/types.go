package engine

import "fmt"

// Validation and default constants
const (
	MinGridSize = 8
	MaxGridSize = 64

	DefaultGridSize          = 16
	DefaultStartLength       = 4
	DefaultStepIntervalMS    = 166
	DefaultSpeedFactor       = 1.0
	DefaultFruitScore        = 1
	DefaultGoldenFruitScore  = 10
	DefaultGoldenFruitPeriod = 5
	DefaultGoldenFruitLife   = 20
	DefaultMaxSpawnAttempts  = 10000

	MinStepIntervalMS = 20
	MaxStepIntervalMS = 2000
	MinSpeedFactor    = 0.25
	MaxSpeedFactor    = 8.0
	MinStartLength    = 2
)

// Position represents x,y grid coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position translated by v
func (p Position) Add(v Position) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is one of the four cardinal headings, ordered clockwise
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directionVectors = [...]Position{
	Up:    {X: 0, Y: -1},
	Right: {X: 1, Y: 0},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
}

var directionNames = [...]string{
	Up:    "up",
	Right: "right",
	Down:  "down",
	Left:  "left",
}

// Vector returns the unit vector of the heading
func (d Direction) Vector() Position {
	return directionVectors[d&3]
}

// RotateLeft returns the heading rotated counter-clockwise
func (d Direction) RotateLeft() Direction {
	return (d + 3) & 3
}

// RotateRight returns the heading rotated clockwise
func (d Direction) RotateRight() Direction {
	return (d + 1) & 3
}

// Apply resolves a relative turn command against the heading
func (d Direction) Apply(cmd TurnCommand) Direction {
	switch cmd {
	case TurnLeft:
		return d.RotateLeft()
	case TurnRight:
		return d.RotateRight()
	default:
		return d
	}
}

func (d Direction) String() string {
	return directionNames[d&3]
}

// MarshalText encodes the heading as its lowercase name
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a lowercase heading name
func (d *Direction) UnmarshalText(text []byte) error {
	for i, name := range directionNames {
		if name == string(text) {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", text)
}

// TurnCommand is a relative heading change requested by the player
type TurnCommand int

const (
	TurnNone TurnCommand = iota
	TurnLeft
	TurnRight
)

func (c TurnCommand) String() string {
	switch c {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	default:
		return "none"
	}
}

// ParseTurnCommand accepts "left", "right", "none" or an empty string
func ParseTurnCommand(s string) (TurnCommand, error) {
	switch s {
	case "left", "turn_left", "turn-left":
		return TurnLeft, nil
	case "right", "turn_right", "turn-right":
		return TurnRight, nil
	case "", "none":
		return TurnNone, nil
	}
	return TurnNone, fmt.Errorf("unknown turn command %q", s)
}

// Phase is the lifecycle state of a simulation
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAlive
	PhaseDead
)

func (p Phase) String() string {
	switch p {
	case PhaseAlive:
		return "alive"
	case PhaseDead:
		return "dead"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase as its lowercase name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a lowercase phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for _, phase := range []Phase{PhaseIdle, PhaseAlive, PhaseDead} {
		if phase.String() == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// GoldenFruit is a bonus fruit with a remaining life counted in steps
type GoldenFruit struct {
	Position
	Life int `json:"life"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	GridSize          int     `json:"grid_size"`
	StartLength       int     `json:"start_length"`
	StepIntervalMS    int     `json:"step_interval_ms"`
	SpeedFactor       float64 `json:"speed_factor"`
	FruitScore        int     `json:"fruit_score"`
	GoldenFruitScore  int     `json:"golden_fruit_score"`
	GoldenFruitPeriod int     `json:"golden_fruit_period"`
	GoldenFruitLife   int     `json:"golden_fruit_life"`
	MaxSpawnAttempts  int     `json:"max_spawn_attempts,omitempty"`
}

// Snapshot is a read-only copy of the simulation for renderers
type Snapshot struct {
	GridSize    int          `json:"grid_size"`
	Body        []Position   `json:"body"`
	Heading     Direction    `json:"heading"`
	Fruit       *Position    `json:"fruit,omitempty"`
	GoldenFruit *GoldenFruit `json:"golden_fruit,omitempty"`
	Phase       Phase        `json:"phase"`
	Alive       bool         `json:"alive"`
	FruitsEaten int          `json:"fruits_eaten"`
	Steps       int          `json:"steps"`
}

// Scorer receives score awarded by the simulation
type Scorer interface {
	AddScore(delta int)
}

// ScorerFunc adapts a function to the Scorer interface
type ScorerFunc func(delta int)

// AddScore calls f(delta)
func (f ScorerFunc) AddScore(delta int) {
	f(delta)
}
