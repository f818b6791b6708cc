package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/play"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	StartRun(ctx context.Context, sessionID string) (*GameView, error)
	Turn(ctx context.Context, sessionID string, cmd engine.TurnCommand) (*GameView, error)
	Tick(ctx context.Context, sessionID string, elapsed time.Duration) (*GameView, error)

	// Game State
	GetGameView(ctx context.Context, sessionID string) (*GameView, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, opts SessionOptions) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, opts SessionOptions) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Broadcaster pushes game views to connected clients of a session
type Broadcaster interface {
	BroadcastToSession(sessionID string, state interface{})
}

// SessionOptions describes the game a session manager should build
type SessionOptions struct {
	ConfigID    string
	Config      *engine.GameConfig
	ManualClock bool
	Seed        int64

	// OnFrame is registered on the game before its loop starts
	OnFrame FrameHandler
}

// FrameHandler receives the frames of one session
type FrameHandler func(sessionID string, frame play.Frame)

// Session represents an active game session
type Session struct {
	ID          string
	Game        *play.Game
	Config      *engine.GameConfig
	ConfigID    string
	ManualClock bool
	CreatedAt   time.Time

	mu             sync.Mutex
	lastAccessedAt time.Time
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastAccessedAt = t
	s.mu.Unlock()
}

// LastAccessed returns the time of the latest access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessedAt
}
