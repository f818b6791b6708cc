package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/play"
)

var (
	ErrManualClockRequired = errors.New("session is driven by the real-time clock; create it with manual_clock to tick it")
	ErrInvalidTurn         = errors.New("invalid turn command")
)

var _ GameService = (*DefaultGameService)(nil)

// DefaultGameService implements the GameService interface
type DefaultGameService struct {
	sessions SessionManager
	configs  ConfigManager

	mu          sync.RWMutex
	broadcaster Broadcaster
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) *DefaultGameService {
	return &DefaultGameService{
		sessions: sessions,
		configs:  configs,
	}
}

// SetBroadcaster sets where session frames are pushed
func (s *DefaultGameService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

func (s *DefaultGameService) getBroadcaster() Broadcaster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.broadcaster
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *DefaultGameService) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *DefaultGameService) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	var config *engine.GameConfig
	configID := opts.ConfigName
	if configID != "" {
		loaded, err := s.configs.LoadConfig(configID)
		if err != nil {
			// Provide helpful error message with available options
			if availableConfigs, listErr := s.configs.ListConfigs(); listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("config '%s': %w (available configs: %v)", configID, err, configIDs)
			}
			return nil, fmt.Errorf("config '%s': %w", configID, err)
		}
		config = loaded
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	session, err := s.sessions.Create(opts.SessionID, SessionOptions{
		ConfigID:    configID,
		Config:      config,
		ManualClock: opts.ManualClock,
		Seed:        opts.Seed,
		OnFrame:     s.publishFrame,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// publishFrame forwards a session frame to the broadcaster
func (s *DefaultGameService) publishFrame(sessionID string, frame play.Frame) {
	b := s.getBroadcaster()
	if b == nil {
		return
	}
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return
	}
	b.BroadcastToSession(session.ID, viewOf(session, frame))
}

// GetSession retrieves session information
func (s *DefaultGameService) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions, oldest first
func (s *DefaultGameService) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and stops its game loop
func (s *DefaultGameService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// StartRun begins a new run; it is a no-op while a run is in progress
func (s *DefaultGameService) StartRun(ctx context.Context, sessionID string) (*GameView, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.Game.StartRun()
	if err := session.Game.LastError(); err != nil && !session.Game.Running() {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return viewOf(session, session.Game.Frame()), nil
}

// Turn queues a relative turn for the next step
func (s *DefaultGameService) Turn(ctx context.Context, sessionID string, cmd engine.TurnCommand) (*GameView, error) {
	if cmd != engine.TurnLeft && cmd != engine.TurnRight {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTurn, cmd)
	}

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.Game.Turn(cmd)
	return viewOf(session, session.Game.Frame()), nil
}

// Tick advances a manual-clock session by elapsed frame time
func (s *DefaultGameService) Tick(ctx context.Context, sessionID string, elapsed time.Duration) (*GameView, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.ManualClock {
		return nil, ErrManualClockRequired
	}
	if elapsed < 0 {
		return nil, fmt.Errorf("elapsed time cannot be negative: %v", elapsed)
	}

	session.Game.Tick(elapsed)
	return viewOf(session, session.Game.Frame()), nil
}

// GetGameView returns the current frame of a session
func (s *DefaultGameService) GetGameView(ctx context.Context, sessionID string) (*GameView, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return viewOf(session, session.Game.Frame()), nil
}

// ListConfigs returns available game configurations
func (s *DefaultGameService) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *DefaultGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *DefaultGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession looks up a session and records the access
func (s *DefaultGameService) getSession(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session '%s': %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return session, nil
}

func (s *DefaultGameService) sessionInfo(session *Session) *SessionInfo {
	view := viewOf(session, session.Game.Frame())
	return &SessionInfo{
		ID:             session.ID,
		ConfigID:       session.ConfigID,
		ConfigName:     session.Config.Name,
		ManualClock:    session.ManualClock,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessed(),
		Game:           view,
		GameConfig:     session.Config,
	}
}

func viewOf(session *Session, frame play.Frame) *GameView {
	return &GameView{
		SessionID:   session.ID,
		ConfigID:    session.ConfigID,
		ManualClock: session.ManualClock,
		Frame:       frame,
	}
}
