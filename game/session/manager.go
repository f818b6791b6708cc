package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/snake-game/game/play"
	"github.com/wricardo/snake-game/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// DefaultTickPeriod is the real-time loop period of a session (about 60 fps)
const DefaultTickPeriod = 16 * time.Millisecond

const maxIDAttempts = 32

// Manager handles game session lifecycle. Sessions without a manual clock
// run their own tick loop until deleted, expired or closed.
type Manager struct {
	sessions   map[string]*service.Session
	loops      map[string]context.CancelFunc
	tickPeriod time.Duration
	logger     *log.Logger
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return NewManagerWithTickPeriod(DefaultTickPeriod)
}

// NewManagerWithTickPeriod creates a session manager whose game loops tick every period
func NewManagerWithTickPeriod(period time.Duration) *Manager {
	if period <= 0 {
		period = DefaultTickPeriod
	}
	return &Manager{
		sessions:   make(map[string]*service.Session),
		loops:      make(map[string]context.CancelFunc),
		tickPeriod: period,
		logger:     log.Default(),
	}
}

// TickPeriod returns the real-time loop period
func (m *Manager) TickPeriod() time.Duration {
	return m.tickPeriod
}

// Create creates a new session with the given ID and options
func (m *Manager) Create(id string, opts service.SessionOptions) (*service.Session, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("failed to create game: config is nil")
	}
	if strings.ContainsAny(id, "/ \t\n") {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		generated, err := m.generateUniqueID()
		if err != nil {
			return nil, err
		}
		id = generated
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	gameOpts := []play.Option{play.WithLogger(m.logger)}
	if opts.Seed != 0 {
		gameOpts = append(gameOpts, play.WithSeed(opts.Seed))
	}
	game, err := play.NewGame(opts.Config, gameOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	if opts.OnFrame != nil {
		sessionID := id
		game.OnFrame(func(frame play.Frame) {
			opts.OnFrame(sessionID, frame)
		})
	}

	now := time.Now()
	session := &service.Session{
		ID:          id,
		Game:        game,
		Config:      opts.Config,
		ConfigID:    opts.ConfigID,
		ManualClock: opts.ManualClock,
		CreatedAt:   now,
	}
	session.Touch(now)

	key := strings.ToLower(id)
	m.sessions[key] = session
	if !opts.ManualClock {
		m.startLoop(key, game)
	}

	return session, nil
}

// startLoop runs the real-time tick loop of a session; callers hold m.mu
func (m *Manager) startLoop(key string, game *play.Game) {
	ctx, cancel := context.WithCancel(context.Background())
	m.loops[key] = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		game.Run(ctx, m.tickPeriod)
	}()
}

// stopLoop cancels the tick loop of a session; callers hold m.mu
func (m *Manager) stopLoop(key string) {
	if cancel, ok := m.loops[key]; ok {
		cancel()
		delete(m.loops, key)
	}
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, opts service.SessionOptions) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, opts)
	}
	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session and stops its loop
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}

	m.stopLoop(key)
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.Touch(time.Now())
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for key, session := range m.sessions {
		if session.LastAccessed().Before(cutoff) {
			m.stopLoop(key)
			delete(m.sessions, key)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every session loop and waits for them to exit
func (m *Manager) Close() {
	m.mu.Lock()
	for key := range m.loops {
		m.stopLoop(key)
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// generateUniqueID draws random 4-character IDs until one is free; callers hold m.mu
func (m *Manager) generateUniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := generateSessionID()
		if !m.sessionExists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a free session ID after %d attempts", maxIDAttempts)
}

// generateSessionID generates a random 4-character session ID
func generateSessionID() string {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
