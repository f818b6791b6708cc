package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/wricardo/snake-game/game/config"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/play"
	"github.com/wricardo/snake-game/game/service"
	"github.com/wricardo/snake-game/game/session"
	"github.com/wricardo/snake-game/game/state"
	"github.com/wricardo/snake-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	StartRunFunc func(ctx context.Context, sessionID string) (*service.GameView, error)
	TurnFunc     func(ctx context.Context, sessionID string, cmd engine.TurnCommand) (*service.GameView, error)
	TickFunc     func(ctx context.Context, sessionID string, elapsed time.Duration) (*service.GameView, error)

	// Game State
	GetGameViewFunc func(ctx context.Context, sessionID string) (*service.GameView, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func testView(sessionID string) *service.GameView {
	return &service.GameView{
		SessionID: sessionID,
		ConfigID:  "classic",
		Frame: play.Frame{
			Simulation: engine.Snapshot{
				GridSize: 16,
				Body:     []engine.Position{{X: 8, Y: 12}, {X: 8, Y: 13}},
				Heading:  engine.Up,
			},
			State: state.Snapshot{Time: "00:00"},
		},
	}
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		ConfigID:  opts.ConfigName,
		CreatedAt: time.Now(),
		Game:      testView("test-session"),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		ConfigID:  "classic",
		CreatedAt: time.Now(),
		Game:      testView(sessionID),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Game Operations
func (m *MockGameService) StartRun(ctx context.Context, sessionID string) (*service.GameView, error) {
	if m.StartRunFunc != nil {
		return m.StartRunFunc(ctx, sessionID)
	}
	return testView(sessionID), nil
}

func (m *MockGameService) Turn(ctx context.Context, sessionID string, cmd engine.TurnCommand) (*service.GameView, error) {
	if m.TurnFunc != nil {
		return m.TurnFunc(ctx, sessionID, cmd)
	}
	return testView(sessionID), nil
}

func (m *MockGameService) Tick(ctx context.Context, sessionID string, elapsed time.Duration) (*service.GameView, error) {
	if m.TickFunc != nil {
		return m.TickFunc(ctx, sessionID, elapsed)
	}
	return testView(sessionID), nil
}

// Game State
func (m *MockGameService) GetGameView(ctx context.Context, sessionID string) (*service.GameView, error) {
	if m.GetGameViewFunc != nil {
		return m.GetGameViewFunc(ctx, sessionID)
	}
	return testView(sessionID), nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	cfg := engine.DefaultGameConfig()
	cfg.Name = configName
	return cfg, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, cfg *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, cfg)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func notFound(id string) error {
	return fmt.Errorf("session '%s': %w", id, session.ErrSessionNotFound)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "Create session with default config",
			requestBody:    nil,
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "test-session" {
					t.Errorf("Expected session ID test-session, got %s", resp.ID)
				}
			},
		},
		{
			name: "Create session with options",
			requestBody: map[string]interface{}{
				"session_id":   "mine",
				"config_id":    "turbo",
				"manual_clock": true,
				"seed":         7,
			},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					want := service.CreateOptions{SessionID: "mine", ConfigName: "turbo", ManualClock: true, Seed: 7}
					if opts != want {
						t.Errorf("Expected options %+v, got %+v", want, opts)
					}
					return &service.SessionInfo{ID: "mine", ConfigID: "turbo", ManualClock: true, Game: testView("mine")}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "config_name is accepted as an alias",
			requestBody: map[string]string{"config_name": "arena"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					if opts.ConfigName != "arena" {
						t.Errorf("Expected config 'arena', got %s", opts.ConfigName)
					}
					return &service.SessionInfo{ID: "a", Game: testView("a")}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config 'nope': %w", config.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Duplicate session",
			requestBody: map[string]string{"session_id": "dup"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to create session: %w", session.ErrSessionAlreadyExists)
				}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSessionInvalidBody(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{broken"))
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func() []*service.SessionInfo {
		mk := func(id string, created, accessed time.Duration, best int) *service.SessionInfo {
			view := testView(id)
			view.State.BestScore = best
			return &service.SessionInfo{
				ID:             id,
				CreatedAt:      now.Add(created),
				LastAccessedAt: now.Add(accessed),
				Game:           view,
			}
		}
		return []*service.SessionInfo{
			mk("a", -3*time.Hour, -1*time.Minute, 5),
			mk("b", -2*time.Hour, -3*time.Minute, 30),
			mk("c", -1*time.Hour, -2*time.Minute, 10),
		}
	}

	tests := []struct {
		name      string
		query     string
		wantOrder []string
		wantTotal int
	}{
		{"default sorts by last access, newest first", "", []string{"a", "c", "b"}, 3},
		{"created ascending", "?sort=created&order=asc", []string{"a", "b", "c"}, 3},
		{"best score descending", "?sort=score", []string{"b", "c", "a"}, 3},
		{"limit", "?sort=created&limit=2", []string{"c", "b"}, 3},
		{"invalid limit ignored", "?limit=zero", []string{"a", "c", "b"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
					return sessions(), nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.wantTotal || resp.Count != len(tt.wantOrder) {
				t.Errorf("Expected count %d of %d, got %d of %d", len(tt.wantOrder), tt.wantTotal, resp.Count, resp.Total)
			}
			for i, id := range tt.wantOrder {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s", i, id)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "abcd" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: "abcd", Game: testView("abcd")}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "abcd" {
				return session.ErrSessionNotFound
			}
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/sessions/abcd", http.StatusOK},
		{"GET", "/api/sessions/zzzz", http.StatusNotFound},
		{"DELETE", "/api/sessions/abcd", http.StatusOK},
		{"DELETE", "/api/sessions/zzzz", http.StatusNotFound},
		{"PUT", "/api/sessions/abcd", http.StatusMethodNotAllowed},
		{"POST", "/api/sessions/abcd/state", http.StatusMethodNotAllowed},
		{"PUT", "/index.html", http.StatusMethodNotAllowed},
		{"GET", "/missing.html", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

// Game Operation Tests

func TestGetGameState(t *testing.T) {
	mockService := &MockGameService{
		GetGameViewFunc: func(ctx context.Context, sessionID string) (*service.GameView, error) {
			if sessionID == "missing" {
				return nil, notFound(sessionID)
			}
			return testView(sessionID), nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/abcd/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var raw map[string]interface{}
	parseResponse(t, w, &raw)
	for _, key := range []string{"session_id", "simulation", "state"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected key %q in game view", key)
		}
	}
	sim := raw["simulation"].(map[string]interface{})
	if sim["heading"] != "up" || sim["phase"] != "idle" {
		t.Errorf("Expected heading up and phase idle, got %v and %v", sim["heading"], sim["phase"])
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/missing/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestStartRun(t *testing.T) {
	started := ""
	mockService := &MockGameService{
		StartRunFunc: func(ctx context.Context, sessionID string) (*service.GameView, error) {
			started = sessionID
			view := testView(sessionID)
			view.State.Running = true
			return view, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/start", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if started != "abcd" {
		t.Errorf("Expected run started for abcd, got %q", started)
	}

	var view service.GameView
	parseResponse(t, w, &view)
	if !view.State.Running {
		t.Error("Expected running state in response")
	}
}

func TestTurn(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCmd    engine.TurnCommand
	}{
		{"left", map[string]string{"turn": "left"}, http.StatusOK, engine.TurnLeft},
		{"right", map[string]string{"turn": "right"}, http.StatusOK, engine.TurnRight},
		{"none is rejected", map[string]string{"turn": "none"}, http.StatusBadRequest, engine.TurnNone},
		{"missing turn", map[string]string{}, http.StatusBadRequest, engine.TurnNone},
		{"unknown turn", map[string]string{"turn": "up"}, http.StatusBadRequest, engine.TurnNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.TurnNone
			mockService := &MockGameService{
				TurnFunc: func(ctx context.Context, sessionID string, cmd engine.TurnCommand) (*service.GameView, error) {
					got = cmd
					return testView(sessionID), nil
				},
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/turn", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got != tt.expectedCmd {
				t.Errorf("Expected command %v, got %v", tt.expectedCmd, got)
			}
		})
	}
}

func TestTick(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		serviceErr     error
		expectedStatus int
		expectedDelta  time.Duration
	}{
		{"advance", map[string]int{"elapsed_ms": 250}, nil, http.StatusOK, 250 * time.Millisecond},
		{"zero", map[string]int{"elapsed_ms": 0}, nil, http.StatusOK, 0},
		{"negative", map[string]int{"elapsed_ms": -1}, nil, http.StatusBadRequest, -1},
		{"too large", map[string]int{"elapsed_ms": 120000}, nil, http.StatusBadRequest, -1},
		{"real-time session", map[string]int{"elapsed_ms": 16}, service.ErrManualClockRequired, http.StatusBadRequest, 16 * time.Millisecond},
		{"missing session", map[string]int{"elapsed_ms": 16}, notFound("abcd"), http.StatusNotFound, 16 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := time.Duration(-1)
			mockService := &MockGameService{
				TickFunc: func(ctx context.Context, sessionID string, elapsed time.Duration) (*service.GameView, error) {
					got = elapsed
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return testView(sessionID), nil
				},
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/abcd/tick", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got != tt.expectedDelta {
				t.Errorf("Expected elapsed %v, got %v", tt.expectedDelta, got)
			}
		})
	}
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				{ConfigID: "classic", Name: "Classic", GridSize: 16},
				{ConfigID: "turbo", Name: "Turbo", GridSize: 16, SpeedFactor: 2},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var configs []service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 2 || configs[1].ConfigID != "turbo" {
		t.Errorf("Unexpected configs: %+v", configs)
	}
}

func TestGetConfig(t *testing.T) {
	mockService := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "classic" {
				return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configName)
			}
			return engine.DefaultGameConfig(), nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		path string
		want int
	}{
		{"/api/configs/classic", http.StatusOK},
		{"/api/configs/classic.json", http.StatusOK},
		{"/api/configs/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestCreateConfig(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		saveErr        error
		expectedStatus int
		expectedID     string
	}{
		{
			name:           "derives id from name",
			body:           map[string]interface{}{"name": "Big Arena", "description": "d", "grid_size": 32},
			expectedStatus: http.StatusCreated,
			expectedID:     "big-arena",
		},
		{
			name:           "explicit id",
			body:           map[string]interface{}{"config_id": "mine", "name": "Mine", "description": "d", "grid_size": 12},
			expectedStatus: http.StatusCreated,
			expectedID:     "mine",
		},
		{
			name:           "missing name",
			body:           map[string]interface{}{"grid_size": 12},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid config",
			body:           map[string]interface{}{"name": "Tiny", "description": "d", "grid_size": 2},
			saveErr:        config.ErrInvalidConfig,
			expectedStatus: http.StatusBadRequest,
			expectedID:     "tiny",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			savedID := ""
			mockService := &MockGameService{
				SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
					savedID = configName
					if cfg.StepIntervalMS != engine.DefaultStepIntervalMS {
						t.Errorf("Expected defaults applied before save, got step interval %d", cfg.StepIntervalMS)
					}
					return tt.saveErr
				},
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/configs", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if savedID != tt.expectedID {
				t.Errorf("Expected config saved as %q, got %q", tt.expectedID, savedID)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	var resp map[string]string
	parseResponse(t, w, &resp)
	if w.Code != http.StatusOK || resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %d %v", w.Code, resp)
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, notFound(sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// End-to-end tests against the real service stack

func setupLiveServer(t *testing.T) (*httptest.Server, *websocket.Hub) {
	t.Helper()
	dir := t.TempDir()
	data, _ := json.Marshal(engine.DefaultGameConfig())
	if err := os.WriteFile(filepath.Join(dir, "classic.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	sessions := session.NewManager()
	t.Cleanup(sessions.Close)

	gameService := service.NewGameService(sessions, configs)
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	gameService.SetBroadcaster(hub)

	server := httptest.NewServer(NewServer(gameService, hub))
	t.Cleanup(server.Close)
	return server, hub
}

func postJSON(t *testing.T, url string, body interface{}, target interface{}) int {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if target != nil {
		json.NewDecoder(resp.Body).Decode(target)
	}
	return resp.StatusCode
}

func TestManualClockGame(t *testing.T) {
	server, _ := setupLiveServer(t)
	base := server.URL + "/api/sessions"

	var info service.SessionInfo
	if code := postJSON(t, base, map[string]interface{}{"session_id": "e2e", "manual_clock": true, "seed": 1}, &info); code != http.StatusCreated {
		t.Fatalf("Expected 201 creating session, got %d", code)
	}
	if info.Game.Simulation.Phase != engine.PhaseIdle {
		t.Errorf("Expected idle session, got %v", info.Game.Simulation.Phase)
	}

	var view service.GameView
	postJSON(t, base+"/e2e/start", nil, &view)
	if !view.State.Running {
		t.Fatal("Expected run to start")
	}

	stepMS := engine.DefaultGameConfig().StepInterval().Milliseconds() + 1
	postJSON(t, base+"/e2e/tick", map[string]int64{"elapsed_ms": stepMS}, &view)
	if view.Simulation.Steps != 1 {
		t.Fatalf("Expected one step, got %d", view.Simulation.Steps)
	}
	if head := view.Simulation.Body[0]; head != (engine.Position{X: 8, Y: 11}) {
		t.Errorf("Expected head at (8,11), got %v", head)
	}

	postJSON(t, base+"/e2e/turn", map[string]string{"turn": "left"}, nil)
	postJSON(t, base+"/e2e/tick", map[string]int64{"elapsed_ms": stepMS}, &view)
	if view.Simulation.Heading != engine.Left {
		t.Errorf("Expected heading left after turn, got %v", view.Simulation.Heading)
	}

	// Steer into the left wall
	for i := 0; i < 20 && view.State.Running; i++ {
		postJSON(t, base+"/e2e/tick", map[string]int64{"elapsed_ms": stepMS}, &view)
	}
	if view.State.Running || view.Simulation.Phase != engine.PhaseDead {
		t.Errorf("Expected the run to end at the wall, got phase %v", view.Simulation.Phase)
	}
	if view.CollisionCause != "wall" {
		t.Errorf("Expected wall collision, got %q", view.CollisionCause)
	}
}

func TestRealTimeSessionRejectsTick(t *testing.T) {
	server, _ := setupLiveServer(t)

	var info service.SessionInfo
	postJSON(t, server.URL+"/api/sessions", map[string]string{"session_id": "live"}, &info)

	var resp map[string]string
	code := postJSON(t, server.URL+"/api/sessions/live/tick", map[string]int{"elapsed_ms": 10}, &resp)
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 ticking a real-time session, got %d", code)
	}
}

func TestWebSocketReceivesFrames(t *testing.T) {
	server, hub := setupLiveServer(t)
	base := server.URL + "/api/sessions"
	postJSON(t, base, map[string]interface{}{"session_id": "watch", "manual_clock": true}, nil)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=WATCH"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("watch") != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	postJSON(t, base+"/watch/start", nil, nil)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	var message struct {
		SessionID string           `json:"session_id"`
		Event     string           `json:"event"`
		GameState service.GameView `json:"game_state"`
	}
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal frame: %v", err)
	}
	if message.Event != websocket.EventStateUpdate || message.SessionID != "watch" {
		t.Errorf("Unexpected message: %s", data)
	}
	if !message.GameState.State.Running {
		t.Error("Expected the start frame to report a running game")
	}
}
