package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Snake Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snake Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Steer the snake around the grid eating fruit. Each fruit makes the snake one
cell longer. Hitting a wall or the snake's own body ends the run.

AVAILABLE TOOLS:
- create_session: Create a game session (use manual_clock to play turn by turn)
- list_sessions / get_session / delete_session: Manage sessions
- game_state: Render the grid and the score
- start_run: Start a new run
- turn: Queue a left or right turn for the next step
- tick: Advance a manual-clock session by elapsed milliseconds
- list_configs: List available presets
- game_instructions: Full rules`),
	)

	c.registerTools()
}

func sessionIDSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (optional, see list_configs)",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to use (optional, generated when omitted)",
				},
				"manual_clock": map[string]interface{}{
					"type":        "boolean",
					"description": "Advance the game only through the tick tool instead of in real time",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for fruit placement (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and stop its game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with a rendered grid",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_run",
		Description: "Start a new run. Does nothing while a run is in progress.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDSchema()},
			Required:   []string{"session_id"},
		},
	}, c.handleStartRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn",
		Description: "Queue a turn relative to the current heading. Only the last turn before a step is applied.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
				"turn": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"left", "right"},
					"description": "Turn direction",
				},
			},
			Required: []string{"session_id", "turn"},
		},
	}, c.handleTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance a manual-clock session by elapsed milliseconds",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
				"elapsed_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Elapsed frame time in milliseconds. A step happens once more than one step interval has accumulated.",
				},
			},
			Required: []string{"session_id", "elapsed_ms"},
		},
	}, c.handleTick)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers single JSON-RPC messages posted to the MCP endpoint
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	if response == nil {
		// Notifications have no response
		w.WriteHeader(http.StatusAccepted)
		return
	}
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if sessionID, _ := args["session_id"].(string); sessionID != "" {
		body["session_id"] = sessionID
	}
	if manual, _ := args["manual_clock"].(bool); manual {
		body["manual_clock"] = true
	}
	if seed, ok := args["seed"].(float64); ok {
		body["seed"] = int64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	clockMode := "real time"
	if session.ManualClock {
		clockMode = "manual (use the tick tool)"
	}
	result := fmt.Sprintf("Created session: %s\nConfig: %s\nClock: %s\n\n%s",
		session.ID, session.ConfigID, clockMode, formatGameView(session.Game))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		best := 0
		if s.Game != nil {
			best = s.Game.State.BestScore
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Best: %d, Created: %s)\n",
			s.ID, s.ConfigID, best, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted", sessionID)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var view service.GameView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleStartRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var view service.GameView
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/start"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Run started\n\n" + formatGameView(&view)), nil
}

func (c *Client) handleTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	turn, _ := args["turn"].(string)

	var view service.GameView
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/turn"), map[string]string{"turn": turn}, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Queued turn %s (heading %s, applied on the next step)", turn, view.Simulation.Heading)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	elapsed, ok := args["elapsed_ms"].(float64)
	if !ok {
		return mcp.NewToolResultError("elapsed_ms is required"), nil
	}

	var view service.GameView
	body := map[string]int64{"elapsed_ms": int64(elapsed)}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tick"), body, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (%s)\n  %s\n  Grid: %dx%d, Steps/sec: %.1f\n\n",
			config.ConfigID, config.Name, config.Description,
			config.GridSize, config.GridSize, config.StepsPerSecond)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Snake Game - Complete Instructions

GAME OBJECTIVE:
Eat as much fruit as possible without crashing.

GAME MECHANICS:
• The snake moves one cell per step in its current heading
• Turns are relative: left and right rotate the heading by 90 degrees
• Only the most recent turn queued before a step is applied; it is then cleared
• Eating fruit grows the snake by one cell and scores 1 point
• Every 5th fruit spawns a golden fruit worth 10 points that disappears after
  20 steps
• Leaving the grid or running into the body ends the run
• Moving into the cell the tail is leaving is allowed

GRID LEGEND:
• H - Snake head
• o - Snake body
• * - Fruit
• G - Golden fruit
• . - Empty cell

TIMING:
• Real-time sessions step on their own once started (6 steps/sec on classic)
• Manual-clock sessions step only when tick is called; a step happens when the
  accumulated elapsed time exceeds the step interval, and the accumulator
  then restarts from zero

API USAGE:
1. create_session with manual_clock=true to play turn by turn
2. start_run
3. turn left/right as needed, then tick with elapsed_ms a little above the
   step interval to take exactly one step
4. game_state to inspect the grid
5. start_run again after a crash; best score is kept for the session`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameView(session.Game))
}

func formatGameView(view *service.GameView) string {
	if view == nil {
		return "No game state available"
	}

	sim := view.Simulation
	st := view.State

	var result strings.Builder
	fmt.Fprintf(&result, "Score: %d | Best: %d | Time: %s | Length: %d | Heading: %s | Steps: %d\n",
		st.Score, st.BestScore, st.Time, len(sim.Body), sim.Heading, sim.Steps)
	if sim.GoldenFruit != nil {
		fmt.Fprintf(&result, "Golden fruit at %s, %d steps left\n", sim.GoldenFruit.Position, sim.GoldenFruit.Life)
	}
	result.WriteString("\n")
	result.WriteString(renderGrid(sim))

	switch {
	case sim.Phase == engine.PhaseDead:
		result.WriteString("\nGAME OVER")
		if view.CollisionCause != "" {
			fmt.Fprintf(&result, " (hit %s)", view.CollisionCause)
		}
		result.WriteString(" - use start_run to play again")
	case !st.Running:
		result.WriteString("\nWaiting to start - use start_run")
	}

	return result.String()
}

// renderGrid draws the board one row per line
func renderGrid(sim engine.Snapshot) string {
	size := sim.GridSize
	if size <= 0 {
		return ""
	}

	cells := make([][]byte, size)
	for y := range cells {
		cells[y] = bytes.Repeat([]byte{'.'}, size)
	}
	put := func(p engine.Position, ch byte) {
		if p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size {
			cells[p.Y][p.X] = ch
		}
	}

	if sim.Fruit != nil {
		put(*sim.Fruit, '*')
	}
	if sim.GoldenFruit != nil {
		put(sim.GoldenFruit.Position, 'G')
	}
	for i := len(sim.Body) - 1; i >= 0; i-- {
		ch := byte('o')
		if i == 0 {
			ch = 'H'
		}
		put(sim.Body[i], ch)
	}

	var result strings.Builder
	for _, row := range cells {
		result.Write(row)
		result.WriteByte('\n')
	}
	return result.String()
}
