// Package mcp provides a Model Context Protocol server for the snake game.
//
// The server is a thin proxy: every tool call is translated into a request
// against the REST API, so MCP clients and browsers share the same sessions.
//
// MCP Tools:
//   - create_session: Create a session (config_id, session_id, manual_clock, seed)
//   - list_sessions: List all active sessions
//   - get_session: Get specific session details
//   - delete_session: Delete a session
//   - game_state: Current frame with a rendered grid
//   - start_run: Start a new run
//   - turn: Queue a left or right turn
//   - tick: Advance a manual-clock session
//   - list_configs: List available presets
//   - game_instructions: Full game rules
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the Client is an http.Handler answering JSON-RPC posts on /mcp
//
// Agents that want to reason step by step should create sessions with
// manual_clock, since real-time sessions keep moving between tool calls.
package mcp
