// Package api provides HTTP REST API handlers for the snake game server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session
//   - GET /api/sessions - List sessions (?sort=created|accessed|score&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session and stop its game loop
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current frame
//   - POST /api/sessions/{id}/start - Start a run (no-op while running)
//   - POST /api/sessions/{id}/turn - Queue a turn for the next step
//   - POST /api/sessions/{id}/tick - Advance a manual-clock session
//
// Configuration:
//   - GET /api/configs - List available presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /api/health - Health check
//   - GET /ws?session={id} - WebSocket frame stream
//   - / - Static files from ./static/
//
// Request Format:
//
//	POST /api/sessions      {"config_id": "turbo", "manual_clock": true, "seed": 7}
//	POST /api/.../turn      {"turn": "left"}
//	POST /api/.../tick      {"elapsed_ms": 167}
//
// Sessions created without manual_clock are stepped by the server in real
// time; tick requests against them are rejected.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the error:
// 404 for unknown sessions and presets, 409 for duplicate session IDs, 400
// for bad input and 500 otherwise.
//
//	{"error": "session 'ab12': session not found"}
package api
