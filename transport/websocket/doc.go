// Package websocket provides WebSocket transport for the snake game server.
//
// The package uses a hub-and-spoke model where a central Hub owns all
// connections. Each client connection has a read goroutine that routes
// commands to the input handler and a write goroutine that drains the
// client's queue.
//
// Message Protocol:
//
//   - Incoming: {"action": "turn_left" | "turn_right" | "start"}
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "game_state": {...}}
//   - Errors:   {"session_id": "ab12", "event": "error", "data": "..."}
//
// Clients choose their session with the session query parameter
// (/ws?session=ab12). Frames are delivered only to clients of the same session,
// in the order they were broadcast.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.SetInputHandler(func(sessionID string, cmd websocket.Command) error {
//		...
//	})
//	gameService.SetBroadcaster(hub)
//
// A client whose queue fills up is disconnected rather than slowing the
// session's game loop.
package websocket
