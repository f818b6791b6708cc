// Package session provides session management for the snake game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - One real-time game loop per session
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns a play.Game; unless the session was created with a manual
// clock, the manager runs the game's tick loop on its own goroutine and stops
// it when the session is deleted, expires or the manager is closed.
//
// Session Identifiers:
//
// Sessions use 4-character hexadecimal IDs for easy reference. Lookups are
// case-insensitive, and generated IDs are retried until unused.
//
// Sessions live in memory only. A restart of the server drops every session
// and its best score.
//
// Usage:
//
//	manager := session.NewManager()
//	defer manager.Close()
//
//	sess, err := manager.Create("", service.SessionOptions{
//		ConfigID: "classic",
//		Config:   engine.DefaultGameConfig(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess.Game.StartRun()
//	sess.Game.TurnLeft()
//
//	// Remove idle sessions
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
