// Package service provides the business logic layer for the snake game server.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup for new sessions
//   - Run control (start, turn, manual ticks)
//   - Frame fan-out to connected clients
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Broadcaster receives every frame a session produces.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game driver. Each session owns one play.Game. Sessions created with the
// real-time clock step on their own loop; manual-clock sessions only advance
// when Tick is called, which makes them suitable for agents and tests.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//	gameService.SetBroadcaster(hub)
//
//	info, err := gameService.CreateSession(ctx, service.CreateOptions{ConfigName: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.StartRun(ctx, info.ID)
//	gameService.Turn(ctx, info.ID, engine.TurnLeft)
package service
