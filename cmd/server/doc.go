// Package main implements the realm server application.
//
// This is the entry point for the realm server, a real-time top-down
// shooter MMO backend. Clients connect over WebSocket, authenticate, pick
// or create a character, and join a shared instance (nexus hub, open
// realm, procedurally generated dungeon, or private vault) where a fixed
// tick loop simulates movement, combat, loot, and spawns and streams
// binary state snapshots back to every resident connection.
//
// # Architecture
//
// The server application follows a clean separation of concerns:
//
//   - Configuration loading and validation (via pkg/config)
//   - Logging setup and initialization
//   - Immutable content table loading (classes, weapons, abilities, armor,
//     rings, items, enemies) via pkg/content
//   - Durable account/character/vault persistence via pkg/persistence
//   - Game orchestration and the fixed-rate tick loop via pkg/server and
//     pkg/instance
//   - Per-connection protocol handling via pkg/session
//   - Server lifecycle management with graceful shutdown
//   - Signal handling for SIGINT and SIGTERM
//
// # Startup Sequence
//
// 1. Load configuration from environment variables with secure defaults
// 2. Configure logging based on LOG_LEVEL setting
// 3. Load content tables from CONTENT_DIR
// 4. Open the persistence store at DB_PATH
// 5. Construct the game server, bootstrapping the nexus and main realm
//    instances and starting the tick loop
// 6. Mount the WebSocket endpoint alongside health and metrics handlers
//    and start listening for connections
// 7. Handle shutdown signals gracefully, stopping the tick loop and
//    draining in-flight connections
//
// # Environment Variables
//
// The server supports the following environment variables:
//
//   - SERVER_PORT: HTTP server port (default: 8080)
//   - ALLOWED_ORIGINS: comma-separated list of allowed WebSocket origins
//   - LOG_LEVEL: Logging verbosity (debug, info, warn, error; default: info)
//   - CONTENT_DIR: Content table directory (default: ./content)
//   - DB_PATH: Persistence directory (default: ./data)
//   - SESSION_TOKEN_LIFETIME: Session token validity duration (default: 720h)
//
// # Usage
//
// Run the server with default settings:
//
//	./server
//
// Run with custom port and debug logging:
//
//	SERVER_PORT=9000 LOG_LEVEL=debug ./server
//
// # Graceful Shutdown
//
// The server handles SIGINT (Ctrl+C) and SIGTERM signals gracefully:
//
// 1. Close the done channel, which stops the tick loop and the autosave
// timer; no final autosave pass runs
// 2. Stop accepting new HTTP connections
// 3. Let in-flight requests complete within the shutdown timeout
// 4. Exit cleanly
//
// The shutdown process has a 30-second timeout before forcing exit.
package main
