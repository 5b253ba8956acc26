// Package main is the entry point for the canvas host server.
//
// The server keeps one canvas per workspace. Browsers stream gestures from
// embedded windows and the host page over a WebSocket and receive canvas
// state back; the same envelopes can be posted over REST.
//
// Architecture:
//
//	Browser host page ──ws──▶ canvas server ──▶ canvas (selection, drag, frame)
//	  └─ embedded windows (postMessage, forwarded by the host)
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Seed canvases from layout files
//	./server -port 8000 -layouts 'layouts/**/*.yaml'
//
//	# Development mode (colored logs, debug level)
//	LOG_DEV=true LOG_LEVEL=debug ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
