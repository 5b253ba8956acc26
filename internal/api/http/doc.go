// Package http provides the REST API for canvases.
//
// Endpoints:
//   - Health: / and /health
//   - Canvases: GET/POST /canvases, GET/DELETE /canvases/:id
//   - Messages: POST /canvases/:id/messages dispatches one envelope
//
// POST /canvases accepts {"name", "windows"} as JSON, or a layout document
// with Content-Type application/yaml or application/toml.
//
// Example Usage:
//
//	handlers := http.NewHandlers(manager, metrics, logger, "0.1.0")
//	router.POST("/canvases", handlers.CreateCanvas)
//	router.POST("/canvases/:id/messages", handlers.DispatchMessage)
package http
