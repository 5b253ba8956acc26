// Package server assembles the canvas service: registry, REST handlers,
// canvas streams, middleware and the HTTP server lifecycle.
package server
