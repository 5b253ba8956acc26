// Package client is a Go client for the canvas REST API, used by tools and
// integration tests to drive canvases without a browser.
package client
