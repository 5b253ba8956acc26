// Package ws streams a canvas over a WebSocket.
//
// Each inbound text frame is one protocol envelope: gestures posted by
// embedded windows and the host page's own pointer, mount and viewport
// events. After every applied change the connection receives a "state"
// envelope with the canvas snapshot. Slow connections skip intermediate
// versions rather than delay the canvas.
//
// Message Types (Client → Server):
//   - click, dragStart, drag, dragEnd, resize: embedded window gestures
//   - viewport, mount, unmount: host layout
//   - handleDown, pointerMove, pointerUp, canvasClick: host pointer events
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - state: canvas snapshot
//   - pong: reply to ping
//   - error: undecodable or unknown frame
//
// A handle drag started on a connection is released when that connection
// drops, which also removes the canvas's viewport listeners.
//
// Example Usage:
//
//	handler := ws.NewHandler(manager, ws.Config{PingInterval: 30 * time.Second}, logger)
//	router.GET("/canvases/:id/stream", handler.HandleConnection)
package ws
