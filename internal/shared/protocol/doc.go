// Package protocol defines the message envelope exchanged between the host
// page and the canvas service.
//
// Every frame is {"type": ..., "data": {...}}. Window content posts click,
// dragStart, drag, dragEnd and resize with coordinates local to the window.
// The host page forwards its own viewport, mount, unmount, handleDown,
// pointerMove, pointerUp and canvasClick events the same way. The service
// answers with state, pong and error envelopes.
//
// Decoding uses bytedance/sonic.
package protocol
