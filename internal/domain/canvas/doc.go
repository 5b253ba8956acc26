// Package canvas implements the host side of a multi-window canvas.
//
// A canvas holds several embedded windows. Each window reports pointer
// gestures in its own local coordinates; the host page reports its own
// pointer events in viewport coordinates. Both streams are normalized into
// canvas coordinates and fed to one drag state machine.
//
// Components:
//   - Geometry: local/viewport → canvas conversion over a live Layout
//   - SelectionSet: ordered set of selected window ids
//   - DragSession: origin point plus frozen start positions of the selection
//   - WindowStore: authoritative window records, replaced whole on change
//   - Frame: derived bounding box of the selection with its drag handle
//
// Drag rule: a moved window is always placed at start + (current - origin),
// never at previous + step, so any number of intermediate moves yields the
// same result. Only one session exists at a time across both sources.
//
// Example Usage:
//
//	c, _ := canvas.New("cnv_1", windows, canvas.Options{Logger: logger})
//	out, err := c.Dispatch(msg)
package canvas
