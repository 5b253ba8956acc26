package canvas

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/protocol"
)

// fixedLayout reports synthetic rectangles that never follow the store
type fixedLayout struct {
	canvas  *Rect
	windows map[string]Rect
}

func (l *fixedLayout) CanvasRect() (Rect, error) {
	if l.canvas == nil {
		return Rect{}, ErrNotMounted
	}
	return *l.canvas, nil
}

func (l *fixedLayout) WindowRect(id string) (Rect, error) {
	r, ok := l.windows[id]
	if !ok {
		return Rect{}, ErrNotMounted
	}
	return r, nil
}

func twoWindows() []Window {
	return []Window{
		{ID: "A", Source: "http://localhost:9000/", Position: Point{X: 100, Y: 100}, Size: FixedSize(300, 200)},
		{ID: "B", Source: "http://localhost:9001/", Position: Point{X: 500, Y: 100}, Size: FixedSize(300, 200)},
	}
}

func newTestCanvas(t *testing.T, windows []Window, opts Options) *Canvas {
	t.Helper()
	c, err := New("cnv_test", windows, opts)
	require.NoError(t, err)
	return c
}

// newMountedCanvas returns a scene-backed canvas whose viewport sits at
// (20, 40) with every window mounted
func newMountedCanvas(t *testing.T, windows []Window) *Canvas {
	t.Helper()
	c := newTestCanvas(t, windows, Options{})
	send(t, c, protocol.TypeViewport, protocol.ViewportData{Left: 20, Top: 40, Width: 1600, Height: 1000})
	for _, w := range windows {
		send(t, c, protocol.TypeMount, protocol.MountData{IframeID: w.ID})
	}
	return c
}

func send(t *testing.T, c *Canvas, typ protocol.Type, payload interface{}) Outcome {
	t.Helper()
	out, err := c.Dispatch(protocol.MustNew(typ, payload))
	require.NoError(t, err)
	return out
}

func position(t *testing.T, c *Canvas, id string) Point {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.store.Get(id)
	require.True(t, ok, "window %s missing", id)
	return w.Position
}

func selectBoth(t *testing.T, c *Canvas) {
	t.Helper()
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "A"})
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "B", ShiftKey: true})
}
