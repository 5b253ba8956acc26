package canvas

import (
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/protocol"
)

func TestGroupDragScenario(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	selectBoth(t, c)

	// local (200,200) in A is canvas (300,300)
	out := send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 200, Y: 200})
	require.True(t, out.Applied, "reason: %s", out.Reason)

	// A has not moved yet, so canvas (340,360) is local (240,260)
	out = send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "A", X: 240, Y: 260})
	require.True(t, out.Applied, "reason: %s", out.Reason)

	assert.Equal(t, Point{X: 140, Y: 160}, position(t, c, "A"))
	assert.Equal(t, Point{X: 540, Y: 160}, position(t, c, "B"))

	out = send(t, c, protocol.TypeDragEnd, protocol.DragEndData{IframeID: "A"})
	assert.True(t, out.Applied)
	assert.False(t, c.Snapshot().Dragging)
}

func TestDragFollowsMovingWindow(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "A"})

	send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 10, Y: 10})
	// the pointer stays at the same spot inside A while A moves under it
	for i := 1; i <= 5; i++ {
		send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "A", X: 20, Y: 10})
		assert.Equal(t, Point{X: 100 + float64(10*i), Y: 100}, position(t, c, "A"))
	}
}

func TestDragRigidityIndependentOfIntermediateMoves(t *testing.T) {
	layout := &fixedLayout{
		canvas: &Rect{Left: 0, Top: 0, Width: 2000, Height: 2000},
		windows: map[string]Rect{
			"A": {Left: 100, Top: 100, Width: 300, Height: 200},
			"B": {Left: 500, Top: 100, Width: 300, Height: 200},
		},
	}

	paths := [][]Point{
		{{X: 240, Y: 260}},
		{{X: 201, Y: 201}, {X: 215, Y: 230}, {X: 240, Y: 260}},
		{{X: 500, Y: -40}, {X: -3.25, Y: 17.5}, {X: 240, Y: 260}, {X: 240, Y: 260}},
	}

	for _, path := range paths {
		c := newTestCanvas(t, twoWindows(), Options{Layout: layout})
		selectBoth(t, c)
		send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 200, Y: 200})
		for _, p := range path {
			send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "A", X: p.X, Y: p.Y})
		}
		assert.Equal(t, Point{X: 140, Y: 160}, position(t, c, "A"), "path %v", path)
		assert.Equal(t, Point{X: 540, Y: 160}, position(t, c, "B"), "path %v", path)
	}
}

func TestSecondDragStartKeepsSession(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	selectBoth(t, c)
	send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 200, Y: 200})

	c.mu.Lock()
	origin := c.drag.session.Origin
	starts := maps.Clone(c.drag.session.StartPositions)
	c.mu.Unlock()

	send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "A", X: 250, Y: 250})

	tests := []struct {
		name string
		typ  protocol.Type
		data interface{}
	}{
		{"same window", protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1}},
		{"other window", protocol.TypeDragStart, protocol.DragData{IframeID: "B", X: 5, Y: 5}},
		{"handle", protocol.TypeHandleDown, protocol.PointerData{X: 900, Y: 900}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := send(t, c, tt.typ, tt.data)
			assert.False(t, out.Applied)
			assert.Equal(t, ReasonConflictingSession, out.Reason)

			c.mu.Lock()
			defer c.mu.Unlock()
			assert.Equal(t, origin, c.drag.session.Origin)
			assert.Equal(t, starts, c.drag.session.StartPositions)
			assert.Equal(t, "A", c.drag.session.Source)
		})
	}
}

func TestDragEndWithoutSession(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	before := c.Snapshot()

	out, err := c.Dispatch(protocol.MustNew(protocol.TypeDragEnd, protocol.DragEndData{IframeID: "A"}))
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, ReasonOutOfOrder, out.Reason)

	assert.Equal(t, before, c.Snapshot())
}

func TestDragMoveWithoutSession(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "A"})
	out := send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "A", X: 50, Y: 50})
	assert.Equal(t, ReasonOutOfOrder, out.Reason)
	assert.Equal(t, Point{X: 100, Y: 100}, position(t, c, "A"))
}

func TestDragStartRequiresSelection(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())

	out := send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})
	assert.Equal(t, ReasonNotSelected, out.Reason)

	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "B"})
	out = send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})
	assert.Equal(t, ReasonNotSelected, out.Reason)
	assert.False(t, c.Snapshot().Dragging)
}

func TestConsumedGesturesAreIgnored(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "A"})

	out := send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1, IsUsed: true})
	assert.Equal(t, ReasonConsumed, out.Reason)
	assert.False(t, c.Snapshot().Dragging)

	send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})
	out = send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "A", X: 90, Y: 90, IsUsed: true})
	assert.Equal(t, ReasonConsumed, out.Reason)
	assert.Equal(t, Point{X: 100, Y: 100}, position(t, c, "A"))
}

func TestDragFromUnmountedWindowIsDropped(t *testing.T) {
	c := newTestCanvas(t, twoWindows(), Options{})
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "A"})

	out := send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})
	assert.Equal(t, ReasonNotMounted, out.Reason)

	send(t, c, protocol.TypeViewport, protocol.ViewportData{Width: 800, Height: 600})
	out = send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})
	assert.Equal(t, ReasonNotMounted, out.Reason)

	send(t, c, protocol.TypeMount, protocol.MountData{IframeID: "A"})
	out = send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})
	assert.True(t, out.Applied)
}

func TestUnmountEndsOwnedSession(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	selectBoth(t, c)
	send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})

	out := send(t, c, protocol.TypeUnmount, protocol.UnmountData{IframeID: "B"})
	assert.True(t, out.Applied)
	assert.True(t, c.Snapshot().Dragging, "unmounting a non-owner keeps the session")

	send(t, c, protocol.TypeUnmount, protocol.UnmountData{IframeID: "A"})
	assert.False(t, c.Snapshot().Dragging)

	out = send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "A", X: 5, Y: 5})
	assert.False(t, out.Applied)
}

func TestOnlyOwnerMovesOrEndsSession(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	selectBoth(t, c)
	send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 200, Y: 200})

	out := send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "B", X: 0, Y: 0})
	assert.Equal(t, ReasonNotOwner, out.Reason)
	out = send(t, c, protocol.TypeDragEnd, protocol.DragEndData{IframeID: "B"})
	assert.Equal(t, ReasonNotOwner, out.Reason)
	assert.True(t, c.Snapshot().Dragging)
	assert.Equal(t, Point{X: 500, Y: 100}, position(t, c, "B"))
}

func TestResizeDuringDragOfAnotherWindow(t *testing.T) {
	c := newMountedCanvas(t, twoWindows())
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "B"})
	send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "B", X: 10, Y: 10})
	send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "B", X: 30, Y: 40})
	require.Equal(t, Point{X: 520, Y: 130}, position(t, c, "B"))

	out := send(t, c, protocol.TypeResize, protocol.ResizeData{IframeID: "A", Width: 640, Height: 480})
	assert.True(t, out.Applied)

	// B moved by (20,30); the next report is at the same local spot
	send(t, c, protocol.TypeDrag, protocol.DragData{IframeID: "B", X: 30, Y: 40})
	assert.Equal(t, Point{X: 540, Y: 160}, position(t, c, "B"))
	assert.Equal(t, Point{X: 100, Y: 100}, position(t, c, "A"))

	snap := c.Snapshot()
	assert.Equal(t, FixedSize(640, 480), snap.Windows[0].Size)
}

func TestDragSessionRecordsMetrics(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &recorder{}
	c := newTestCanvas(t, twoWindows(), Options{
		Recorder: rec,
		Clock: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	send(t, c, protocol.TypeViewport, protocol.ViewportData{Width: 800, Height: 600})
	send(t, c, protocol.TypeMount, protocol.MountData{IframeID: "A"})
	send(t, c, protocol.TypeClick, protocol.ClickData{IframeID: "A"})
	send(t, c, protocol.TypeDragStart, protocol.DragData{IframeID: "A", X: 1, Y: 1})
	send(t, c, protocol.TypeDragEnd, protocol.DragEndData{IframeID: "A"})

	assert.Equal(t, []string{"embedded"}, rec.starts)
	assert.Equal(t, []string{"embedded"}, rec.ends)
	assert.Equal(t, time.Second, rec.durations[0])
	assert.Contains(t, rec.dispatches, "dragEnd/applied/")
}

type recorder struct {
	dispatches []string
	starts     []string
	ends       []string
	durations  []time.Duration
}

func (r *recorder) RecordDispatch(msgType, outcome, reason string) {
	r.dispatches = append(r.dispatches, msgType+"/"+outcome+"/"+reason)
}

func (r *recorder) RecordDragStart(source string) { r.starts = append(r.starts, source) }

func (r *recorder) RecordDragEnd(source string, d time.Duration) {
	r.ends = append(r.ends, source)
	r.durations = append(r.durations, d)
}
