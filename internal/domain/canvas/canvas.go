package canvas

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed canvas
var ErrClosed = errors.New("canvas closed")

// Recorder receives dispatch and drag-session measurements
type Recorder interface {
	RecordDispatch(msgType, outcome, reason string)
	RecordDragStart(source string)
	RecordDragEnd(source string, duration time.Duration)
}

// Options configures a canvas
type Options struct {
	// FramePadding is added on every side of the selection frame.
	// Zero selects DefaultFramePadding; a negative value disables padding.
	FramePadding float64
	// Layout overrides the scene as the source of live rectangles
	Layout   Layout
	Logger   *zap.Logger
	Recorder Recorder
	Clock    func() time.Time
}

// Snapshot is the renderable state of a canvas at one version
type Snapshot struct {
	CanvasID        string         `json:"canvasId"`
	Version         uint64         `json:"version"`
	Windows         []Window       `json:"windows"`
	Selection       []string       `json:"selection"`
	Frame           *Frame         `json:"frame,omitempty"`
	Dragging        bool           `json:"dragging"`
	DragSource      string         `json:"dragSource,omitempty"`
	CaptureViewport bool           `json:"captureViewport"`
	Listeners       []ListenerKind `json:"listeners,omitempty"`
}

// Canvas is one host canvas instance. All of its state is private to the
// instance and every message is handled to completion under one lock, so
// handlers observe each other only between messages.
type Canvas struct {
	id        string
	createdAt time.Time

	mu          sync.Mutex
	store       *WindowStore
	scene       *Scene
	geo         *Geometry
	selection   *SelectionSet
	drag        dragMachine
	listeners   *viewportListeners
	justDragged bool
	padding     float64
	version     uint64
	closed      bool
	done        chan struct{}

	subsMu  sync.Mutex
	subs    map[uint64]func(Snapshot)
	nextSub uint64

	logger   *zap.Logger
	recorder Recorder
}

// New creates a canvas holding the given windows
func New(id string, windows []Window, opts Options) (*Canvas, error) {
	store, err := NewWindowStore(windows)
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	padding := opts.FramePadding
	switch {
	case padding == 0:
		padding = DefaultFramePadding
	case padding < 0:
		padding = 0
	}

	scene := NewScene(store)
	var layout Layout = scene
	if opts.Layout != nil {
		layout = opts.Layout
	}

	return &Canvas{
		id:        id,
		createdAt: clock(),
		store:     store,
		scene:     scene,
		geo:       NewGeometry(layout),
		selection: NewSelectionSet(),
		drag:      dragMachine{now: clock},
		listeners: newViewportListeners(),
		padding:   padding,
		done:      make(chan struct{}),
		subs:      make(map[uint64]func(Snapshot)),
		logger:    logger.With(zap.String("canvas_id", id)),
		recorder:  opts.Recorder,
	}, nil
}

// ID returns the canvas id
func (c *Canvas) ID() string { return c.id }

// CreatedAt returns when the canvas was created
func (c *Canvas) CreatedAt() time.Time { return c.createdAt }

// Snapshot returns the current state
func (c *Canvas) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// WindowCount returns the number of windows on the canvas
func (c *Canvas) WindowCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Done is closed when the canvas is closed
func (c *Canvas) Done() <-chan struct{} { return c.done }

// Subscribe registers fn to receive a snapshot after every applied change.
// fn runs on the dispatching goroutine and must not block.
func (c *Canvas) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

// ReleaseHandle ends the handle-originated drag numbered seq and removes its
// viewport listeners. Used when the host page that started the drag goes
// away. Any other session, including a later handle drag, is left alone.
func (c *Canvas) ReleaseHandle(seq uint64) bool {
	c.mu.Lock()
	s := c.drag.session
	if c.closed || s == nil || s.Source != HandleSource || s.Seq != seq {
		c.mu.Unlock()
		return false
	}
	c.endSessionLocked(c.drag.abort())
	c.listeners.removeAll()
	snap := c.commitLocked()
	c.mu.Unlock()

	c.publish(snap)
	return true
}

// Close ends any session, removes listeners and drops subscribers
func (c *Canvas) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	if ended := c.drag.abort(); ended != nil {
		c.endSessionLocked(ended)
	}
	c.listeners.removeAll()
	c.mu.Unlock()

	c.subsMu.Lock()
	c.subs = make(map[uint64]func(Snapshot))
	c.subsMu.Unlock()
}

// commitLocked bumps the version and captures the state to publish
func (c *Canvas) commitLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Canvas) snapshotLocked() Snapshot {
	snap := Snapshot{
		CanvasID:        c.id,
		Version:         c.version,
		Windows:         c.store.List(),
		Selection:       c.selection.IDs(),
		Frame:           computeFrame(c.selection.IDs(), c.geo, c.padding),
		Dragging:        c.drag.Active(),
		CaptureViewport: c.listeners.count() > 0,
		Listeners:       c.listeners.kinds(),
	}
	if c.drag.session != nil {
		snap.DragSource = c.drag.session.Source
	}
	return snap
}

func (c *Canvas) publish(snap Snapshot) {
	c.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Canvas) endSessionLocked(s *DragSession) {
	if s == nil {
		return
	}
	c.logger.Debug("drag session ended",
		zap.String("source", s.Source),
		zap.Int("windows", len(s.StartPositions)),
	)
	if c.recorder != nil {
		c.recorder.RecordDragEnd(sourceKind(s.Source), c.drag.now().Sub(s.StartedAt))
	}
}

func sourceKind(source string) string {
	if source == HandleSource {
		return "handle"
	}
	return "embedded"
}
