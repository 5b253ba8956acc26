package canvas

// Scene is the host page's layout as last reported by the browser: where the
// canvas element sits in the viewport, which window wrappers are mounted and
// the measured size of auto-sized windows. Wrapper rectangles are derived
// from the store on every call, so they follow a drag as it happens.
type Scene struct {
	store    *WindowStore
	viewport *Rect
	mounted  map[string]Size
}

// NewScene creates an empty scene over store; nothing is mounted yet
func NewScene(store *WindowStore) *Scene {
	return &Scene{
		store:   store,
		mounted: make(map[string]Size),
	}
}

// SetViewport records the canvas element's rectangle
func (s *Scene) SetViewport(r Rect) {
	s.viewport = &r
}

// Mount marks a window wrapper as present. measured is the rendered size for
// auto-sized windows and may be zero when unknown.
func (s *Scene) Mount(id string, measured Size) {
	s.mounted[id] = measured
}

// Unmount marks a window wrapper as removed
func (s *Scene) Unmount(id string) {
	delete(s.mounted, id)
}

// Mounted reports whether id's wrapper is present
func (s *Scene) Mounted(id string) bool {
	_, ok := s.mounted[id]
	return ok
}

// CanvasRect implements Layout
func (s *Scene) CanvasRect() (Rect, error) {
	if s.viewport == nil {
		return Rect{}, ErrNotMounted
	}
	return *s.viewport, nil
}

// WindowRect implements Layout
func (s *Scene) WindowRect(id string) (Rect, error) {
	measured, ok := s.mounted[id]
	if !ok || s.viewport == nil {
		return Rect{}, ErrNotMounted
	}
	w, ok := s.store.Get(id)
	if !ok {
		return Rect{}, ErrUnknownWindow
	}
	size := w.Size
	if size.Auto {
		size = measured
	}
	return Rect{
		Left:   s.viewport.Left + w.Position.X,
		Top:    s.viewport.Top + w.Position.Y,
		Width:  size.Width,
		Height: size.Height,
	}, nil
}
