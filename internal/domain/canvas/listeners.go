package canvas

// ListenerKind names a viewport-wide pointer listener
type ListenerKind string

const (
	ListenPointerMove ListenerKind = "pointermove"
	ListenPointerUp   ListenerKind = "pointerup"
)

// viewportListeners are the whole-viewport pointer listeners installed for
// the lifetime of a handle drag. Host pointer-move/up events reach the drag
// machine only through a registered listener.
type viewportListeners struct {
	handlers map[ListenerKind]func(Point) Outcome
}

func newViewportListeners() *viewportListeners {
	return &viewportListeners{handlers: make(map[ListenerKind]func(Point) Outcome)}
}

func (l *viewportListeners) add(kind ListenerKind, fn func(Point) Outcome) {
	l.handlers[kind] = fn
}

func (l *viewportListeners) removeAll() {
	for kind := range l.handlers {
		delete(l.handlers, kind)
	}
}

func (l *viewportListeners) fire(kind ListenerKind, p Point) Outcome {
	fn, ok := l.handlers[kind]
	if !ok {
		return ignored(ReasonNoListener)
	}
	return fn(p)
}

func (l *viewportListeners) count() int { return len(l.handlers) }

func (l *viewportListeners) kinds() []ListenerKind {
	out := make([]ListenerKind, 0, len(l.handlers))
	for _, kind := range []ListenerKind{ListenPointerMove, ListenPointerUp} {
		if _, ok := l.handlers[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}
