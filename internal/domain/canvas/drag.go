package canvas

import "time"

// Phase is the stage of a drag gesture
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// HandleSource identifies gestures coming from the selection frame's drag handle.
// Embedded-content gestures use the reporting window's id as their source.
const HandleSource = "@handle"

// Gesture is the normalized input to the drag state machine
type Gesture struct {
	Source string
	Point  Point // canvas coordinates; ignored for PhaseEnd
	Phase  Phase
}

// DragSession is an in-progress rigid-group translation
type DragSession struct {
	// Seq numbers sessions within a canvas, starting at 1
	Seq            uint64
	Source         string
	Origin         Point
	StartPositions map[string]Point
	StartedAt      time.Time
}

// Offset returns where id should sit when the pointer is at current
func (d *DragSession) Offset(id string, current Point) (Point, bool) {
	start, ok := d.StartPositions[id]
	if !ok {
		return Point{}, false
	}
	return start.Add(current.Sub(d.Origin)), true
}

// dragMachine owns the single optional session of a canvas
type dragMachine struct {
	session *DragSession
	seq     uint64
	now     func() time.Time
}

// Active reports whether a session is in progress
func (m *dragMachine) Active() bool { return m.session != nil }

// step applies one gesture. The returned reason is empty when the gesture
// changed state; ended is the session closed by an end gesture.
func (m *dragMachine) step(g Gesture, sel *SelectionSet, store *WindowStore) (reason Reason, ended *DragSession) {
	switch g.Phase {
	case PhaseStart:
		if m.session != nil {
			return ReasonConflictingSession, nil
		}
		if sel.Empty() {
			return ReasonEmptySelection, nil
		}
		m.seq++
		m.session = &DragSession{
			Seq:            m.seq,
			Source:         g.Source,
			Origin:         g.Point,
			StartPositions: store.Positions(sel.IDs()),
			StartedAt:      m.now(),
		}
		return "", nil

	case PhaseMove:
		if m.session == nil {
			return ReasonOutOfOrder, nil
		}
		if m.session.Source != g.Source {
			return ReasonNotOwner, nil
		}
		for _, id := range sel.IDs() {
			if pos, ok := m.session.Offset(id, g.Point); ok {
				store.Move(id, pos)
			}
		}
		return "", nil

	case PhaseEnd:
		if m.session == nil {
			return ReasonOutOfOrder, nil
		}
		if m.session.Source != g.Source {
			return ReasonNotOwner, nil
		}
		ended = m.session
		m.session = nil
		return "", ended
	}
	return ReasonInvalid, nil
}

// abort ends the session without a gesture, returning it if one was active
func (m *dragMachine) abort() *DragSession {
	ended := m.session
	m.session = nil
	return ended
}
