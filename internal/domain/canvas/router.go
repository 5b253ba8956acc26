package canvas

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/protocol"
)

// Dispatch routes one inbound message to its handler. Gesture noise never
// produces an error; the returned error is reserved for undecodable payloads.
func (c *Canvas) Dispatch(msg protocol.Message) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ignored(ReasonClosed), ErrClosed
	}

	out, err := c.route(msg)
	var snap Snapshot
	if err == nil && out.Applied {
		snap = c.commitLocked()
	}
	c.mu.Unlock()

	if err != nil {
		c.record(msg.Type, ignored(ReasonInvalid))
		return ignored(ReasonInvalid), err
	}
	c.record(msg.Type, out)
	if out.Applied {
		c.publish(snap)
	}
	return out, nil
}

func (c *Canvas) record(t protocol.Type, out Outcome) {
	if !out.Applied {
		c.logger.Debug("message ignored",
			zap.String("type", string(t)),
			zap.String("reason", string(out.Reason)),
		)
	}
	if c.recorder != nil {
		c.recorder.RecordDispatch(string(t), out.Label(), string(out.Reason))
	}
}

func (c *Canvas) route(msg protocol.Message) (Outcome, error) {
	switch msg.Type {
	case protocol.TypeClick:
		var d protocol.ClickData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		return c.click(d), nil

	case protocol.TypeDragStart, protocol.TypeDrag:
		var d protocol.DragData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		if msg.Type == protocol.TypeDragStart {
			return c.embeddedDragStart(d), nil
		}
		return c.embeddedDrag(d), nil

	case protocol.TypeDragEnd:
		var d protocol.DragEndData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		return c.embeddedDragEnd(d), nil

	case protocol.TypeResize:
		var d protocol.ResizeData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		return c.resize(d), nil

	case protocol.TypeViewport:
		var d protocol.ViewportData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		c.scene.SetViewport(Rect{Left: d.Left, Top: d.Top, Width: d.Width, Height: d.Height})
		return applied(), nil

	case protocol.TypeMount:
		var d protocol.MountData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		return c.mount(d), nil

	case protocol.TypeUnmount:
		var d protocol.UnmountData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		return c.unmount(d), nil

	case protocol.TypeHandleDown:
		var d protocol.PointerData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		return c.handleDown(Point{X: d.X, Y: d.Y}), nil

	case protocol.TypePointerMove, protocol.TypePointerUp:
		var d protocol.PointerData
		if err := msg.Payload(&d); err != nil {
			return Outcome{}, err
		}
		kind := ListenPointerMove
		if msg.Type == protocol.TypePointerUp {
			kind = ListenPointerUp
		}
		return c.listeners.fire(kind, Point{X: d.X, Y: d.Y}), nil

	case protocol.TypeCanvasClick:
		return c.canvasClick(), nil
	}
	return ignored(ReasonInvalid), nil
}

func (c *Canvas) click(d protocol.ClickData) Outcome {
	if !c.store.Has(d.IframeID) {
		return ignored(ReasonStaleTarget)
	}
	c.selection.Select(d.IframeID, d.ShiftKey)
	return applied()
}

// canvasClick clears the selection, except for the click the browser
// synthesizes right after a handle drag's pointer-up.
func (c *Canvas) canvasClick() Outcome {
	if c.justDragged {
		c.justDragged = false
		return ignored(ReasonSuppressed)
	}
	c.selection.Clear()
	return applied()
}

func (c *Canvas) resize(d protocol.ResizeData) Outcome {
	if !c.store.Has(d.IframeID) {
		return ignored(ReasonStaleTarget)
	}
	if !c.store.Resize(d.IframeID, d.Width, d.Height) {
		return ignored(ReasonInvalid)
	}
	return applied()
}

func (c *Canvas) mount(d protocol.MountData) Outcome {
	if !c.store.Has(d.IframeID) {
		return ignored(ReasonStaleTarget)
	}
	measured := FixedSize(d.Width, d.Height)
	if !measured.Valid() {
		measured = Size{}
	}
	c.scene.Mount(d.IframeID, measured)
	return applied()
}

func (c *Canvas) unmount(d protocol.UnmountData) Outcome {
	if !c.scene.Mounted(d.IframeID) {
		return ignored(ReasonStaleTarget)
	}
	c.scene.Unmount(d.IframeID)
	if s := c.drag.session; s != nil && s.Source == d.IframeID {
		c.endSessionLocked(c.drag.abort())
	}
	return applied()
}

func (c *Canvas) embeddedDragStart(d protocol.DragData) Outcome {
	switch {
	case !c.store.Has(d.IframeID):
		return ignored(ReasonStaleTarget)
	case d.IsUsed:
		return ignored(ReasonConsumed)
	case c.drag.Active():
		return ignored(ReasonConflictingSession)
	case !c.selection.Contains(d.IframeID):
		return ignored(ReasonNotSelected)
	}
	p, err := c.geo.ToCanvas(d.IframeID, Point{X: d.X, Y: d.Y})
	if err != nil {
		return ignored(ReasonNotMounted)
	}
	return c.transition(Gesture{Source: d.IframeID, Point: p, Phase: PhaseStart})
}

func (c *Canvas) embeddedDrag(d protocol.DragData) Outcome {
	switch {
	case !c.store.Has(d.IframeID):
		return ignored(ReasonStaleTarget)
	case d.IsUsed:
		return ignored(ReasonConsumed)
	case !c.drag.Active():
		return ignored(ReasonOutOfOrder)
	}
	p, err := c.geo.ToCanvas(d.IframeID, Point{X: d.X, Y: d.Y})
	if err != nil {
		return ignored(ReasonNotMounted)
	}
	return c.transition(Gesture{Source: d.IframeID, Point: p, Phase: PhaseMove})
}

func (c *Canvas) embeddedDragEnd(d protocol.DragEndData) Outcome {
	if !c.store.Has(d.IframeID) {
		return ignored(ReasonStaleTarget)
	}
	return c.transition(Gesture{Source: d.IframeID, Phase: PhaseEnd})
}

// handleDown starts a drag from the selection frame's handle and installs
// viewport listeners that live exactly as long as the session.
func (c *Canvas) handleDown(viewport Point) Outcome {
	if c.selection.Empty() {
		return ignored(ReasonEmptySelection)
	}
	if c.drag.Active() {
		return ignored(ReasonConflictingSession)
	}
	p, err := c.geo.ViewportToCanvas(viewport)
	if err != nil {
		return ignored(ReasonNotMounted)
	}
	out := c.transition(Gesture{Source: HandleSource, Point: p, Phase: PhaseStart})
	if !out.Applied {
		return out
	}

	c.listeners.add(ListenPointerMove, func(vp Point) Outcome {
		p, err := c.geo.ViewportToCanvas(vp)
		if err != nil {
			return ignored(ReasonNotMounted)
		}
		return c.transition(Gesture{Source: HandleSource, Point: p, Phase: PhaseMove})
	})
	c.listeners.add(ListenPointerUp, func(Point) Outcome {
		out := c.transition(Gesture{Source: HandleSource, Phase: PhaseEnd})
		c.listeners.removeAll()
		c.justDragged = true
		return out
	})
	return out
}

// transition is the single drag state machine entry shared by both sources
func (c *Canvas) transition(g Gesture) Outcome {
	reason, ended := c.drag.step(g, c.selection, c.store)
	if reason != "" {
		return ignored(reason)
	}

	out := applied()
	switch g.Phase {
	case PhaseStart:
		out.Session = c.drag.session.Seq
		c.logger.Debug("drag session started",
			zap.Uint64("session", out.Session),
			zap.String("source", g.Source),
			zap.Float64("x", g.Point.X),
			zap.Float64("y", g.Point.Y),
		)
		if c.recorder != nil {
			c.recorder.RecordDragStart(sourceKind(g.Source))
		}
	case PhaseEnd:
		c.endSessionLocked(ended)
	}
	return out
}
