package ws

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/canvas"
)

// mailbox holds only the newest snapshot, so a slow socket skips
// intermediate versions instead of stalling the canvas
type mailbox struct {
	mu     sync.Mutex
	latest *canvas.Snapshot
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

// put never blocks
func (m *mailbox) put(s canvas.Snapshot) {
	m.mu.Lock()
	if m.latest == nil || s.Version > m.latest.Version {
		m.latest = &s
	}
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() (canvas.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return canvas.Snapshot{}, false
	}
	s := *m.latest
	m.latest = nil
	return s, true
}
