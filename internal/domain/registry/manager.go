package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/canvas"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/id"
)

var (
	ErrCanvasNotFound  = errors.New("canvas not found")
	ErrTooManyCanvases = errors.New("too many canvases")
)

// DefaultMaxCanvases bounds the registry when no limit is configured
const DefaultMaxCanvases = 64

// Summary describes a live canvas without its window state
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Windows   int       `json:"windows"`
	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats reports registry occupancy
type Stats struct {
	Active int `json:"active"`
	Max    int `json:"max"`
}

// Options configures canvases created by the manager
type Options struct {
	MaxCanvases  int
	FramePadding float64
	Logger       *zap.Logger
}

type entry struct {
	canvas *canvas.Canvas
	name   string
}

// Manager owns the live canvases
type Manager struct {
	mu       sync.RWMutex
	canvases map[string]*entry // Protected by mu
	opts     Options
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a new canvas manager
func NewManager(opts Options) *Manager {
	if opts.MaxCanvases <= 0 {
		opts.MaxCanvases = DefaultMaxCanvases
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		canvases: make(map[string]*entry),
		opts:     opts,
		logger:   logger,
	}
}

// WithMetrics adds metrics tracking to the manager and its canvases
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Create registers a new canvas holding windows
func (m *Manager) Create(name string, windows []canvas.Window) (*canvas.Canvas, error) {
	cid := id.NewCanvasID().String()

	opts := canvas.Options{
		FramePadding: m.opts.FramePadding,
		Logger:       m.logger,
	}
	if m.metrics != nil {
		opts.Recorder = m.metrics
	}
	c, err := canvas.New(cid, windows, opts)
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}

	m.mu.Lock()
	if len(m.canvases) >= m.opts.MaxCanvases {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyCanvases, m.opts.MaxCanvases)
	}
	m.canvases[cid] = &entry{canvas: c, name: name}
	count := len(m.canvases)
	m.mu.Unlock()

	m.updateGauge(count)
	m.logger.Info("canvas created",
		zap.String("canvas_id", cid),
		zap.String("name", name),
		zap.Int("windows", len(windows)),
	)
	return c, nil
}

// Get retrieves a canvas by id
func (m *Manager) Get(cid string) (*canvas.Canvas, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.canvases[cid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCanvasNotFound, cid)
	}
	return e.canvas, nil
}

// List returns summaries ordered by creation
func (m *Manager) List() []Summary {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.canvases))
	for _, e := range m.canvases {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		snap := e.canvas.Snapshot()
		summaries = append(summaries, Summary{
			ID:        e.canvas.ID(),
			Name:      e.name,
			Windows:   len(snap.Windows),
			Version:   snap.Version,
			CreatedAt: e.canvas.CreatedAt(),
		})
	}
	// ULID ids sort by creation time
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// Close removes a canvas and ends its activity
func (m *Manager) Close(cid string) error {
	m.mu.Lock()
	e, ok := m.canvases[cid]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCanvasNotFound, cid)
	}
	delete(m.canvases, cid)
	count := len(m.canvases)
	m.mu.Unlock()

	e.canvas.Close()
	m.updateGauge(count)
	m.logger.Info("canvas closed", zap.String("canvas_id", cid))
	return nil
}

// CloseAll closes every canvas, used on shutdown
func (m *Manager) CloseAll() {
	m.mu.Lock()
	closing := m.canvases
	m.canvases = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range closing {
		e.canvas.Close()
	}
	m.updateGauge(0)
}

// Stats returns manager statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Active: len(m.canvases), Max: m.opts.MaxCanvases}
}

func (m *Manager) updateGauge(count int) {
	if m.metrics != nil {
		m.metrics.SetCanvasesActive(count)
	}
}
