package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/canvas"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/layout"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/protocol"
)

const maxBodySize = 1 << 20

// Handlers contains all HTTP handlers
type Handlers struct {
	manager *registry.Manager
	metrics *monitoring.Metrics
	logger  *zap.Logger
	version string
}

// NewHandlers creates a new handler set
func NewHandlers(manager *registry.Manager, metrics *monitoring.Metrics, logger *zap.Logger, version string) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		manager: manager,
		metrics: metrics,
		logger:  logger,
		version: version,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "canvas host",
		"version": h.version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"canvases": h.manager.Stats(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// ListCanvases lists live canvases
func (h *Handlers) ListCanvases(c *gin.Context) {
	c.JSON(http.StatusOK, ListResponse{
		Canvases: h.manager.List(),
		Stats:    h.manager.Stats(),
	})
}

// CreateCanvas creates a canvas from a JSON request or a YAML/TOML layout
func (h *Handlers) CreateCanvas(c *gin.Context) {
	name, windows, err := h.bindWindows(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cv, err := h.manager.Create(name, windows)
	if err != nil {
		h.logger.Warn("create canvas rejected", zap.String("name", name), zap.Error(err))
	}
	switch {
	case errors.Is(err, registry.ErrTooManyCanvases):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, CanvasResponse{ID: cv.ID(), Name: name, State: cv.Snapshot()})
}

func (h *Handlers) bindWindows(c *gin.Context) (string, []canvas.Window, error) {
	var format layout.Format
	switch c.ContentType() {
	case "application/yaml", "application/x-yaml", "text/yaml":
		format = layout.FormatYAML
	case "application/toml":
		format = layout.FormatTOML
	}

	if format != "" {
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
		if err != nil {
			return "", nil, err
		}
		l, err := layout.Parse(data, format)
		if err != nil {
			return "", nil, err
		}
		return l.Name, l.Windows, nil
	}

	var req CreateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", nil, err
	}
	for i := range req.Windows {
		req.Windows[i].Title = layout.SanitizeTitle(req.Windows[i].Title)
	}
	return req.Name, req.Windows, nil
}

// GetCanvas returns the current state of a canvas
func (h *Handlers) GetCanvas(c *gin.Context) {
	cv, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, CanvasResponse{ID: cv.ID(), State: cv.Snapshot()})
}

// DispatchMessage applies one protocol envelope to a canvas
func (h *Handlers) DispatchMessage(c *gin.Context) {
	cv, ok := h.lookup(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := protocol.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, protocol.NewError(err))
		return
	}
	if msg.Type == protocol.TypePing {
		c.JSON(http.StatusOK, protocol.Message{Type: protocol.TypePong})
		return
	}

	out, err := cv.Dispatch(msg)
	switch {
	case errors.Is(err, canvas.ErrClosed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, protocol.NewError(err))
		return
	}

	c.JSON(http.StatusOK, DispatchResponse{
		Outcome: out.Label(),
		Reason:  string(out.Reason),
		State:   cv.Snapshot(),
	})
}

// CloseCanvas closes a canvas and ends its streams
func (h *Handlers) CloseCanvas(c *gin.Context) {
	cid := c.Param("id")
	if err := h.manager.Close(cid); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"canvas_id": cid,
	})
}

func (h *Handlers) lookup(c *gin.Context) (*canvas.Canvas, bool) {
	cv, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return cv, true
}
