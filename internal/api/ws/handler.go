package ws

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/canvas"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/protocol"
)

const (
	maxFrameSize = 64 << 10
	replyBuffer  = 16
	closeGrace   = time.Second
)

// Config controls stream behaviour
type Config struct {
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PingInterval   time.Duration
}

// Handler manages canvas stream connections
type Handler struct {
	manager  *registry.Manager
	cfg      Config
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
}

// NewHandler creates a new WebSocket handler
func NewHandler(manager *registry.Manager, cfg Config, logger *zap.Logger) *Handler {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		manager: manager,
		cfg:     cfg,
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// WithMetrics adds connection and message metrics
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// WithTracer records one span per connection
func (h *Handler) WithTracer(tracer *tracing.Tracer) *Handler {
	h.tracer = tracer
	return h
}

// checkOrigin allows every origin when no allow-list is configured
func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

// HandleConnection upgrades the request and streams one canvas
func (h *Handler) HandleConnection(c *gin.Context) {
	cv, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied to the client
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &stream{
		id:      id.NewConnectionID(),
		conn:    conn,
		canvas:  cv,
		cfg:     h.cfg,
		box:     newMailbox(),
		replies: make(chan protocol.Message, replyBuffer),
		metrics: h.metrics,
	}
	s.logger = h.logger.With(
		zap.String("canvas_id", cv.ID()),
		zap.String("conn_id", s.id.String()),
	)

	var span *tracing.Span
	ctx := c.Request.Context()
	if h.tracer != nil {
		span, ctx = h.tracer.StartSpan(ctx, "ws.stream")
		span.SetTag("canvas_id", cv.ID())
		span.SetTag("conn_id", s.id.String())
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	s.logger.Info("stream connected", zap.String("remote", c.ClientIP()))

	err = s.run(ctx)

	s.logger.Info("stream disconnected", zap.Int("received", s.received), zap.Error(err))
	if span != nil {
		span.SetTag("received", strconv.Itoa(s.received))
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
		h.tracer.Submit(span)
	}
}

// stream is one connection bound to one canvas. Only the write loop writes
// to conn.
type stream struct {
	id      id.ConnectionID
	conn    *websocket.Conn
	canvas  *canvas.Canvas
	cfg     Config
	box     *mailbox
	replies chan protocol.Message
	logger  *zap.Logger
	metrics *monitoring.Metrics

	// handleSession is the last handle drag started on this connection.
	// The canvas ignores it once that session has ended by any path.
	handleSession uint64
	received      int
}

// run blocks until the peer goes away or the canvas closes. A clean close
// returns nil.
func (s *stream) run(ctx context.Context) error {
	defer s.conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := s.canvas.Subscribe(s.box.put)
	defer unsubscribe()
	s.box.put(s.canvas.Snapshot())

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- s.writeLoop(ctx)
		cancel()
		// Give the peer a moment to answer our close frame
		_ = s.conn.SetReadDeadline(time.Now().Add(closeGrace))
	}()

	err := s.readLoop(ctx)
	cancel()

	if s.handleSession != 0 && s.canvas.ReleaseHandle(s.handleSession) {
		s.logger.Debug("released handle drag on disconnect", zap.Uint64("session", s.handleSession))
	}

	if werr := <-writeErr; err == nil {
		err = werr
	}
	if isNormalClose(err) {
		return nil
	}
	return err
}

func (s *stream) readLoop(ctx context.Context) error {
	s.conn.SetReadLimit(maxFrameSize)
	deadline := 2 * s.cfg.PingInterval
	_ = s.conn.SetReadDeadline(time.Now().Add(deadline))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(deadline))
		s.received++

		if !s.handleFrame(ctx, raw) {
			return nil
		}
	}
}

// handleFrame dispatches one inbound frame; false ends the stream
func (s *stream) handleFrame(ctx context.Context, raw []byte) bool {
	msg, err := protocol.Decode(raw)
	if err != nil {
		s.record("in", "invalid")
		return s.reply(ctx, protocol.NewError(err))
	}
	s.record("in", string(msg.Type))

	if msg.Type == protocol.TypePing {
		return s.reply(ctx, protocol.Message{Type: protocol.TypePong})
	}

	out, err := s.canvas.Dispatch(msg)
	switch {
	case errors.Is(err, canvas.ErrClosed):
		return false
	case err != nil:
		return s.reply(ctx, protocol.NewError(err))
	}

	if out.Applied && msg.Type == protocol.TypeHandleDown {
		s.handleSession = out.Session
	}
	return true
}

func (s *stream) reply(ctx context.Context, msg protocol.Message) bool {
	select {
	case s.replies <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *stream) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	var sent uint64
	first := true
	for {
		select {
		case <-s.box.notify:
			snap, ok := s.box.take()
			if !ok || (!first && snap.Version <= sent) {
				continue
			}
			first = false
			sent = snap.Version
			if err := s.write(protocol.MustNew(protocol.TypeState, snap)); err != nil {
				return err
			}

		case msg := <-s.replies:
			if err := s.write(msg); err != nil {
				return err
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}

		case <-s.canvas.Done():
			s.closeWith(websocket.CloseGoingAway, "canvas closed")
			return nil

		case <-ctx.Done():
			s.closeWith(websocket.CloseNormalClosure, "")
			return nil
		}
	}
}

func (s *stream) write(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.record("out", string(msg.Type))
	return nil
}

func (s *stream) closeWith(code int, reason string) {
	deadline := time.Now().Add(s.cfg.WriteTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

func (s *stream) record(direction, msgType string) {
	if s.metrics != nil {
		s.metrics.RecordWSMessage(direction, msgType)
	}
}

func isNormalClose(err error) bool {
	return err == nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
