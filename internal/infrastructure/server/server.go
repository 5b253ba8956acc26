package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/canvas/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/tracing"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

const streamSuffix = "/stream"

// Server wraps the HTTP server and dependencies
type Server struct {
	handler http.Handler
	manager *registry.Manager
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics

	httpServer *http.Server
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing canvas server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("max_canvases", cfg.Canvas.MaxCanvases),
		zap.Float64("frame_padding", cfg.Canvas.FramePadding),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("canvas", logger.Logger)

	manager := registry.NewManager(registry.Options{
		MaxCanvases:  cfg.Canvas.MaxCanvases,
		FramePadding: cfg.Canvas.FramePadding,
		Logger:       logger.Logger,
	}).WithMetrics(metrics)

	if cfg.Canvas.LayoutGlob != "" {
		loaded, err := registry.NewSeeder(manager, cfg.Canvas.LayoutGlob, logger.Logger).Seed()
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to seed canvases: %w", err)
		}
		logger.Info("Seeded canvases", zap.Int("count", loaded))
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.WebSocket.AllowedOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		rl.SkipPrefixes = []string{"/metrics", "/health"}
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(manager, metrics, logger.Logger, Version)
	wsHandler := ws.NewHandler(manager, ws.Config{
		AllowedOrigins: cfg.WebSocket.AllowedOrigins,
		WriteTimeout:   cfg.WebSocket.WriteTimeout,
		PingInterval:   cfg.WebSocket.PingInterval,
	}, logger.Logger).WithMetrics(metrics).WithTracer(tracer)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	canvases := router.Group("/canvases")
	canvases.GET("", handlers.ListCanvases)
	canvases.POST("", handlers.CreateCanvas)
	canvases.GET("/:id", handlers.GetCanvas)
	canvases.DELETE("/:id", handlers.CloseCanvas)
	canvases.POST("/:id/messages", handlers.DispatchMessage)
	canvases.GET("/:id"+streamSuffix, wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	handler := compress(router)
	return &Server{
		handler: handler,
		manager: manager,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// compress gzips REST responses. Streams are hijacked, so they bypass the
// gzip writer.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, streamSuffix) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Manager returns the canvas registry
func (s *Server) Manager() *registry.Manager {
	return s.manager
}

// Run serves on the configured address until Shutdown is called
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes every canvas (which ends their
// streams) and waits for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.manager.CloseAll()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown incomplete", zap.Error(err))
	}
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return err
}
