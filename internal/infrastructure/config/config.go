package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Canvas    CanvasConfig
	WebSocket WebSocketConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// CanvasConfig holds canvas registry configuration.
type CanvasConfig struct {
	LayoutGlob   string  `envconfig:"CANVAS_LAYOUT_GLOB"`
	FramePadding float64 `envconfig:"CANVAS_FRAME_PADDING" default:"10"`
	MaxCanvases  int     `envconfig:"CANVAS_MAX" default:"64"`
}

// WebSocketConfig holds canvas stream configuration.
type WebSocketConfig struct {
	AllowedOrigins []string      `envconfig:"WS_ALLOWED_ORIGINS"`
	WriteTimeout   time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
	PingInterval   time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Canvas.MaxCanvases <= 0 {
		return nil, fmt.Errorf("failed to load config: CANVAS_MAX must be positive, got %d", cfg.Canvas.MaxCanvases)
	}
	if cfg.WebSocket.PingInterval <= 0 || cfg.WebSocket.WriteTimeout <= 0 {
		return nil, fmt.Errorf("failed to load config: websocket intervals must be positive")
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Canvas: CanvasConfig{
			FramePadding: 10,
			MaxCanvases:  64,
		},
		WebSocket: WebSocketConfig{
			WriteTimeout: 10 * time.Second,
			PingInterval: 30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
