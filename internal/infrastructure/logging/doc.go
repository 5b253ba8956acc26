// Package logging provides structured logging using uber/zap.
//
// Production builds write JSON; development builds (LOG_DEV=true) write
// coloured console output. The level can be changed at runtime.
//
// Example Usage:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Logging))
//	logger.Info("Server starting", zap.String("addr", cfg.Server.Addr()))
//	canvasLog := logger.ForCanvas(c.ID())
package logging
