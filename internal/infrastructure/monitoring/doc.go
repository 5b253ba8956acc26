/*
Package monitoring provides Prometheus metrics for the canvas service.

# Overview

Each Metrics value owns a private registry. It tracks HTTP requests, message
dispatch outcomes, drag sessions and websocket traffic, and doubles as the
canvas.Recorder handed to every canvas.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	c, _ := canvas.New(id, windows, canvas.Options{Recorder: metrics})
*/
package monitoring
