/*
Package monitoring provides Prometheus metrics for the file manager backend.

# Overview

Metrics live on a private registry created by NewMetrics. HTTP traffic is
recorded by Middleware, connector commands by RecordCommand, and volume
operations by wrapping each mounted volume with Instrument.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	vol = monitoring.Instrument(vol, metrics)
*/
package monitoring
