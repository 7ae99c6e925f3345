// Package server wires configuration, logging, metrics, volumes and the
// connector into one HTTP server.
//
// Routes:
//
//	GET|POST <connector path>  connector commands
//	GET /health                liveness and mounted volume count
//	GET /metrics               Prometheus exposition
package server
