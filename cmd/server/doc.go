// Package main is the entry point for the file manager connector server.
//
// The server exposes one or more jailed directories to a browser file manager
// through a single connector endpoint. Every path the client sees is an opaque
// token; nothing outside a volume root can be named, listed or modified.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - An optional YAML or TOML volumes file
//
// Usage:
//
//	# Serve ./files on port 8000
//	./server
//
//	# Serve another directory with debug logs
//	./server -root /srv/share -port 9000 -dev
//
//	# Several volumes
//	./server -volumes volumes.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
