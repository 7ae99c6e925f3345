// Package config provides 12-factor configuration for the file manager backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// A VOLUMES_FILE in YAML or TOML may declare several volumes; keys it leaves
// out inherit from the VOLUME_* variables, while an explicit zero is kept.
//
// Configuration Sections:
//   - Server: HTTP listener, gzip, shutdown grace period
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting
//   - CORS: Allowed origins for the web client
//   - Volume: Root directory, label, tree depth, upload ceiling
//   - Connector: Route, search timeout, upload fan-in
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT, GZIP_ENABLED
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, CORS_ORIGINS
//   - VOLUME_ID, ROOT_DIR, ROOT_LABEL, MAX_TREE_DEPTH, UPLOAD_MAX_SIZE,
//     HIDDEN_GLOBS, SEARCH_LIMIT, SNIFF_CONTENT, VOLUMES_FILE
//   - CONNECTOR_PATH, SEARCH_TIMEOUT, UPLOAD_MAX_FILES
package config
