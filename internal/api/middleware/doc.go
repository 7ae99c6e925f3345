// Package middleware provides the HTTP middleware mounted in front of the
// connector.
//
//   - CORS: cross-origin access for a web client served from another origin
//   - RateLimit: per-IP token buckets, with idle clients dropped
//   - GlobalRateLimit: a single bucket shared by every client
//
// Example:
//
//	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.CORS)))
//	router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
package middleware
