// Package middleware provides the gin middleware of the launcher API:
// CORS for browser front-ends and per-client or global rate limiting.
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
