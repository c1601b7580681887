// Package middleware provides router middleware for request tracing and
// access logging.
//
// RequestID assigns every request an ID (UUID v4 by default), stores it in
// the request context and echoes it in the X-Request-ID response header.
// Logging writes one structured record per response. Register RequestID
// first so the access log carries the ID:
//
//	r := router.New[*router.Context](
//		router.WithMiddleware(
//			middleware.RequestID[*router.Context](),
//			middleware.LoggingWithLogger[*router.Context](log),
//		),
//	)
//
// RequestIDExtractor plugs into logger.WithContextExtractors so any record
// logged with a request context, including the static plugin's warnings,
// carries the same ID.
//
// Both middlewares pass a nil response through untouched, which keeps
// not-found hooks able to decline a request.
package middleware
