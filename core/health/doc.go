// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependency checks pass
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log, assets.Check))
//	r.Get("/ping", health.NoContent[*router.Context])
//
// Checks follow the func(context.Context) error signature. Readiness runs
// them in order and answers 503 on the first failure.
package health
