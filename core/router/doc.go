// Package router is the request dispatcher the asset plugin registers into.
//
// Routes are matched in two tiers. Exact patterns are looked up in a map
// against the decoded request path. Wildcard patterns end in "/*" and match
// by prefix, longest prefix first; the remainder after the prefix is taken
// from the escaped path and exposed as Param("*"). Patterns carry no
// parameter syntax, so file names with braces or colons register verbatim.
//
//	r := router.New[*router.Context]()
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/public/*", func(ctx *router.Context) handler.Response {
//		return response.String(ctx.Param("*"))
//	})
//
// HEAD requests fall back to the GET handler. When no route matches, the
// not-found hooks registered with NotFound run in order; the first to return
// a non-nil Response handles the request. If none does, the error handler
// receives ErrNotFound.
//
// Handler panics are recovered and passed to the error handler as a
// PanicError unless the response has already been written, in which case
// they are logged.
package router
