package handler

import (
	"context"
	"net/http"
)

// Context is the per-request contract every handler receives.
// The router's default *router.Context satisfies it; applications may
// supply their own type through a context factory.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Param returns a matched route parameter. Wildcard routes expose the
	// matched remainder under the "*" key.
	Param(key string) string
	SetValue(key, val any)
}
