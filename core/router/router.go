package router

import (
	"net/http"

	"github.com/dmitrymomot/assetserve/core/handler"
)

// Router dispatches requests to handlers registered by exact path or by
// wildcard prefix. Patterns are literal paths; a trailing "/*" is the only
// wildcard and exposes the matched remainder as Param("*").
type Router[C handler.Context] interface {
	http.Handler
	Routes

	Get(pattern string, h handler.HandlerFunc[C])
	Head(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])

	// Handle registers h for every method.
	Handle(pattern string, h handler.HandlerFunc[C])
	// Method registers h for the listed methods.
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)

	// NotFound appends a hook consulted, in registration order, when no route
	// matches. A hook returning a nil Response passes the request on; once all
	// hooks pass, the error handler receives ErrNotFound.
	NotFound(h handler.HandlerFunc[C])

	Use(middlewares ...handler.Middleware[C])
}

// Routes provides route introspection for debugging and tests.
type Routes interface {
	Routes() []Route
}

// Route describes one registered method/pattern pair.
type Route struct {
	Method  string
	Pattern string
}

// New creates a router with the given options.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux(opts...)
}
