package handler

import "net/http"

// Response renders an HTTP response.
// It sets headers, the status code and writes the body.
// A returned error is passed to the router's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a request handler bound to a concrete context type.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler turns an error raised while serving a request into a response.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a handler with cross-cutting behaviour.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// FromHTTP adapts a standard http.Handler into a HandlerFunc.
// Used to mount third-party handlers such as metrics exporters.
func FromHTTP[C Context](h http.Handler) HandlerFunc[C] {
	return func(ctx C) Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			h.ServeHTTP(w, r)
			return nil
		}
	}
}
