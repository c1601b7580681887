package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/assetserve/core/handler"
)

// mux is the private implementation of Router.
type mux[C handler.Context] struct {
	table        *table[C]
	notFound     []handler.HandlerFunc[C]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
	sealed       bool // set once the first route is registered
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		table:        newTable[C](),
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			// Only the default *Context works without a factory.
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	if _, ok := knownMethods[r.Method]; !ok {
		m.errorHandler(m.newContext(ww, r, nil), ErrMethodNotAllowed)
		return
	}

	ep, params := m.table.match(r)
	ctx := m.newContext(ww, r, params)

	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				m.logger.Error("panic after response written",
					"value", panicErr.value,
					"stack", string(panicErr.stack),
					"path", r.URL.Path,
					"method", r.Method,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
				)
				return
			}
			m.errorHandler(ctx, panicErr)
		}
	}()

	if ep == nil {
		m.serveNotFound(ctx, ww, r)
		return
	}

	fn := ep.lookup(r.Method)
	if fn == nil {
		// Not-found hooks still get a chance, e.g. a fallback for GET under a
		// prefix that also owns a POST-only route.
		if m.runHooks(ctx, ww, r) {
			return
		}
		if !ww.Written() {
			ww.Header().Set("Allow", strings.Join(ep.allowed(), ", "))
		}
		m.errorHandler(ctx, ErrMethodNotAllowed)
		return
	}

	m.render(ctx, ww, r, m.wrap(fn))
}

func (m *mux[C]) serveNotFound(ctx C, ww *responseWriter, r *http.Request) {
	if m.runHooks(ctx, ww, r) {
		return
	}
	m.errorHandler(ctx, ErrNotFound)
}

// runHooks reports whether a not-found hook produced a response.
func (m *mux[C]) runHooks(ctx C, ww *responseWriter, r *http.Request) bool {
	for _, hook := range m.notFound {
		resp := m.wrap(hook)(ctx)
		if resp == nil {
			continue
		}
		if err := resp(ww, r); err != nil {
			m.errorHandler(ctx, err)
		}
		return true
	}
	return false
}

func (m *mux[C]) render(ctx C, ww *responseWriter, r *http.Request, fn handler.HandlerFunc[C]) {
	resp := fn(ctx)
	if resp == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}
	if err := resp(ww, r); err != nil {
		m.errorHandler(ctx, err)
	}
}

func (m *mux[C]) wrap(fn handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	if len(m.middlewares) == 0 {
		return fn
	}
	return chain(m.middlewares, fn)
}

// Get registers a handler for GET requests. HEAD requests are served by it too
// unless a dedicated HEAD handler exists.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

// Head registers a handler for HEAD requests.
func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodHead, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle(anyMethod, pattern, h)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}
	for _, method := range methods {
		method = strings.ToUpper(method)
		if _, ok := knownMethods[method]; !ok {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		m.handle(method, pattern, h)
	}
}

// NotFound appends a not-found hook.
func (m *mux[C]) NotFound(h handler.HandlerFunc[C]) {
	if h == nil {
		panic(ErrNilHandler)
	}
	m.notFound = append(m.notFound, h)
}

// Use appends middleware to the router. All middleware must be added before
// the first route.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.sealed {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// Routes returns all registered routes sorted by pattern.
func (m *mux[C]) Routes() []Route {
	return m.table.routes()
}

func (m *mux[C]) handle(method, pattern string, h handler.HandlerFunc[C]) {
	if h == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilHandler, pattern))
	}
	if err := m.table.insert(method, pattern, h); err != nil {
		panic(err)
	}
	m.sealed = true
}
