package static

import (
	"github.com/dmitrymomot/assetserve/core/handler"
)

// RouteKind tags what a Route carries.
type RouteKind uint8

const (
	// KindArtifact routes always answer with the same prebuilt response.
	KindArtifact RouteKind = iota + 1
	// KindHandler routes compute the response per request.
	KindHandler
)

// Route is one path the plugin registers: either a precomputed artifact or a
// handler. The zero value is invalid.
type Route[C handler.Context] struct {
	Pattern  string
	kind     RouteKind
	artifact *Artifact
	handler  handler.HandlerFunc[C]
}

// NewArtifactRoute creates a route that always renders a.
func NewArtifactRoute[C handler.Context](pattern string, a *Artifact) Route[C] {
	return Route[C]{Pattern: pattern, kind: KindArtifact, artifact: a}
}

// NewHandlerRoute creates a route served by h.
func NewHandlerRoute[C handler.Context](pattern string, h handler.HandlerFunc[C]) Route[C] {
	return Route[C]{Pattern: pattern, kind: KindHandler, handler: h}
}

func (r Route[C]) Kind() RouteKind { return r.kind }

// Artifact returns the prebuilt response of a KindArtifact route, nil otherwise.
func (r Route[C]) Artifact() *Artifact { return r.artifact }

// HandlerFunc returns a handler for either kind.
func (r Route[C]) HandlerFunc() handler.HandlerFunc[C] {
	if r.kind == KindArtifact {
		a := r.artifact
		return func(C) handler.Response { return a.Render }
	}
	return r.handler
}
