package router

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/dmitrymomot/assetserve/core/handler"
)

// anyMethod is the endpoint key used by Handle.
const anyMethod = "*"

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

type endpoint[C handler.Context] struct {
	pattern  string
	prefix   string // wildcard routes only, always ends with "/"
	handlers map[string]handler.HandlerFunc[C]
}

// lookup returns the handler for method, falling back to GET for HEAD
// and to handlers registered for every method.
func (e *endpoint[C]) lookup(method string) handler.HandlerFunc[C] {
	if h, ok := e.handlers[method]; ok {
		return h
	}
	if method == http.MethodHead {
		if h, ok := e.handlers[http.MethodGet]; ok {
			return h
		}
	}
	return e.handlers[anyMethod]
}

func (e *endpoint[C]) allowed() []string {
	methods := make([]string, 0, len(e.handlers)+1)
	for m := range e.handlers {
		if m == anyMethod {
			continue
		}
		methods = append(methods, m)
	}
	if _, ok := e.handlers[http.MethodGet]; ok && !slices.Contains(methods, http.MethodHead) {
		methods = append(methods, http.MethodHead)
	}
	sort.Strings(methods)
	return methods
}

// table holds exact routes in a map and wildcard routes ordered by
// descending prefix length, so the longest prefix wins.
type table[C handler.Context] struct {
	exact     map[string]*endpoint[C]
	wildcards []*endpoint[C]
}

func newTable[C handler.Context]() *table[C] {
	return &table[C]{exact: make(map[string]*endpoint[C])}
}

func (t *table[C]) insert(method, pattern string, h handler.HandlerFunc[C]) error {
	if pattern == "" || pattern[0] != '/' {
		return fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern)
	}

	star := strings.IndexByte(pattern, '*')
	if star >= 0 && (star != len(pattern)-1 || pattern[star-1] != '/') {
		return fmt.Errorf("%w: '%s'", ErrWildcardPosition, pattern)
	}

	var ep *endpoint[C]
	if star < 0 {
		ep = t.exact[pattern]
		if ep == nil {
			ep = &endpoint[C]{pattern: pattern, handlers: map[string]handler.HandlerFunc[C]{}}
			t.exact[pattern] = ep
		}
	} else {
		prefix := pattern[:star]
		for _, w := range t.wildcards {
			if w.prefix == prefix {
				ep = w
				break
			}
		}
		if ep == nil {
			ep = &endpoint[C]{pattern: pattern, prefix: prefix, handlers: map[string]handler.HandlerFunc[C]{}}
			t.wildcards = append(t.wildcards, ep)
			sort.SliceStable(t.wildcards, func(i, j int) bool {
				return len(t.wildcards[i].prefix) > len(t.wildcards[j].prefix)
			})
		}
	}

	ep.handlers[method] = h
	return nil
}

// match finds the endpoint for r. For wildcard matches the remainder is taken
// from the escaped path so percent-encoding reaches the handler untouched.
func (t *table[C]) match(r *http.Request) (*endpoint[C], map[string]string) {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	if ep, ok := t.exact[path]; ok {
		return ep, nil
	}

	for _, ep := range t.wildcards {
		if !strings.HasPrefix(path, ep.prefix) {
			continue
		}
		rest := path[len(ep.prefix):]
		if escaped := r.URL.EscapedPath(); strings.HasPrefix(escaped, ep.prefix) {
			rest = escaped[len(ep.prefix):]
		}
		return ep, map[string]string{"*": rest}
	}

	return nil, nil
}

func (t *table[C]) routes() []Route {
	var routes []Route
	add := func(ep *endpoint[C]) {
		for m := range ep.handlers {
			routes = append(routes, Route{Method: m, Pattern: ep.pattern})
		}
	}
	for _, ep := range t.exact {
		add(ep)
	}
	for _, ep := range t.wildcards {
		add(ep)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}
