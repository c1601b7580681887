package static

import (
	"context"
	"log/slog"
	"net/url"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/assetserve/core/handler"
	"github.com/dmitrymomot/assetserve/core/logger"
)

// assetEntry is one file that survived filtering, with its route paths.
type assetEntry struct {
	name    string // absolute file name
	pattern string
	alias   string // directory path served by an index.html, "" if none
}

// routeFor maps a file name to its route path and, for index documents, the
// directory alias. Extension stripping applies to the primary path only.
func routeFor(root, name string, o *options) assetEntry {
	rel := relativeName(root, name)
	if o.decodeURI {
		if decoded, err := url.PathUnescape(rel); err == nil {
			rel = decoded
		}
	}

	pattern := o.prefix + "/" + rel
	e := assetEntry{name: name, pattern: pattern}

	if o.indexHTML && strings.HasSuffix(pattern, "/index.html") {
		e.alias = strings.TrimSuffix(pattern, "/index.html")
		if e.alias == "" {
			e.alias = "/"
		}
	}

	if !o.extension {
		e.pattern = stripExtension(pattern)
	}
	return e
}

// stripExtension drops the last ".ext" of the final segment. Dotfiles such
// as "/.well-known" keep their name.
func stripExtension(p string) string {
	slash := strings.LastIndexByte(p, '/')
	dot := strings.LastIndexByte(p, '.')
	if dot > slash+1 {
		return p[:dot]
	}
	return p
}

type staticBuilder[C handler.Context] struct {
	fsys    FileSystem
	opts    *options
	ignore  ignoreMatcher
	etag    etagger
	headers headerBuilder
	log     *slog.Logger
	metrics *Metrics
}

// build reads every non-ignored file once, with bounded concurrency, and
// returns one route per file plus index aliases. Unreadable files are
// skipped with a warning; only cancellation of ctx fails the build.
func (b *staticBuilder[C]) build(ctx context.Context, files []string) ([]Route[C], error) {
	root := b.fsys.Root()

	entries := make([]assetEntry, 0, len(files))
	for _, name := range files {
		if b.ignore.Match(name) {
			continue
		}
		e := routeFor(root, name, b.opts)
		// "*" is the router's wildcard; such a name would either be rejected
		// or turn into a catch-all route.
		if strings.Contains(e.pattern, "*") || strings.Contains(e.alias, "*") {
			b.log.WarnContext(ctx, "skipping asset whose route contains a wildcard",
				logger.Path(name), slog.String("route", e.pattern))
			continue
		}
		entries = append(entries, e)
	}

	pairs := make([]*artifactPair, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, e := range entries {
		g.Go(func() error {
			body, err := b.fsys.ReadFile(gctx, e.name)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				b.log.WarnContext(gctx, "skipping unreadable asset", logger.Path(e.name), logger.Error(err))
				return nil
			}
			pair := b.headers.build(e.name, body, b.etag.Sum(body))
			pair.name = e.name
			pairs[i] = &pair
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	routes := make([]Route[C], 0, len(entries))
	for i, e := range entries {
		pair := pairs[i]
		if pair == nil {
			continue
		}
		routes = append(routes, b.route(e.pattern, pair))
		if e.alias != "" {
			routes = append(routes, b.route(e.alias, pair))
		}
	}
	return routes, nil
}

// route wraps a prebuilt pair. With etag disabled there is nothing to decide
// per request, so the full artifact is registered as is.
func (b *staticBuilder[C]) route(pattern string, pair *artifactPair) Route[C] {
	if !b.opts.etag {
		return NewArtifactRoute[C](pattern, pair.full)
	}

	fsys, prefix, metrics := b.fsys, b.opts.prefix, b.metrics
	return NewHandlerRoute[C](pattern, func(ctx C) handler.Response {
		modTime := func() (time.Time, error) {
			info, err := fsys.Stat(ctx, pair.name)
			if err != nil {
				return time.Time{}, err
			}
			return info.ModTime(), nil
		}
		if checkFreshness(ctx.Request().Header, pair.full.ETag, modTime) == Fresh {
			metrics.notModified(prefix)
			return pair.notModified.Render
		}
		return pair.full.Render
	})
}
