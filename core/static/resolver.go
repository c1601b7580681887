package static

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/assetserve/core/cache"
	"github.com/dmitrymomot/assetserve/core/handler"
	"github.com/dmitrymomot/assetserve/core/logger"
	"github.com/dmitrymomot/assetserve/core/response"
)

// resolver serves files on demand behind a wildcard route or a not-found hook.
type resolver struct {
	fsys    FileSystem
	root    string
	opts    *options
	ignore  ignoreMatcher
	etag    etagger
	headers headerBuilder
	cache   *cache.LRUCache[string, *artifactPair]
	loads   singleflight.Group
	log     *slog.Logger
	metrics *Metrics
}

func newResolver(fsys FileSystem, o *options, ignore ignoreMatcher, et etagger, hb headerBuilder, log *slog.Logger) *resolver {
	c := cache.NewLRUCache[string, *artifactPair](o.cacheSize, cache.WithTTL(o.cacheTTL))
	prefix, metrics := o.prefix, o.metrics
	c.SetEvictCallback(func(string, *artifactPair) { metrics.eviction(prefix) })

	return &resolver{
		fsys:    fsys,
		root:    fsys.Root(),
		opts:    o,
		ignore:  ignore,
		etag:    et,
		headers: hb,
		cache:   c,
		log:     log,
		metrics: metrics,
	}
}

// resolve runs the per-request pipeline for a wildcard remainder and returns
// the artifact to render, or nil when the request resolves to not found.
// Guard and ignore checks run before any filesystem access, and the cache is
// consulted before a fresh stat.
func (rv *resolver) resolve(ctx context.Context, r *http.Request, remainder string) *Artifact {
	if rv.opts.decodeURI {
		if decoded, err := url.PathUnescape(remainder); err == nil {
			remainder = decoded
		}
	}

	name, err := resolvePath(rv.root, remainder)
	if err != nil {
		rv.metrics.notFound(rv.opts.prefix, "traversal")
		rv.log.DebugContext(ctx, "rejected path", logger.Path(remainder), logger.Error(err))
		return nil
	}

	if rv.ignore.Match(name) {
		rv.metrics.notFound(rv.opts.prefix, "ignored")
		return nil
	}

	pair, ok := rv.cache.Get(name)
	if ok {
		rv.metrics.cacheHit(rv.opts.prefix)
	} else {
		rv.metrics.cacheMiss(rv.opts.prefix)
		pair, err = rv.loadShared(ctx, name)
		if err != nil {
			rv.notFound(ctx, name, err)
			return nil
		}
	}

	return rv.choose(ctx, r, pair)
}

// loadShared collapses concurrent misses for one name into a single read.
// If the shared read was cancelled by another request, this request retries
// on its own context.
func (rv *resolver) loadShared(ctx context.Context, name string) (*artifactPair, error) {
	v, err, _ := rv.loads.Do(name, func() (any, error) {
		return rv.load(ctx, name)
	})
	if err != nil && isContextErr(err) && ctx.Err() == nil {
		return rv.load(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return v.(*artifactPair), nil
}

// load stats, reads and fingerprints the file for name, resolving directories
// to their index document. The result is cached only when ctx is still live.
func (rv *resolver) load(ctx context.Context, name string) (*artifactPair, error) {
	file, err := rv.regularFile(ctx, name)
	if err != nil {
		return nil, err
	}

	body, err := rv.fsys.ReadFile(ctx, file)
	if err != nil {
		return nil, err
	}

	pair := rv.headers.build(file, body, rv.etag.Sum(body))
	pair.name = file

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	rv.cache.Put(name, &pair)
	return &pair, nil
}

// regularFile returns the file to serve for name: name itself, or its
// index.html when name is a directory and index documents are enabled.
func (rv *resolver) regularFile(ctx context.Context, name string) (string, error) {
	info, err := rv.fsys.Stat(ctx, name)
	if err != nil {
		return "", err
	}
	if info.Mode().IsRegular() {
		return name, nil
	}
	if !info.IsDir() || !rv.opts.indexHTML {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, name)
	}

	index := filepath.Join(name, "index.html")
	if rv.ignore.Match(index) {
		return "", fmt.Errorf("%w: %s", fs.ErrNotExist, index)
	}
	info, err = rv.fsys.Stat(ctx, index)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, index)
	}
	return index, nil
}

// choose runs the conditional check against the cached fingerprint, so a
// revalidating client gets 304 on a cache hit too.
func (rv *resolver) choose(ctx context.Context, r *http.Request, pair *artifactPair) *Artifact {
	if !rv.opts.etag {
		return pair.full
	}

	modTime := func() (time.Time, error) {
		info, err := rv.fsys.Stat(ctx, pair.name)
		if err != nil {
			return time.Time{}, err
		}
		return info.ModTime(), nil
	}
	if checkFreshness(r.Header, pair.full.ETag, modTime) == Fresh {
		rv.metrics.notModified(rv.opts.prefix)
		return pair.notModified
	}
	return pair.full
}

// notFound records why a load failed. Missing files are expected; anything
// else is an I/O failure worth a warning, still answered with not found.
func (rv *resolver) notFound(ctx context.Context, name string, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, ErrNotRegularFile):
		rv.metrics.notFound(rv.opts.prefix, "missing")
	case isContextErr(err):
		// Client went away.
	default:
		rv.metrics.notFound(rv.opts.prefix, "io")
		rv.log.WarnContext(ctx, "asset read failed", logger.Path(name), logger.Error(err))
	}
}

// remainder derives the wildcard remainder from the request URL for the
// not-found hook. ok is false when the path is outside the prefix.
func (rv *resolver) remainder(r *http.Request) (string, bool) {
	p := r.URL.EscapedPath()
	prefix := rv.opts.prefix
	switch {
	case prefix == "":
		return p, true
	case p == prefix:
		return "", true
	case strings.HasPrefix(p, prefix+"/"):
		return p[len(prefix):], true
	default:
		return "", false
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// wildcardHandler owns prefix+"/*". Not-found results go to the router's
// error handler as response.ErrNotFound.
func wildcardHandler[C handler.Context](rv *resolver) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		a := rv.resolve(ctx, ctx.Request(), ctx.Param("*"))
		if a == nil {
			return response.Error(response.ErrNotFound)
		}
		return a.Render
	}
}

// fallbackHandler is a not-found hook. It only answers GET and HEAD under
// the prefix and returns nil otherwise so later hooks and the default 404 run.
func fallbackHandler[C handler.Context](rv *resolver) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		r := ctx.Request()
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return nil
		}
		rest, ok := rv.remainder(r)
		if !ok {
			return nil
		}
		a := rv.resolve(ctx, r, rest)
		if a == nil {
			return nil
		}
		return a.Render
	}
}
