package static

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/assetserve/core/cache"
	"github.com/dmitrymomot/assetserve/core/handler"
	"github.com/dmitrymomot/assetserve/core/logger"
)

// Registrar is the part of a router the plugin needs. router.Router
// satisfies it.
type Registrar[C handler.Context] interface {
	Get(pattern string, h handler.HandlerFunc[C])
	NotFound(h handler.HandlerFunc[C])
}

// Mode is how a plugin instance serves its files.
type Mode string

const (
	// ModeDisabled means the asset root was unavailable and no routes exist.
	ModeDisabled Mode = "disabled"
	// ModeStatic registers one prebuilt route per file.
	ModeStatic Mode = "static"
	// ModeDynamic resolves files per request behind one wildcard route or
	// the not-found hook.
	ModeDynamic Mode = "dynamic"
)

// Plugin is one activated asset mount. Close releases the cache sweep.
type Plugin struct {
	mode   Mode
	fsys   FileSystem
	prefix string
	root   string
	files  int
	routes []string
	skips  []WalkSkip
	cache  *cache.LRUCache[string, *artifactPair]
}

// New walks the asset root once and registers routes on r: one per file
// when AlwaysStatic is set or the file count is within the static limit,
// otherwise a single wildcard route (or not-found hook with
// EnableFallback). An unavailable root disables the plugin with a warning
// and a nil error. Errors are returned for invalid options and for ctx
// cancellation during the walk.
func New[C handler.Context](ctx context.Context, r Registrar[C], opts ...Option) (*Plugin, error) {
	if r == nil {
		return nil, ErrNilRegistrar
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fsys := o.fsys
	if fsys == nil {
		fsys = Dir(o.assets)
	}

	log := o.logger.With(logger.Component("static"), slog.String("prefix", prefixLabel(o.prefix)))
	p := &Plugin{fsys: fsys, prefix: o.prefix, root: fsys.Root()}

	info, err := fsys.Stat(ctx, p.root)
	if err != nil && isContextErr(err) {
		return nil, err
	}
	if err != nil || !info.IsDir() {
		if err == nil {
			err = ErrAssetsUnavailable
		}
		log.WarnContext(ctx, "asset root unavailable, static plugin disabled",
			logger.Path(p.root), logger.Error(err))
		p.mode = ModeDisabled
		o.metrics.routes(o.prefix, p.mode, 0)
		return p, nil
	}

	var et etagger
	if o.etag {
		et.newHash = o.newHash
		if !et.enabled() {
			log.WarnContext(ctx, "hashing unavailable, Etag headers disabled")
		}
	}

	files, skips, err := walkFiles(ctx, fsys)
	if err != nil {
		return nil, err
	}
	for _, s := range skips {
		log.WarnContext(ctx, "skipped unreadable entry", logger.Path(s.Path), logger.Error(s.Err))
	}
	p.files, p.skips = len(files), skips

	ignore := newIgnoreMatcher(p.root, o.ignore)
	hb := newHeaderBuilder(o.directive, o.maxAge, o.headers)

	if o.alwaysStatic || len(files) <= o.staticLimit {
		b := &staticBuilder[C]{fsys: fsys, opts: &o, ignore: ignore, etag: et, headers: hb, log: log, metrics: o.metrics}
		routes, err := b.build(ctx, files)
		if err != nil {
			return nil, err
		}
		for _, rt := range routes {
			r.Get(rt.Pattern, rt.HandlerFunc())
			p.routes = append(p.routes, rt.Pattern)
		}
		p.mode = ModeStatic
	} else {
		log.DebugContext(ctx, "file count exceeds static limit, serving dynamically",
			logger.Count("files", len(files)), logger.Count("static_limit", o.staticLimit))

		rv := newResolver(fsys, &o, ignore, et, hb, log)
		p.cache = rv.cache
		if o.enableFallback {
			r.NotFound(fallbackHandler[C](rv))
		} else {
			pattern := o.prefix + "/*"
			r.Get(pattern, wildcardHandler[C](rv))
			p.routes = append(p.routes, pattern)
		}
		p.mode = ModeDynamic
	}

	o.metrics.routes(o.prefix, p.mode, len(p.routes))
	log.InfoContext(ctx, "static assets registered",
		logger.Mode(string(p.mode)),
		logger.Path(p.root),
		logger.Count("files", p.files),
		logger.Count("routes", len(p.routes)),
	)
	return p, nil
}

// Mode reports how the plugin serves files.
func (p *Plugin) Mode() Mode { return p.mode }

// Prefix is the normalized URL prefix.
func (p *Plugin) Prefix() string { return p.prefix }

// Root is the absolute asset root.
func (p *Plugin) Root() string { return p.root }

// Files is the number of regular files found by the walk, ignored ones included.
func (p *Plugin) Files() int { return p.files }

// Routes lists the registered patterns in registration order.
func (p *Plugin) Routes() []string { return append([]string(nil), p.routes...) }

// Skipped lists entries the walk could not read.
func (p *Plugin) Skipped() []WalkSkip { return append([]WalkSkip(nil), p.skips...) }

// CacheLen is the number of cached responses; always 0 outside dynamic mode.
func (p *Plugin) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

// Check reports whether the asset root is still reachable. It fits
// health.Readiness.
func (p *Plugin) Check(ctx context.Context) error {
	if p.mode == ModeDisabled {
		return ErrAssetsUnavailable
	}
	info, err := p.fsys.Stat(ctx, p.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAssetsUnavailable, err)
	}
	if !info.IsDir() {
		return ErrAssetsUnavailable
	}
	return nil
}

// Close stops the cache sweep and drops cached responses. Safe to call
// more than once.
func (p *Plugin) Close() error {
	if p.cache != nil {
		p.cache.Close()
		p.cache.Clear()
	}
	return nil
}
