package static

import (
	"crypto/md5"
	"fmt"
	"hash"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/assetserve/core/logger"
)

const (
	DefaultAssets      = "public"
	DefaultPrefix      = "/public"
	DefaultStaticLimit = 1024
	DefaultDirective   = "public"
	DefaultMaxAge      = 86400
	DefaultCacheSize   = 250
	DefaultCacheTTL    = 3 * time.Hour
)

type options struct {
	assets         string
	fsys           FileSystem
	prefix         string
	staticLimit    int
	alwaysStatic   bool
	ignore         []IgnoreRule
	extension      bool
	etag           bool
	directive      string
	maxAge         int
	indexHTML      bool
	decodeURI      bool
	headers        http.Header
	enableFallback bool
	silent         bool
	logger         *slog.Logger
	metrics        *Metrics
	cacheSize      int
	cacheTTL       time.Duration
	newHash        func() hash.Hash
}

func defaultOptions() options {
	return options{
		assets:      DefaultAssets,
		prefix:      DefaultPrefix,
		staticLimit: DefaultStaticLimit,
		ignore:      DefaultIgnorePatterns,
		extension:   true,
		etag:        true,
		directive:   DefaultDirective,
		maxAge:      DefaultMaxAge,
		indexHTML:   true,
		logger:      logger.Discard(),
		cacheSize:   DefaultCacheSize,
		cacheTTL:    DefaultCacheTTL,
		newHash:     md5.New,
	}
}

// validate normalizes the prefix and rejects settings the plugin cannot run with.
func (o *options) validate() error {
	prefix, err := normalizePrefix(o.prefix)
	if err != nil {
		return err
	}
	o.prefix = prefix

	if o.staticLimit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStaticLimit, o.staticLimit)
	}
	if o.cacheSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, o.cacheSize)
	}
	if o.directive == "" {
		o.directive = DefaultDirective
	}
	if o.silent {
		o.logger = logger.Discard()
	}
	return nil
}

// normalizePrefix collapses "/" to "", trims trailing slashes and ensures a
// leading slash.
func normalizePrefix(p string) (string, error) {
	p = strings.TrimSpace(p)
	if strings.ContainsAny(p, "*?#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, p)
	}
	p = strings.TrimRight(p, "/")
	if p != "" && p[0] != '/' {
		p = "/" + p
	}
	return p, nil
}

// Option configures the plugin.
type Option func(*options)

// WithAssets sets the OS directory to expose. Ignored when WithFileSystem is used.
func WithAssets(dir string) Option {
	return func(o *options) { o.assets = dir }
}

// WithFileSystem serves assets from fsys instead of an OS directory.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *options) { o.fsys = fsys }
}

// WithPrefix sets the URL prefix. "/" and "" mount at the root.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithStaticLimit sets the largest file count served in static mode.
func WithStaticLimit(n int) Option {
	return func(o *options) { o.staticLimit = n }
}

// WithAlwaysStatic forces static mode regardless of the file count.
func WithAlwaysStatic(v bool) Option {
	return func(o *options) { o.alwaysStatic = v }
}

// WithIgnorePatterns replaces the default ignore rules. Calling it with no
// rules exposes every file.
func WithIgnorePatterns(rules ...IgnoreRule) Option {
	return func(o *options) { o.ignore = rules }
}

// WithExtension controls whether static routes keep the file extension.
func WithExtension(v bool) Option {
	return func(o *options) { o.extension = v }
}

// WithETag toggles Etag headers and all 304 handling.
func WithETag(v bool) Option {
	return func(o *options) { o.etag = v }
}

// WithDirective sets the Cache-Control directive, "public" by default.
func WithDirective(directive string) Option {
	return func(o *options) { o.directive = directive }
}

// WithMaxAge sets max-age in seconds. Zero or negative drops the clause.
func WithMaxAge(seconds int) Option {
	return func(o *options) { o.maxAge = seconds }
}

// WithIndexHTML toggles serving index.html for directory paths.
func WithIndexHTML(v bool) Option {
	return func(o *options) { o.indexHTML = v }
}

// WithDecodeURI percent-decodes request paths before resolution.
func WithDecodeURI(v bool) Option {
	return func(o *options) { o.decodeURI = v }
}

// WithHeaders adds headers to every served response, 304s included.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		h := make(http.Header, len(headers))
		for k, v := range headers {
			h.Set(k, v)
		}
		o.headers = h
	}
}

// WithEnableFallback attaches the dynamic resolver to the router's
// not-found hook instead of a wildcard route.
func WithEnableFallback(v bool) Option {
	return func(o *options) { o.enableFallback = v }
}

// WithSilent suppresses all plugin log output.
func WithSilent(v bool) Option {
	return func(o *options) { o.silent = v }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records cache and response counters.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCacheSize bounds the dynamic-mode response cache.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithCacheTTL sets how long dynamic-mode responses stay cached. Zero keeps
// entries until evicted.
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) { o.cacheTTL = d }
}

// WithHash replaces the fingerprint hash. nil disables fingerprints: no
// Etag header is sent and If-None-Match never matches.
func WithHash(newHash func() hash.Hash) Option {
	return func(o *options) { o.newHash = newHash }
}
