package static

import (
	"time"
)

// Config is the declarative form of the plugin options, loadable with
// core/config from the environment or a YAML file.
type Config struct {
	Assets         string            `env:"STATIC_ASSETS" envDefault:"public" yaml:"assets"`
	Prefix         string            `env:"STATIC_PREFIX" envDefault:"/public" yaml:"prefix"`
	StaticLimit    int               `env:"STATIC_LIMIT" envDefault:"1024" yaml:"static_limit"`
	AlwaysStatic   bool              `env:"STATIC_ALWAYS" yaml:"always_static"`
	IgnorePatterns []string          `env:"STATIC_IGNORE" envSeparator:"," yaml:"ignore_patterns"`
	Extension      bool              `env:"STATIC_EXTENSION" envDefault:"true" yaml:"extension"`
	ETag           bool              `env:"STATIC_ETAG" envDefault:"true" yaml:"etag"`
	Directive      string            `env:"STATIC_DIRECTIVE" envDefault:"public" yaml:"directive"`
	MaxAge         int               `env:"STATIC_MAX_AGE" envDefault:"86400" yaml:"max_age"`
	IndexHTML      bool              `env:"STATIC_INDEX_HTML" envDefault:"true" yaml:"index_html"`
	DecodeURI      bool              `env:"STATIC_DECODE_URI" yaml:"decode_uri"`
	Headers        map[string]string `env:"STATIC_HEADERS" envSeparator:"," envKeyValSeparator:":" yaml:"headers"`
	EnableFallback bool              `env:"STATIC_FALLBACK" yaml:"enable_fallback"`
	Silent         bool              `env:"STATIC_SILENT" yaml:"silent"`
	CacheSize      int               `env:"STATIC_CACHE_SIZE" envDefault:"250" yaml:"cache_size"`
	CacheTTL       time.Duration     `env:"STATIC_CACHE_TTL" envDefault:"3h" yaml:"cache_ttl"`
}

// DefaultConfig returns the documented defaults, for callers that do not
// load from the environment.
func DefaultConfig() Config {
	return Config{
		Assets:      DefaultAssets,
		Prefix:      DefaultPrefix,
		StaticLimit: DefaultStaticLimit,
		Extension:   true,
		ETag:        true,
		Directive:   DefaultDirective,
		MaxAge:      DefaultMaxAge,
		IndexHTML:   true,
		CacheSize:   DefaultCacheSize,
		CacheTTL:    DefaultCacheTTL,
	}
}

// Options converts the config into plugin options. An empty
// IgnorePatterns keeps the default rules.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithAssets(c.Assets),
		WithPrefix(c.Prefix),
		WithStaticLimit(c.StaticLimit),
		WithAlwaysStatic(c.AlwaysStatic),
		WithExtension(c.Extension),
		WithETag(c.ETag),
		WithDirective(c.Directive),
		WithMaxAge(c.MaxAge),
		WithIndexHTML(c.IndexHTML),
		WithDecodeURI(c.DecodeURI),
		WithEnableFallback(c.EnableFallback),
		WithSilent(c.Silent),
		WithCacheSize(c.CacheSize),
		WithCacheTTL(c.CacheTTL),
	}

	if len(c.Headers) > 0 {
		opts = append(opts, WithHeaders(c.Headers))
	}

	if len(c.IgnorePatterns) > 0 {
		rules := make([]IgnoreRule, 0, len(c.IgnorePatterns))
		for _, s := range c.IgnorePatterns {
			r, err := ParseIgnoreRule(s)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
		opts = append(opts, WithIgnorePatterns(rules...))
	}

	return opts, nil
}
