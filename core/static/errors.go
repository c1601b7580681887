package static

import "errors"

var (
	ErrTraversal          = errors.New("static: path escapes the asset root")
	ErrNotRegularFile     = errors.New("static: not a regular file")
	ErrAssetsUnavailable  = errors.New("static: asset root unavailable")
	ErrInvalidStaticLimit = errors.New("static: static limit must not be negative")
	ErrInvalidCacheSize   = errors.New("static: cache size must be positive")
	ErrInvalidPrefix      = errors.New("static: invalid prefix")
	ErrInvalidIgnoreRule  = errors.New("static: invalid ignore rule")
	ErrNilRegistrar       = errors.New("static: nil registrar")
)
