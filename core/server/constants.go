package server

import "time"

// Defaults applied by New and DefaultConfig.
const (
	DefaultAddr = ":8080"

	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second

	DefaultMaxHeaderBytes = 1 << 20
)
