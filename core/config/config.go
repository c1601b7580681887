package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> value of that type
)

// Load populates cfg from environment variables using `env` struct tags.
// A .env file in the working directory is read once, without overriding
// variables that are already set. The result is cached per type, so later
// calls for the same type return the first result.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	key := reflect.TypeOf(cfg).Elem()
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal case in containers.
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	v, _ := cache.LoadOrStore(key, *cfg)
	*cfg = v.(T)
	return nil
}

// MustLoad is Load that panics on error. Intended for process startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadFile overlays values from a YAML file onto cfg using `yaml` struct
// tags. Keys absent from the file keep their current values, so it is meant
// to run after Load. An empty path is a no-op.
func LoadFile[T any](path string, cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return nil
}
