// Package config loads typed configuration from the environment and,
// optionally, from a YAML file.
//
//	type Config struct {
//		Addr   string        `env:"SERVER_ADDR" envDefault:":8080" yaml:"addr"`
//		Assets string        `env:"STATIC_ASSETS" envDefault:"public" yaml:"assets"`
//		TTL    time.Duration `env:"STATIC_CACHE_TTL" envDefault:"3h" yaml:"cache_ttl"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)                            // .env + environment, cached per type
//	if err := config.LoadFile(*path, &cfg); err != nil { // YAML overlay
//		return err
//	}
//
// Load reads a .env file once per process through godotenv and parses
// variables with caarlos0/env. Each struct type is parsed once; subsequent
// Load calls for the same type return the cached value.
package config
