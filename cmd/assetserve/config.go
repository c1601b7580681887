package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrymomot/assetserve/core/config"
	"github.com/dmitrymomot/assetserve/core/logger"
	"github.com/dmitrymomot/assetserve/core/server"
	"github.com/dmitrymomot/assetserve/core/static"
	"github.com/dmitrymomot/assetserve/integration/storage/s3"
	"github.com/dmitrymomot/assetserve/middleware"
)

// Config is the process configuration: environment first, then the
// optional YAML file on top.
type Config struct {
	AppName   string `env:"APP_NAME" envDefault:"assetserve" yaml:"app_name"`
	Env       string `env:"APP_ENV" envDefault:"development" yaml:"env"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" yaml:"log_format"`

	Server server.Config `yaml:"server"`
	Static static.Config `yaml:"static"`
	S3     s3.Config     `yaml:"s3"`
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return cfg, err
	}
	if err := config.LoadFile(path, &cfg); err != nil {
		return cfg, err
	}

	// Production pre-registers every file unless told otherwise.
	if cfg.production() {
		if _, set := os.LookupEnv("STATIC_ALWAYS"); !set {
			cfg.Static.AlwaysStatic = true
		}
	}
	return cfg, nil
}

func (c Config) production() bool {
	return strings.EqualFold(c.Env, "production")
}

func newLogger(cfg Config, w io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []logger.Option{
		logger.WithLevel(level),
		logger.WithOutput(w),
		logger.WithAttr(slog.String("service", cfg.AppName), slog.String("env", cfg.Env)),
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	}
	if strings.EqualFold(cfg.LogFormat, "json") {
		opts = append(opts, logger.WithJSONFormatter())
	}
	return logger.New(opts...), nil
}
