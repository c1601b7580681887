package config

import "errors"

var (
	ErrNilConfig    = errors.New("config: nil config pointer")
	ErrParse        = errors.New("config: parse failed")
	ErrFileNotFound = errors.New("config: file not found")
)
