// Package config defines typed, dynamically sourced configuration values.
// Implementations live in the env and memory subpackages, and wrapper turns
// an untyped source into a typed value with a default.
package config

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates the source holds no value for the config.
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the config was used after Shutdown.
	ErrShutdown = errors.New("config: shutdown")
)

// Config is an untyped configuration source.
type Config interface {
	// Get returns the current raw value.
	Get(ctx context.Context) (interface{}, error)

	// Shutdown releases any resources held by the source.
	Shutdown()
}

// Bool provides a boolean typed config.Config.
type Bool interface {
	Get(ctx context.Context) bool
	GetSafe(ctx context.Context) (bool, error)
	Shutdown()
}

// String provides a string typed config.Config.
type String interface {
	Get(ctx context.Context) string
	GetSafe(ctx context.Context) (string, error)
	Shutdown()
}
