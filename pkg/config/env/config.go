// Package env sources config values from environment variables.
package env

import (
	"context"
	"os"
	"strings"

	"github.com/code-payments/pnft-transfer/pkg/config"
	"github.com/code-payments/pnft-transfer/pkg/config/wrapper"
)

type conf struct {
	key string
}

// NewConfig returns a config reading the upper cased key from the
// environment. The variable is read on every Get, and an empty variable
// counts as unset.
func NewConfig(key string) config.Config {
	return &conf{key: strings.ToUpper(key)}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	val := os.Getenv(c.key)
	if len(val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewStringConfig creates an env-based string config
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewBoolConfig creates an env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}
