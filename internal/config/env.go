package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv overlays LOADCTX_* environment variables onto target. Variables
// that are unset leave the existing values in place.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
