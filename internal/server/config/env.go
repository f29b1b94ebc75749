package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays PROFILEKEEPER_* variables. Unset variables keep the
// current value.
func parseEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
