package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by gradebook commands.
const EnvPrefix = "GRADEBOOK_"

// Telemetry controls span export. Export stays off until an endpoint is set.
type Telemetry struct {
	Endpoint string `env:"GRADEBOOK_OTEL_ENDPOINT"`
	Enabled  string `env:"GRADEBOOK_OTEL_ENABLED"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
