package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment. CI is detected from the
// CI variable; everything else comes from APP_ENV or ENV and falls back to
// development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	name := os.Getenv("APP_ENV")
	if name == "" {
		name = os.Getenv("ENV")
	}
	return ParseEnvironment(name)
}

// ParseEnvironment maps a name such as "prod" or "Production" onto an Environment.
func ParseEnvironment(name string) Environment {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test", "testing":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// IsProduction reports whether the config was loaded for production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
