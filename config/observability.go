package config

import "strings"

// ObservabilityConfig groups configuration that controls logging and metrics.
type ObservabilityConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StatsD metrics emission. Disabled unless an address is set.
	StatsdEnabled bool   `env:"STATSD_ENABLED" envDefault:"false"`
	StatsdAddress string `env:"STATSD_ADDRESS" envDefault:""`
	StatsdPrefix  string `env:"STATSD_PREFIX"  envDefault:"console"`
}

// Sanitize normalises observability configuration values.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}

	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.StatsdEnabled = false
	}
}
