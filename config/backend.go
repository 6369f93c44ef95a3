package config

import "time"

// BackendConfig contains configuration for the upstream restaurant
// backend the console fronts.
type BackendConfig struct {
	// BaseURL is the upstream API root, e.g. "https://api.fooddash.example".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds each upstream call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// StateCacheTTL bounds the identity/subscription snapshots seeded
	// into the shared state cache during bootstrap.
	StateCacheTTL time.Duration `env:"STATE_CACHE_TTL" envDefault:"5m"`
}

// Sanitize applies guardrails to backend configuration values.
func (c *BackendConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.StateCacheTTL <= 0 {
		c.StateCacheTTL = 5 * time.Minute
	}
}
