package config

import (
	"strings"
	"time"
)

// LoginAlertConfig controls the new-device login alert webhook.
// BodyExpr is a JMESPath expression reshaping the login event into the
// receiver's payload format, so one deployment can feed Slack, an
// audit service, or anything else without code changes.
type LoginAlertConfig struct {
	Enabled    bool              `env:"ENABLED"   envDefault:"false"`
	WebhookURL string            `env:"WEBHOOK_URL"`
	Method     string            `env:"METHOD"    envDefault:"POST"`
	Headers    map[string]string `env:"HEADERS"`
	BodyExpr   string            `env:"BODY_EXPR"`
	OkStatus   int               `env:"OK_STATUS" envDefault:"200"`
	Timeout    time.Duration     `env:"TIMEOUT"   envDefault:"10s"`
}

// Sanitize normalises login alert configuration values.
func (c *LoginAlertConfig) Sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	if c.WebhookURL == "" {
		c.Enabled = false
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// IsEnabled returns true when alert delivery is active after sanitisation.
func (c *LoginAlertConfig) IsEnabled() bool {
	return c.Enabled && c.WebhookURL != ""
}
