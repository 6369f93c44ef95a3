package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// LoginEvent is the document a login alert is rendered from.
type LoginEvent struct {
	Kind      string    `json:"kind"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	DeviceID  string    `json:"device_id"`
	Label     string    `json:"label"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	At        time.Time `json:"at"`
}

// LoginAlertOptions groups configuration for LoginAlertService.
type LoginAlertOptions struct {
	// WebhookURL receives the alert. Required.
	WebhookURL string
	// Method defaults to POST.
	Method string
	// Headers are sent verbatim on every delivery.
	Headers map[string]string
	// BodyExpr is a JMESPath expression reshaping the event document
	// into the receiver's payload format. Empty sends the event as-is.
	BodyExpr string
	// OkStatus is the expected response status. Defaults to 200.
	OkStatus int

	HTTPClient *http.Client
	Evaluator  JMESPathEvaluator
	Logger     *slog.Logger
}

// LoginAlertService delivers new-device login notifications to a
// configured webhook, reshaping the event payload with JMESPath so one
// deployment can feed Slack, PagerDuty, or an internal audit service
// without code changes.
type LoginAlertService struct {
	webhookURL string
	method     string
	headers    map[string]string
	bodyExpr   string
	okStatus   int
	http       *http.Client
	jems       JMESPathEvaluator
	logger     *slog.Logger
}

// NewLoginAlertService constructs a LoginAlertService and validates its
// configuration. The JMESPath expression and webhook URL are rejected
// at startup, not at first delivery.
func NewLoginAlertService(opts LoginAlertOptions) (*LoginAlertService, error) {
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodPost
	}
	okStatus := opts.OkStatus
	if okStatus == 0 {
		okStatus = http.StatusOK
	}

	s := &LoginAlertService{
		webhookURL: strings.TrimSpace(opts.WebhookURL),
		method:     method,
		headers:    opts.Headers,
		bodyExpr:   opts.BodyExpr,
		okStatus:   okStatus,
		http:       client,
		jems:       jems,
		logger:     logger,
	}
	if err := s.validateConfiguration(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LoginAlertService) validateConfiguration() error {
	u, err := url.Parse(s.webhookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid webhook URL scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("invalid webhook URL: missing host")
	}
	if err := s.jems.Validate(s.bodyExpr); err != nil {
		return fmt.Errorf("invalid body JMESPath: %w", err)
	}
	return nil
}

// NewDeviceLogin delivers one alert. Implements LoginNotifier.
func (s *LoginAlertService) NewDeviceLogin(ctx context.Context, event LoginEvent) error {
	body, err := s.renderBody(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, s.method, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("deliver login alert: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != s.okStatus {
		// Drain a little of the body for the log line.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("login alert webhook returned %d (want %d): %s",
			resp.StatusCode, s.okStatus, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// renderBody reshapes the event through the configured JMESPath
// expression. The expression sees the event as a plain JSON document.
func (s *LoginAlertService) renderBody(event LoginEvent) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode login event: %w", err)
	}
	if strings.TrimSpace(s.bodyExpr) == "" {
		return raw, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode login event: %w", err)
	}
	shaped, err := s.jems.Evaluate(s.bodyExpr, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate body JMESPath: %w", err)
	}
	body, err := json.Marshal(shaped)
	if err != nil {
		return nil, fmt.Errorf("encode alert payload: %w", err)
	}
	return body, nil
}
