package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoginEvent() LoginEvent {
	return LoginEvent{
		Kind:      "new_device_login",
		UserID:    1,
		Email:     "owner@example.com",
		DeviceID:  "dev-1",
		Label:     "Firefox",
		UserAgent: "Mozilla/5.0",
		IPAddress: "203.0.113.7",
		At:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewLoginAlertServiceRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts LoginAlertOptions
	}{
		{name: "empty URL", opts: LoginAlertOptions{}},
		{name: "bad scheme", opts: LoginAlertOptions{WebhookURL: "ftp://alerts.example"}},
		{name: "missing host", opts: LoginAlertOptions{WebhookURL: "https://"}},
		{name: "bad JMESPath", opts: LoginAlertOptions{WebhookURL: "https://alerts.example", BodyExpr: "]["}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoginAlertService(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestNewDeviceLoginDeliversEventAsIs(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, err := NewLoginAlertService(LoginAlertOptions{
		WebhookURL: server.URL,
		Headers:    map[string]string{"X-Alert-Key": "secret"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.NewDeviceLogin(context.Background(), testLoginEvent()))

	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "secret", gotHeader.Get("X-Alert-Key"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "new_device_login", payload["kind"])
	assert.Equal(t, "owner@example.com", payload["email"])
}

func TestNewDeviceLoginBodyExprReshapesPayload(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Slack-style payload from configuration alone.
	svc, err := NewLoginAlertService(LoginAlertOptions{
		WebhookURL: server.URL,
		BodyExpr:   "{text: email, channel: 'alerts'}",
	})
	require.NoError(t, err)

	require.NoError(t, svc.NewDeviceLogin(context.Background(), testLoginEvent()))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "owner@example.com", payload["text"])
	assert.Equal(t, "alerts", payload["channel"])
	assert.NotContains(t, payload, "user_agent")
}

func TestNewDeviceLoginUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	svc, err := NewLoginAlertService(LoginAlertOptions{WebhookURL: server.URL})
	require.NoError(t, err)

	err = svc.NewDeviceLogin(context.Background(), testLoginEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewDeviceLoginCustomOkStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc, err := NewLoginAlertService(LoginAlertOptions{WebhookURL: server.URL, OkStatus: http.StatusAccepted})
	require.NoError(t, err)

	assert.NoError(t, svc.NewDeviceLogin(context.Background(), testLoginEvent()))
}
