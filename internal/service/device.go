package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fooddash/console-api/internal/core"
	"github.com/fooddash/console-api/internal/domain/model"
	apperrors "github.com/fooddash/console-api/internal/errors"
	"github.com/fooddash/console-api/internal/observability/metrics"
	"github.com/fooddash/console-api/internal/observability/statsd"
	"github.com/fooddash/console-api/internal/ports"
)

// LoginNotifier is notified when a login arrives from a device not
// seen before. Satisfied by LoginAlertService.
type LoginNotifier interface {
	NewDeviceLogin(ctx context.Context, event LoginEvent) error
}

// DeviceServiceOptions groups dependencies for DeviceService.
type DeviceServiceOptions struct {
	Repo     core.DeviceRepository
	Sessions ports.SessionStore
	// Alerts fires on first-seen devices. Optional.
	Alerts LoginNotifier
	// Metrics counts first-seen devices. Optional.
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// DeviceService tracks the devices an account has logged in from and
// lets owners revoke them. Revoking a device also tears down its
// session, so the next request from that device lands unauthenticated.
type DeviceService struct {
	repo     core.DeviceRepository
	sessions ports.SessionStore
	alerts   LoginNotifier
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewDeviceService constructs a new DeviceService.
func NewDeviceService(opts DeviceServiceOptions) *DeviceService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceService{
		repo:     opts.Repo,
		sessions: opts.Sessions,
		alerts:   opts.Alerts,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// RecordLoginInput groups parameters for RecordLogin.
type RecordLoginInput struct {
	UserID    int64
	Email     string
	SessionID string
	UserAgent string
	IPAddress string
}

// RecordLogin upserts the device row for this login and, when the
// device is new for the account, dispatches the login alert. Alert
// delivery is best-effort.
func (s *DeviceService) RecordLogin(ctx context.Context, input RecordLoginInput) (*model.Device, error) {
	req := &model.RecordDeviceRequest{
		UserID:      input.UserID,
		SessionID:   input.SessionID,
		Fingerprint: deviceFingerprint(input.UserAgent),
		Label:       deviceLabel(input.UserAgent),
		UserAgent:   input.UserAgent,
		IPAddress:   input.IPAddress,
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "record login device")
	}

	device, isNew, err := s.repo.Record(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("record device: %w", err)
	}

	if isNew {
		metrics.EmitNewDevice(s.metrics)
	}

	if isNew && s.alerts != nil {
		event := LoginEvent{
			Kind:      "new_device_login",
			UserID:    input.UserID,
			Email:     input.Email,
			DeviceID:  device.ID,
			Label:     device.Label,
			UserAgent: device.UserAgent,
			IPAddress: device.IPAddress,
			At:        time.Now().UTC(),
		}
		if alertErr := s.alerts.NewDeviceLogin(ctx, event); alertErr != nil {
			s.logger.WarnContext(ctx, "new-device login alert failed",
				"error", alertErr, "user_id", input.UserID, "device_id", device.ID)
		}
	}

	return device, nil
}

// List returns the devices for one account, most recent first.
func (s *DeviceService) List(ctx context.Context, opts *model.DevicesListOptions) ([]*model.Device, error) {
	if opts == nil || opts.UserID <= 0 {
		return nil, apperrors.Validation("user ID is required")
	}
	devices, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// Get retrieves one device by ID.
func (s *DeviceService) Get(ctx context.Context, id string) (*model.Device, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.Validation("device ID is required")
	}
	device, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return device, nil
}

// Revoke marks a device revoked and deletes its session.
func (s *DeviceService) Revoke(ctx context.Context, id string) (*model.Device, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.Validation("device ID is required")
	}

	device, ok, err := s.repo.Revoke(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("revoke device: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("device not found")
	}

	if device.SessionID != "" {
		if delErr := s.sessions.Delete(ctx, device.SessionID); delErr != nil {
			return nil, fmt.Errorf("delete revoked device session: %w", delErr)
		}
	}

	return device, nil
}

// PurgeForUser removes every device row for an account.
func (s *DeviceService) PurgeForUser(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, apperrors.Validation("user ID is required")
	}
	n, err := s.repo.DeleteForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("purge devices: %w", err)
	}
	return n, nil
}

// deviceFingerprint derives a stable key for a browser/app instance.
// User agents are coarse, so repeat logins from the same browser
// collapse onto one row.
func deviceFingerprint(userAgent string) string {
	ua := strings.TrimSpace(userAgent)
	if ua == "" {
		ua = "unknown"
	}
	sum := sha256.Sum256([]byte(ua))
	return hex.EncodeToString(sum[:16])
}

// deviceLabel produces a short human-readable name from the user agent.
func deviceLabel(userAgent string) string {
	ua := strings.TrimSpace(userAgent)
	if ua == "" {
		return "Unknown device"
	}
	if idx := strings.IndexAny(ua, "(/"); idx > 0 {
		ua = ua[:idx]
	}
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return "Unknown device"
	}
	return ua
}
