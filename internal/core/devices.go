package core

import (
	"context"

	"github.com/fooddash/console-api/internal/domain/model"
)

// DeviceRepository defines the interface for login-device data operations.
// Service implementations should depend on this interface, not the
// concrete data layer.
type DeviceRepository interface {
	// Record upserts a device by (user, fingerprint) and reports whether
	// this login created a new device row.
	Record(ctx context.Context, req *model.RecordDeviceRequest) (*model.Device, bool, error)
	GetByID(ctx context.Context, id string) (*model.Device, error)
	List(ctx context.Context, opts *model.DevicesListOptions) ([]*model.Device, error)
	// Revoke marks the device revoked and returns it so callers can tear
	// down its session. Returns false when the device does not exist.
	Revoke(ctx context.Context, id string) (*model.Device, bool, error)
	DeleteForUser(ctx context.Context, userID int64) (int, error)
}
