package httpx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fooddash/console-api/internal/domain/model"
	apperrors "github.com/fooddash/console-api/internal/errors"
)

// DeviceServiceInterface defines the device operations used by handlers.
type DeviceServiceInterface interface {
	List(ctx context.Context, opts *model.DevicesListOptions) ([]*model.Device, error)
	Get(ctx context.Context, id string) (*model.Device, error)
	Revoke(ctx context.Context, id string) (*model.Device, error)
}

// DeviceHandlers provides HTTP handlers for login-device management.
// Devices are strictly account-scoped: a caller can only ever see or
// revoke their own.
type DeviceHandlers struct {
	Svc DeviceServiceInterface
}

// List returns the caller's devices.
// GET /api/devices?include_revoked=true&limit=&offset=.
func (h *DeviceHandlers) List(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil || session.Identity == nil {
		RenderError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	includeRevoked := q.Get("include_revoked") == "true"

	devices, err := h.Svc.List(r.Context(), &model.DevicesListOptions{
		UserID:         session.Identity.ID,
		Limit:          limit,
		Offset:         offset,
		IncludeRevoked: includeRevoked,
	})
	if err != nil {
		RenderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

// Revoke revokes one of the caller's devices and tears down its session.
// DELETE /api/devices/{id}.
func (h *DeviceHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil || session.Identity == nil {
		RenderError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	id := r.PathValue("id")
	device, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		RenderError(w, err)
		return
	}
	// A foreign device is indistinguishable from a missing one.
	if device.UserID != session.Identity.ID {
		RenderError(w, apperrors.NotFound("device not found"))
		return
	}

	revoked, err := h.Svc.Revoke(r.Context(), id)
	if err != nil {
		RenderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"device": revoked})
}
