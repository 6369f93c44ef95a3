//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxDeviceLabelLen     = 120
	maxDeviceUserAgentLen = 512
)

// Device is one browser or app instance that has signed in to the
// console. Devices are keyed by a fingerprint derived from the user
// agent so repeat logins from the same browser update the existing row
// instead of creating a new one.
type Device struct {
	ID          string     `json:"id"           db:"id"`
	UserID      int64      `json:"user_id"      db:"user_id"`
	SessionID   string     `json:"-"            db:"session_id"`
	Fingerprint string     `json:"-"            db:"fingerprint"`
	Label       string     `json:"label"        db:"label"`
	UserAgent   string     `json:"user_agent"   db:"user_agent"`
	IPAddress   string     `json:"ip_address"   db:"ip_address"`
	FirstSeen   time.Time  `json:"first_seen"   db:"first_seen"`
	LastSeen    time.Time  `json:"last_seen"    db:"last_seen"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// Revoked reports whether the device has been revoked.
func (d *Device) Revoked() bool {
	return d.RevokedAt != nil
}

// RecordDeviceRequest captures one observed login from a device.
type RecordDeviceRequest struct {
	UserID      int64
	SessionID   string
	Fingerprint string
	Label       string
	UserAgent   string
	IPAddress   string
}

// Validate checks required fields and length limits.
func (r *RecordDeviceRequest) Validate() error {
	if r.UserID <= 0 {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session ID is required")
	}
	if strings.TrimSpace(r.Fingerprint) == "" {
		return errors.New("device fingerprint is required")
	}
	if utf8.RuneCountInString(r.Label) > maxDeviceLabelLen {
		return errors.New("device label is too long")
	}
	if utf8.RuneCountInString(r.UserAgent) > maxDeviceUserAgentLen {
		return errors.New("user agent is too long")
	}
	return nil
}

// DevicesListOptions controls paging for listing a user's devices.
type DevicesListOptions struct {
	UserID         int64
	Limit          int
	Offset         int
	IncludeRevoked bool
}
