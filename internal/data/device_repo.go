package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fooddash/console-api/internal/data/pgxutil"
	"github.com/fooddash/console-api/internal/domain/model"
	apperrors "github.com/fooddash/console-api/internal/errors"
)

const deviceColumns = `id, user_id, session_id, fingerprint, label, user_agent, ip_address, first_seen, last_seen, revoked_at`

// DeviceRepo provides database operations for login devices.
type DeviceRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewDeviceRepo creates a new DeviceRepo with real time provider.
func NewDeviceRepo(db *sql.DB) *DeviceRepo {
	return &DeviceRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewDeviceRepoWithTimeProvider creates a new DeviceRepo with a custom time provider (useful for tests).
func NewDeviceRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *DeviceRepo {
	return &DeviceRepo{DB: db, timeProvider: tp}
}

// recordedDeviceRow augments the device columns with the insert marker
// from the upsert.
type recordedDeviceRow struct {
	model.Device
	Inserted bool `db:"inserted"`
}

// Record upserts a device by (user, fingerprint). A repeat login
// refreshes the session binding and last-seen time and clears any
// revocation; the returned bool reports whether a new row was created.
func (r *DeviceRepo) Record(ctx context.Context, req *model.RecordDeviceRequest) (*model.Device, bool, error) {
	if req == nil {
		return nil, false, errors.New("record device request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	now := r.timeProvider.Now().UTC()
	var out recordedDeviceRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO devices (
				id, user_id, session_id, fingerprint, label, user_agent, ip_address, first_seen, last_seen
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (user_id, fingerprint) DO UPDATE SET
				session_id = EXCLUDED.session_id,
				label      = EXCLUDED.label,
				user_agent = EXCLUDED.user_agent,
				ip_address = EXCLUDED.ip_address,
				last_seen  = EXCLUDED.last_seen,
				revoked_at = NULL
			RETURNING `+deviceColumns+`, (xmax = 0) AS inserted
		`,
			uuid.NewString(),
			req.UserID,
			req.SessionID,
			req.Fingerprint,
			req.Label,
			req.UserAgent,
			req.IPAddress,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[recordedDeviceRow])
		return err
	}); err != nil {
		return nil, false, apperrors.MapDBError(err)
	}
	return &out.Device, out.Inserted, nil
}

// GetByID retrieves a device by ID.
func (r *DeviceRepo) GetByID(ctx context.Context, id string) (*model.Device, error) {
	var out model.Device
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Device])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves an account's devices, most recently seen first.
func (r *DeviceRepo) List(ctx context.Context, opts *model.DevicesListOptions) ([]*model.Device, error) {
	if opts == nil {
		return nil, errors.New("list options are required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	var rowsOut []model.Device
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+deviceColumns+`
			FROM devices
			WHERE user_id = $1 AND (revoked_at IS NULL OR $2)
			ORDER BY last_seen DESC
			LIMIT $3 OFFSET $4
		`, opts.UserID, opts.IncludeRevoked, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Device])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	res := make([]*model.Device, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Revoke marks a device revoked. Revoking an already-revoked device
// keeps the original revocation time.
func (r *DeviceRepo) Revoke(ctx context.Context, id string) (*model.Device, bool, error) {
	now := r.timeProvider.Now().UTC()
	var out model.Device
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE devices
			SET revoked_at = COALESCE(revoked_at, $2)
			WHERE id = $1
			RETURNING `+deviceColumns+`
		`, id, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Device])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, apperrors.MapDBError(err)
	}
	return &out, true, nil
}

// DeleteForUser removes every device row for an account and returns the
// number deleted.
func (r *DeviceRepo) DeleteForUser(ctx context.Context, userID int64) (int, error) {
	var deleted int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM devices WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		deleted = int(tag.RowsAffected())
		return nil
	}); err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return deleted, nil
}
