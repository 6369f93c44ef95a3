package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddash/console-api/internal/domain/model"
	apperrors "github.com/fooddash/console-api/internal/errors"
	"github.com/fooddash/console-api/internal/testutil"
)

func recordRequest(userID int64, fingerprint string) *model.RecordDeviceRequest {
	return &model.RecordDeviceRequest{
		UserID:      userID,
		SessionID:   "sess-1",
		Fingerprint: fingerprint,
		Label:       "Firefox",
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0",
		IPAddress:   "203.0.113.7",
	}
}

func TestDeviceRepoRecordInsert(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewDeviceRepoWithTimeProvider(db, NewFixedTimeProvider(testutil.TestTime()))
		ctx := context.Background()

		dev, inserted, err := repo.Record(ctx, recordRequest(1, "fp-1"))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NotEmpty(t, dev.ID)
		assert.Equal(t, int64(1), dev.UserID)
		assert.Equal(t, "Firefox", dev.Label)
		assert.True(t, dev.FirstSeen.Equal(testutil.TestTime()))
		assert.True(t, dev.LastSeen.Equal(testutil.TestTime()))
		assert.Nil(t, dev.RevokedAt)
	})
}

func TestDeviceRepoRecordRepeatLoginUpdates(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewDeviceRepoWithTimeProvider(db, tp)
		ctx := context.Background()

		first, inserted, err := repo.Record(ctx, recordRequest(1, "fp-1"))
		require.NoError(t, err)
		require.True(t, inserted)

		tp.AddTime(time.Hour)
		again := recordRequest(1, "fp-1")
		again.SessionID = "sess-2"
		again.IPAddress = "198.51.100.9"

		second, inserted, err := repo.Record(ctx, again)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "sess-2", second.SessionID)
		assert.Equal(t, "198.51.100.9", second.IPAddress)
		assert.True(t, second.FirstSeen.Equal(first.FirstSeen))
		assert.True(t, second.LastSeen.Equal(tp.Now()))
	})
}

func TestDeviceRepoRecordClearsRevocation(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewDeviceRepoWithTimeProvider(db, NewFixedTimeProvider(testutil.TestTime()))
		ctx := context.Background()

		dev, _, err := repo.Record(ctx, recordRequest(1, "fp-1"))
		require.NoError(t, err)
		_, ok, err := repo.Revoke(ctx, dev.ID)
		require.NoError(t, err)
		require.True(t, ok)

		back, inserted, err := repo.Record(ctx, recordRequest(1, "fp-1"))
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Nil(t, back.RevokedAt)
	})
}

func TestDeviceRepoRecordValidation(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewDeviceRepo(db)
		ctx := context.Background()

		_, _, err := repo.Record(ctx, nil)
		assert.Error(t, err)

		req := recordRequest(0, "fp-1")
		_, _, err = repo.Record(ctx, req)
		assert.Error(t, err)

		req = recordRequest(1, "   ")
		_, _, err = repo.Record(ctx, req)
		assert.Error(t, err)
	})
}

func TestDeviceRepoGetByID(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewDeviceRepo(db)
		ctx := context.Background()

		dev, _, err := repo.Record(ctx, recordRequest(1, "fp-1"))
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, dev.ID)
		require.NoError(t, err)
		assert.Equal(t, dev.ID, got.ID)
		assert.Equal(t, "fp-1", got.Fingerprint)

		_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestDeviceRepoList(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewDeviceRepoWithTimeProvider(db, tp)
		ctx := context.Background()

		older, _, err := repo.Record(ctx, recordRequest(1, "fp-old"))
		require.NoError(t, err)
		tp.AddTime(time.Minute)
		newer, _, err := repo.Record(ctx, recordRequest(1, "fp-new"))
		require.NoError(t, err)
		_, _, err = repo.Record(ctx, recordRequest(2, "fp-other"))
		require.NoError(t, err)

		devices, err := repo.List(ctx, &model.DevicesListOptions{UserID: 1})
		require.NoError(t, err)
		require.Len(t, devices, 2)
		assert.Equal(t, newer.ID, devices[0].ID, "most recently seen first")
		assert.Equal(t, older.ID, devices[1].ID)
	})
}

func TestDeviceRepoListFiltersRevoked(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewDeviceRepo(db)
		ctx := context.Background()

		keep, _, err := repo.Record(ctx, recordRequest(1, "fp-keep"))
		require.NoError(t, err)
		gone, _, err := repo.Record(ctx, recordRequest(1, "fp-gone"))
		require.NoError(t, err)
		_, ok, err := repo.Revoke(ctx, gone.ID)
		require.NoError(t, err)
		require.True(t, ok)

		devices, err := repo.List(ctx, &model.DevicesListOptions{UserID: 1})
		require.NoError(t, err)
		require.Len(t, devices, 1)
		assert.Equal(t, keep.ID, devices[0].ID)

		all, err := repo.List(ctx, &model.DevicesListOptions{UserID: 1, IncludeRevoked: true})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestDeviceRepoListPaging(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewDeviceRepoWithTimeProvider(db, tp)
		ctx := context.Background()

		for _, fp := range []string{"fp-a", "fp-b", "fp-c"} {
			_, _, err := repo.Record(ctx, recordRequest(1, fp))
			require.NoError(t, err)
			tp.AddTime(time.Minute)
		}

		page, err := repo.List(ctx, &model.DevicesListOptions{UserID: 1, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := repo.List(ctx, &model.DevicesListOptions{UserID: 1, Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, rest, 1)

		_, err = repo.List(ctx, nil)
		assert.Error(t, err)
	})
}

func TestDeviceRepoRevokeKeepsOriginalTimestamp(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewDeviceRepoWithTimeProvider(db, tp)
		ctx := context.Background()

		dev, _, err := repo.Record(ctx, recordRequest(1, "fp-1"))
		require.NoError(t, err)

		first, ok, err := repo.Revoke(ctx, dev.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, first.RevokedAt)

		tp.AddTime(time.Hour)
		second, ok, err := repo.Revoke(ctx, dev.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, second.RevokedAt)
		assert.True(t, second.RevokedAt.Equal(*first.RevokedAt))
	})
}

func TestDeviceRepoRevokeMissing(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewDeviceRepo(db)

		dev, ok, err := repo.Revoke(context.Background(), "00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, dev)
	})
}

func TestDeviceRepoDeleteForUser(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewDeviceRepo(db)
		ctx := context.Background()

		_, _, err := repo.Record(ctx, recordRequest(1, "fp-a"))
		require.NoError(t, err)
		_, _, err = repo.Record(ctx, recordRequest(1, "fp-b"))
		require.NoError(t, err)
		_, _, err = repo.Record(ctx, recordRequest(2, "fp-c"))
		require.NoError(t, err)

		deleted, err := repo.DeleteForUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		remaining, err := repo.List(ctx, &model.DevicesListOptions{UserID: 2})
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}
