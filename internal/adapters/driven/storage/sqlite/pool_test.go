package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func TestPool_WriterPragmas(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	w, err := store.pool.AcquireWriter(ctx)
	require.NoError(t, err)
	defer w.Release()

	var journal string
	require.NoError(t, w.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&journal))
	assert.Equal(t, "wal", journal)

	var sync, foreignKeys, busy int
	require.NoError(t, w.QueryRowContext(ctx, `PRAGMA synchronous`).Scan(&sync))
	assert.Equal(t, 1, sync) // NORMAL
	require.NoError(t, w.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
	require.NoError(t, w.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busy))
	assert.Equal(t, 5000, busy)
}

func TestPool_DefaultBusyTimeout(t *testing.T) {
	p := NewPool(NewPathProvider(domain.EnvironmentProduction, t.TempDir()), 0)
	assert.Equal(t, DefaultBusyTimeout, p.busyTimeout)
}

func TestPool_SingleWriter(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	w, err := store.pool.AcquireWriter(context.Background())
	require.NoError(t, err)

	stats := store.PoolStats()
	assert.Equal(t, 1, stats.InUse)
	assert.Equal(t, 0, stats.Available)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = store.pool.AcquireWriter(ctx)
	require.Error(t, err)

	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "acquire writer", connErr.Op)
	assert.ErrorIs(t, err, domain.ErrPermitUnavailable)

	// The cancelled waiter must not hold the permit.
	w.Release()
	w.Release()

	w2, err := store.pool.AcquireWriter(context.Background())
	require.NoError(t, err)
	w2.Release()

	stats = store.PoolStats()
	assert.Equal(t, 0, stats.InUse)
	assert.Equal(t, 1, stats.Available)
}

func TestPool_WaitingWriterProceedsAfterRelease(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	w, err := store.pool.AcquireWriter(context.Background())
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		w2, err := store.pool.AcquireWriter(context.Background())
		if err == nil {
			w2.Release()
		}
		acquired <- err
	}()

	select {
	case <-acquired:
		t.Fatal("second writer acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	w.Release()
	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("second writer never acquired")
	}
}

func TestPool_WithTx_RollsBackOnError(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.pool.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO Conversations (Title, CreatedAt, UpdatedAt) VALUES ('t', 'a', 'a')`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), queryInt(t, store, `SELECT COUNT(*) FROM Conversations`))
	assert.Equal(t, 1, store.PoolStats().Available)
}

func TestPool_WithTx_Commits(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	err := store.pool.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO Conversations (Title, CreatedAt, UpdatedAt) VALUES ('t', 'a', 'a')`)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), queryInt(t, store, `SELECT COUNT(*) FROM Conversations`))
}

func TestPool_SharedReader(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	db, err := store.pool.SharedReader(ctx)
	require.NoError(t, err)

	again, err := store.pool.SharedReader(ctx)
	require.NoError(t, err)
	assert.Same(t, db, again)

	_, err = db.ExecContext(ctx,
		`INSERT INTO Conversations (Title, CreatedAt, UpdatedAt) VALUES ('t', 'a', 'a')`)
	assert.Error(t, err, "reader must be read-only")

	stats := store.PoolStats()
	assert.Equal(t, 2, stats.Max)
	assert.Equal(t, 1, stats.Total)
}

func TestPool_SharedReaderReopens(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	db, err := store.pool.SharedReader(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := store.pool.SharedReader(ctx)
	require.NoError(t, err)
	assert.NotSame(t, db, reopened)
	assert.NoError(t, reopened.PingContext(ctx))
}

func TestPool_ReaderSeesCommittedWrites(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	// Open the reader before writing so it is not freshly connected.
	assert.Equal(t, int64(0), queryInt(t, store, `SELECT COUNT(*) FROM Conversations`))

	_, err := store.Conversations().Create(ctx, &domain.Conversation{Title: "hello"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), queryInt(t, store, `SELECT COUNT(*) FROM Conversations`))
}

func TestPool_Exclusive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.pool.SharedReader(ctx)
	require.NoError(t, err)

	err = store.pool.Exclusive(ctx, func() error {
		stats := store.PoolStats()
		assert.Equal(t, 0, stats.Total, "reader must be closed")

		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := store.pool.AcquireWriter(short)
		assert.ErrorIs(t, err, domain.ErrPermitUnavailable)
		return nil
	})
	require.NoError(t, err)
}
