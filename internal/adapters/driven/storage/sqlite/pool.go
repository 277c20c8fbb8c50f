package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/logger"
)

// DefaultBusyTimeout is how long a connection waits on a locked database
// before giving up with SQLITE_BUSY.
const DefaultBusyTimeout = 30 * time.Second

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// writerPragmas are applied, in order, to every writer connection.
// busy_timeout goes first so the journal switch itself can wait on a lock.
var writerPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
}

// Pool hands out database connections.
//
// Writes are serialised through a single permit: at most one writer
// connection exists at any time, and each acquisition opens a fresh
// physical connection that is closed on release. Reads share one cached
// read-only connection that never takes the permit.
type Pool struct {
	paths       *PathProvider
	busyTimeout time.Duration
	permit      *semaphore.Weighted
	inUse       atomic.Int32

	mu     sync.Mutex
	writer *sql.DB
	reader *sql.DB
	closed bool
}

// NewPool creates a pool over the database resolved by paths.
// A zero busyTimeout selects DefaultBusyTimeout.
func NewPool(paths *PathProvider, busyTimeout time.Duration) *Pool {
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}
	return &Pool{
		paths:       paths,
		busyTimeout: busyTimeout,
		permit:      semaphore.NewWeighted(1),
	}
}

// WriterConn is an exclusive writer connection.
// Release must be called exactly once; further calls are no-ops.
type WriterConn struct {
	*sql.Conn
	pool *Pool
	once sync.Once
}

// Release closes the physical connection and returns the writer permit.
func (w *WriterConn) Release() {
	w.once.Do(func() {
		if err := w.Conn.Close(); err != nil {
			logger.Warn("closing writer connection: %v", err)
		}
		w.pool.inUse.Add(-1)
		w.pool.permit.Release(1)
	})
}

// AcquireWriter waits for the writer permit and opens a configured connection.
// If ctx ends first, the returned ConnectionError wraps domain.ErrPermitUnavailable
// and nothing is held.
func (p *Pool) AcquireWriter(ctx context.Context) (*WriterConn, error) {
	if err := p.permit.Acquire(ctx, 1); err != nil {
		return nil, &domain.ConnectionError{
			Op:  "acquire writer",
			Err: fmt.Errorf("%w: %v", domain.ErrPermitUnavailable, err),
		}
	}

	conn, err := p.openWriter(ctx)
	if err != nil {
		p.permit.Release(1)
		return nil, err
	}

	p.inUse.Add(1)
	return &WriterConn{Conn: conn, pool: p}, nil
}

func (p *Pool) openWriter(ctx context.Context) (*sql.Conn, error) {
	db, err := p.writerDB()
	if err != nil {
		return nil, &domain.ConnectionError{Op: "open writer", Err: err}
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, &domain.ConnectionError{Op: "open writer", Err: err}
	}

	if err := p.applyPragmas(ctx, conn); err != nil {
		conn.Close() //nolint:errcheck
		return nil, &domain.ConnectionError{Op: "configure writer", Err: err}
	}
	return conn, nil
}

func (p *Pool) applyPragmas(ctx context.Context, conn *sql.Conn) error {
	timeout := fmt.Sprintf("PRAGMA busy_timeout = %d", p.busyTimeout.Milliseconds())
	for _, stmt := range append([]string{timeout}, writerPragmas...) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying %q: %w", stmt, err)
		}
	}
	return nil
}

// writerDB returns the handle writer connections are drawn from.
// It never keeps idle connections, so every Conn is a new physical connection.
func (p *Pool) writerDB() (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, domain.ErrClosed
	}
	if p.writer != nil {
		return p.writer, nil
	}

	dsn, err := p.paths.ConnectionString("_txlock=immediate")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	p.writer = db
	return db, nil
}

// WithWriter runs fn on a writer connection and releases it afterwards.
func (p *Pool) WithWriter(ctx context.Context, fn func(conn *sql.Conn) error) error {
	w, err := p.AcquireWriter(ctx)
	if err != nil {
		return err
	}
	defer w.Release()

	return fn(w.Conn)
}

// WithTx runs fn inside a transaction on a writer connection.
// The transaction commits if fn returns nil and rolls back otherwise.
func (p *Pool) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return p.WithWriter(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}

// SharedReader returns the read-only handle, opening it on first use and
// reopening it if it stopped answering. Callers must not hold one query's
// rows open while issuing another on the same handle.
func (p *Pool) SharedReader(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, &domain.ConnectionError{Op: "open reader", Err: domain.ErrClosed}
	}

	if p.reader != nil {
		if err := p.reader.PingContext(ctx); err == nil {
			return p.reader, nil
		}
		logger.Debug("Reopening shared reader")
		p.reader.Close() //nolint:errcheck
		p.reader = nil
	}

	dsn, err := p.paths.ConnectionString(
		pragma("busy_timeout", p.busyTimeout.Milliseconds()),
		pragma("query_only", 1),
	)
	if err != nil {
		return nil, &domain.ConnectionError{Op: "open reader", Err: err}
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &domain.ConnectionError{Op: "open reader", Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, &domain.ConnectionError{Op: "open reader", Err: err}
	}

	p.reader = db
	return db, nil
}

// closeReader drops the shared reader so the next read reopens the file.
func (p *Pool) closeReader() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reader == nil {
		return nil
	}
	err := p.reader.Close()
	p.reader = nil
	return err
}

// Exclusive holds the writer permit with the shared reader closed while fn
// runs. No database connection is open during fn.
func (p *Pool) Exclusive(ctx context.Context, fn func() error) error {
	if err := p.permit.Acquire(ctx, 1); err != nil {
		return &domain.ConnectionError{
			Op:  "acquire writer",
			Err: fmt.Errorf("%w: %v", domain.ErrPermitUnavailable, err),
		}
	}
	defer p.permit.Release(1)

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return &domain.ConnectionError{Op: "acquire writer", Err: domain.ErrClosed}
	}

	if err := p.closeReader(); err != nil {
		logger.Warn("closing shared reader: %v", err)
	}
	return fn()
}

// Stats reports permit and reader usage.
func (p *Pool) Stats() driven.PoolStats {
	p.mu.Lock()
	readers := 0
	if p.reader != nil {
		readers = 1
	}
	p.mu.Unlock()

	inUse := int(p.inUse.Load())
	return driven.PoolStats{
		Available: 1 - inUse,
		InUse:     inUse,
		Total:     inUse + readers,
		Max:       1 + readers,
	}
}

// Close waits for the active writer to finish, then closes every handle.
// Later acquisitions fail with domain.ErrClosed.
func (p *Pool) Close() error {
	if err := p.permit.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer p.permit.Release(1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.reader != nil {
		errs = append(errs, p.reader.Close())
		p.reader = nil
	}
	if p.writer != nil {
		errs = append(errs, p.writer.Close())
		p.writer = nil
	}
	return errors.Join(errs...)
}
