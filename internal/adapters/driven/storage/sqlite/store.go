package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// Options configures a Store.
type Options struct {
	// Paths resolves the database location. Required.
	Paths *PathProvider

	// Protector protects API keys before they are written. Required.
	Protector driven.SecretProtector

	// BusyTimeout bounds how long a statement waits on a lock.
	// Zero selects DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// Store is a unified SQLite-based storage that provides access to
// all persistence interfaces through wrapper types.
type Store struct {
	pool      *Pool
	path      string
	protector driven.SecretProtector
	now       func() time.Time
}

// NewStore creates a store for the database resolved by opts.Paths.
// No connection is opened until the first operation; call Initialize
// before anything else.
func NewStore(opts Options) (*Store, error) {
	if opts.Paths == nil {
		return nil, fmt.Errorf("%w: path provider is required", domain.ErrInvalidInput)
	}
	if opts.Protector == nil {
		return nil, fmt.Errorf("%w: secret protector is required", domain.ErrInvalidInput)
	}

	path, err := opts.Paths.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("resolving database path: %w", err)
	}

	return &Store{
		pool:      NewPool(opts.Paths, opts.BusyTimeout),
		path:      path,
		protector: opts.Protector,
		now:       time.Now,
	}, nil
}

// Close closes every connection. It waits for an active writer to finish.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// PoolStats reports connection usage.
func (s *Store) PoolStats() driven.PoolStats {
	return s.pool.Stats()
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *Pool {
	return s.pool
}

// Settings returns a SettingsStore backed by this store.
func (s *Store) Settings() driven.SettingsStore {
	return &settingsStore{store: s}
}

// APIConfigs returns an APIConfigStore backed by this store.
func (s *Store) APIConfigs() driven.APIConfigStore {
	return &apiConfigStore{store: s}
}

// TTSConfigs returns a TTSConfigStore backed by this store.
func (s *Store) TTSConfigs() driven.TTSConfigStore {
	return &ttsConfigStore{store: s}
}

// Conversations returns a ConversationStore backed by this store.
func (s *Store) Conversations() driven.ConversationStore {
	return &conversationStore{store: s}
}

// AudioCache returns an AudioCache backed by this store.
func (s *Store) AudioCache() driven.AudioCache {
	return &audioCache{store: s}
}

// clock returns the current time normalised for storage.
func (s *Store) clock() time.Time {
	return s.now().UTC().Round(0)
}

// read runs fn against the shared reader.
func (s *Store) read(ctx context.Context, op string, fn func(db *sql.DB) error) error {
	db, err := s.pool.SharedReader(ctx)
	if err != nil {
		return err
	}
	return classify(op, fn(db))
}

// write runs fn on the writer connection.
func (s *Store) write(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	return classify(op, s.pool.WithWriter(ctx, fn))
}

// writeTx runs fn in a writer transaction.
func (s *Store) writeTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return classify(op, s.pool.WithTx(ctx, fn))
}

// protect returns key in protected form. Empty and already protected keys
// are stored as given.
func (s *Store) protect(key string) (string, error) {
	if key == "" || s.protector.IsProtected(key) {
		return key, nil
	}
	protected, err := s.protector.Protect(key)
	if err != nil {
		return "", fmt.Errorf("protecting api key: %w", err)
	}
	return protected, nil
}

// notFound maps sql.ErrNoRows to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// requireAffected returns domain.ErrNotFound when a statement touched no rows.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Verify interface compliance.
var _ driven.Database = (*Store)(nil)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
