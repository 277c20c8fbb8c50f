package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/logger"
)

// sqliteHeader opens every SQLite 3 database file.
const sqliteHeader = "SQLite format 3\x00"

// Backup copies the database to path.
// The WAL is checkpointed into the main file first, while the writer permit
// is held, so the copy is complete and no write can interleave.
func (s *Store) Backup(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: backup path is empty", domain.ErrInvalidInput)
	}

	err := s.pool.WithWriter(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
			return fmt.Errorf("checkpointing wal: %w", err)
		}
		return copyFile(s.path, path)
	})
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}

	logger.Info("Backed up %s to %s", s.path, path)
	return nil
}

// Restore replaces the database with the file at path.
// It waits for the writer permit and closes the shared reader, so no
// connection is open while the file is swapped. Stale WAL and shared-memory
// files are removed with it.
//
// Callers must quiesce readers as well as writers. A handle obtained from
// the shared reader before Restore fails with "sql: database is closed".
func (s *Store) Restore(ctx context.Context, path string) error {
	if err := checkDatabaseFile(path); err != nil {
		return fmt.Errorf("restoring database: %w", err)
	}

	err := s.pool.Exclusive(ctx, func() error {
		if err := copyFile(path, s.path); err != nil {
			return err
		}
		for _, suffix := range []string{"-wal", "-shm"} {
			if err := os.Remove(s.path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("removing %s file: %w", suffix, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("restoring database: %w", err)
	}

	logger.Info("Restored %s from %s", s.path, path)
	return nil
}

// checkDatabaseFile rejects paths that are not SQLite databases.
func checkDatabaseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil || string(header) != sqliteHeader {
		return fmt.Errorf("%w: %s is not a database file", domain.ErrInvalidInput, path)
	}
	return nil
}

// copyFile copies src to dst through a temporary file in dst's directory,
// renamed into place once fully written.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("syncing %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("replacing %s: %w", dst, err)
	}
	return nil
}
