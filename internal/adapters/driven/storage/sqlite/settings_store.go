package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// settingsStore implements driven.SettingsStore.
type settingsStore struct {
	store *Store
}

// Verify interface compliance.
var _ driven.SettingsStore = (*settingsStore)(nil)

// Get returns the settings row with the lowest ID.
func (s *settingsStore) Get(ctx context.Context) (*domain.AppSettings, error) {
	var (
		settings  domain.AppSettings
		updatedAt string
	)
	err := s.store.read(ctx, "getting settings", func(db *sql.DB) error {
		err := db.QueryRowContext(ctx, `
			SELECT Id, Topmost, ShowInTaskbar, AnimationsEnabled, DarkTheme, UpdatedAt
			FROM AppSettings ORDER BY Id LIMIT 1
		`).Scan(&settings.ID, &settings.Topmost, &settings.ShowInTaskbar,
			&settings.AnimationsEnabled, &settings.DarkTheme, &updatedAt)
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}

	if settings.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return &settings, nil
}

// Save overwrites the settings row. A zero ID targets the seeded row.
func (s *settingsStore) Save(ctx context.Context, settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings is nil", domain.ErrInvalidInput)
	}
	now := s.store.clock()

	var id int64
	err := s.store.write(ctx, "saving settings", func(conn *sql.Conn) error {
		id = settings.ID
		if id == 0 {
			if err := conn.QueryRowContext(ctx, `SELECT Id FROM AppSettings ORDER BY Id LIMIT 1`).Scan(&id); err != nil {
				return notFound(err)
			}
		}

		result, err := conn.ExecContext(ctx, `
			UPDATE AppSettings
			SET Topmost = ?, ShowInTaskbar = ?, AnimationsEnabled = ?, DarkTheme = ?, UpdatedAt = ?
			WHERE Id = ?
		`, settings.Topmost, settings.ShowInTaskbar, settings.AnimationsEnabled, settings.DarkTheme,
			formatTime(now), id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
	if err != nil {
		return err
	}

	settings.ID = id
	settings.UpdatedAt = now
	return nil
}
