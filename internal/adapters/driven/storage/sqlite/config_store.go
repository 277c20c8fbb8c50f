package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// execer is satisfied by *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// apiConfigStore implements driven.APIConfigStore.
type apiConfigStore struct {
	store *Store
}

// Verify interface compliance.
var _ driven.APIConfigStore = (*apiConfigStore)(nil)

const apiConfigColumns = `Id, Name, ApiUrl, ApiKey, ModelName, StreamingEnabled, MultimodalEnabled,
	ChannelType, SupportsThinking, CreatedAt, UpdatedAt`

// Save inserts or updates a configuration.
func (s *apiConfigStore) Save(ctx context.Context, cfg *domain.APIConfiguration) (int64, error) {
	if cfg == nil {
		return 0, fmt.Errorf("%w: configuration is nil", domain.ErrInvalidInput)
	}
	channel := cfg.ChannelType
	if channel == "" {
		channel = domain.ChannelOpenAI
	}
	if !channel.IsValid() {
		return 0, fmt.Errorf("%w: unknown channel type %q", domain.ErrInvalidInput, channel)
	}

	key, err := s.store.protect(cfg.APIKey)
	if err != nil {
		return 0, err
	}

	now := s.store.clock()
	createdAt := cfg.CreatedAt
	if cfg.ID == 0 || createdAt.IsZero() {
		createdAt = now
	}

	id := cfg.ID
	err = s.store.write(ctx, "saving api configuration", func(conn *sql.Conn) error {
		if id == 0 {
			result, err := conn.ExecContext(ctx, `
				INSERT INTO ApiConfigurations (Name, ApiUrl, ApiKey, ModelName, StreamingEnabled,
					MultimodalEnabled, ChannelType, SupportsThinking, CreatedAt, UpdatedAt)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, cfg.Name, cfg.APIURL, key, cfg.ModelName, cfg.StreamingEnabled,
				cfg.MultimodalEnabled, string(channel), cfg.SupportsThinking,
				formatTime(createdAt), formatTime(now))
			if err != nil {
				return err
			}
			id, err = result.LastInsertId()
			return err
		}

		result, err := conn.ExecContext(ctx, `
			UPDATE ApiConfigurations
			SET Name = ?, ApiUrl = ?, ApiKey = ?, ModelName = ?, StreamingEnabled = ?,
				MultimodalEnabled = ?, ChannelType = ?, SupportsThinking = ?, UpdatedAt = ?
			WHERE Id = ?
		`, cfg.Name, cfg.APIURL, key, cfg.ModelName, cfg.StreamingEnabled,
			cfg.MultimodalEnabled, string(channel), cfg.SupportsThinking, formatTime(now), id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
	if err != nil {
		return 0, err
	}

	if cfg.ID == 0 {
		cfg.CreatedAt = createdAt
	}
	cfg.ID = id
	cfg.APIKey = key
	cfg.ChannelType = channel
	cfg.UpdatedAt = now
	return id, nil
}

// Get retrieves a configuration by ID.
func (s *apiConfigStore) Get(ctx context.Context, id int64) (*domain.APIConfiguration, error) {
	var cfg *domain.APIConfiguration
	err := s.store.read(ctx, "getting api configuration", func(db *sql.DB) error {
		row := db.QueryRowContext(ctx,
			`SELECT `+apiConfigColumns+` FROM ApiConfigurations WHERE Id = ?`, id)
		var err error
		cfg, err = scanAPIConfig(row)
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// List returns all configurations in creation order.
func (s *apiConfigStore) List(ctx context.Context) ([]domain.APIConfiguration, error) {
	var configs []domain.APIConfiguration //nolint:prealloc
	err := s.store.read(ctx, "listing api configurations", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT `+apiConfigColumns+` FROM ApiConfigurations ORDER BY CreatedAt, Id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			cfg, err := scanAPIConfig(rows)
			if err != nil {
				return err
			}
			configs = append(configs, *cfg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// Delete removes a configuration.
func (s *apiConfigStore) Delete(ctx context.Context, id int64) error {
	return s.store.write(ctx, "deleting api configuration", func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM ApiConfigurations WHERE Id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

func scanAPIConfig(row rowScanner) (*domain.APIConfiguration, error) {
	var (
		cfg                  domain.APIConfiguration
		channel              string
		createdAt, updatedAt string
	)
	err := row.Scan(&cfg.ID, &cfg.Name, &cfg.APIURL, &cfg.APIKey, &cfg.ModelName,
		&cfg.StreamingEnabled, &cfg.MultimodalEnabled, &channel, &cfg.SupportsThinking,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	cfg.ChannelType = domain.ChannelType(channel)
	if cfg.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ttsConfigStore implements driven.TTSConfigStore.
// At most one row is active: activating a row clears every other row in
// the same transaction.
type ttsConfigStore struct {
	store *Store
}

// Verify interface compliance.
var _ driven.TTSConfigStore = (*ttsConfigStore)(nil)

const ttsConfigColumns = `Id, Name, ApiUrl, ApiKey, Model, Voice, Speed, StreamingEnabled,
	IsActive, ChannelType, CreatedAt, UpdatedAt`

// Save inserts or updates a configuration.
func (s *ttsConfigStore) Save(ctx context.Context, cfg *domain.TTSConfiguration) (int64, error) {
	if cfg == nil {
		return 0, fmt.Errorf("%w: configuration is nil", domain.ErrInvalidInput)
	}
	if cfg.ChannelType != "" && !cfg.ChannelType.IsValid() {
		return 0, fmt.Errorf("%w: unknown channel type %q", domain.ErrInvalidInput, cfg.ChannelType)
	}

	key, err := s.store.protect(cfg.APIKey)
	if err != nil {
		return 0, err
	}

	now := s.store.clock()
	createdAt := cfg.CreatedAt
	if cfg.ID == 0 || createdAt.IsZero() {
		createdAt = now
	}

	var channel any
	if cfg.ChannelType != "" {
		channel = string(cfg.ChannelType)
	}

	id := cfg.ID
	err = s.store.writeTx(ctx, "saving tts configuration", func(tx *sql.Tx) error {
		if id == 0 {
			result, err := tx.ExecContext(ctx, `
				INSERT INTO TtsConfigurations (Name, ApiUrl, ApiKey, Model, Voice, Speed,
					StreamingEnabled, IsActive, ChannelType, CreatedAt, UpdatedAt)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, cfg.Name, cfg.APIURL, key, cfg.Model, cfg.Voice, cfg.Speed,
				cfg.StreamingEnabled, cfg.IsActive, channel, formatTime(createdAt), formatTime(now))
			if err != nil {
				return err
			}
			if id, err = result.LastInsertId(); err != nil {
				return err
			}
		} else {
			result, err := tx.ExecContext(ctx, `
				UPDATE TtsConfigurations
				SET Name = ?, ApiUrl = ?, ApiKey = ?, Model = ?, Voice = ?, Speed = ?,
					StreamingEnabled = ?, IsActive = ?, ChannelType = ?, UpdatedAt = ?
				WHERE Id = ?
			`, cfg.Name, cfg.APIURL, key, cfg.Model, cfg.Voice, cfg.Speed,
				cfg.StreamingEnabled, cfg.IsActive, channel, formatTime(now), id)
			if err != nil {
				return err
			}
			if err := requireAffected(result); err != nil {
				return err
			}
		}

		if cfg.IsActive {
			return deactivateOthers(ctx, tx, id, now)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if cfg.ID == 0 {
		cfg.CreatedAt = createdAt
	}
	cfg.ID = id
	cfg.APIKey = key
	cfg.UpdatedAt = now
	return id, nil
}

// Get retrieves a configuration by ID.
func (s *ttsConfigStore) Get(ctx context.Context, id int64) (*domain.TTSConfiguration, error) {
	return s.getOne(ctx, "getting tts configuration",
		`SELECT `+ttsConfigColumns+` FROM TtsConfigurations WHERE Id = ?`, id)
}

// GetActive returns the active configuration.
func (s *ttsConfigStore) GetActive(ctx context.Context) (*domain.TTSConfiguration, error) {
	return s.getOne(ctx, "getting active tts configuration",
		`SELECT `+ttsConfigColumns+` FROM TtsConfigurations WHERE IsActive = 1 ORDER BY UpdatedAt DESC, Id DESC LIMIT 1`)
}

func (s *ttsConfigStore) getOne(ctx context.Context, op, query string, args ...any) (*domain.TTSConfiguration, error) {
	var cfg *domain.TTSConfiguration
	err := s.store.read(ctx, op, func(db *sql.DB) error {
		var err error
		cfg, err = scanTTSConfig(db.QueryRowContext(ctx, query, args...))
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// List returns all configurations in creation order.
func (s *ttsConfigStore) List(ctx context.Context) ([]domain.TTSConfiguration, error) {
	var configs []domain.TTSConfiguration //nolint:prealloc
	err := s.store.read(ctx, "listing tts configurations", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT `+ttsConfigColumns+` FROM TtsConfigurations ORDER BY CreatedAt, Id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			cfg, err := scanTTSConfig(rows)
			if err != nil {
				return err
			}
			configs = append(configs, *cfg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// Delete removes a configuration.
func (s *ttsConfigStore) Delete(ctx context.Context, id int64) error {
	return s.store.write(ctx, "deleting tts configuration", func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM TtsConfigurations WHERE Id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// SetActive makes id the only active configuration.
func (s *ttsConfigStore) SetActive(ctx context.Context, id int64) error {
	now := s.store.clock()
	return s.store.writeTx(ctx, "activating tts configuration", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE TtsConfigurations SET IsActive = 1, UpdatedAt = ? WHERE Id = ?`, formatTime(now), id)
		if err != nil {
			return err
		}
		if err := requireAffected(result); err != nil {
			return err
		}
		return deactivateOthers(ctx, tx, id, now)
	})
}

func deactivateOthers(ctx context.Context, db execer, id int64, now time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE TtsConfigurations SET IsActive = 0, UpdatedAt = ? WHERE IsActive = 1 AND Id <> ?`,
		formatTime(now), id)
	return err
}

func scanTTSConfig(row rowScanner) (*domain.TTSConfiguration, error) {
	var (
		cfg                  domain.TTSConfiguration
		channel              sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&cfg.ID, &cfg.Name, &cfg.APIURL, &cfg.APIKey, &cfg.Model, &cfg.Voice,
		&cfg.Speed, &cfg.StreamingEnabled, &cfg.IsActive, &channel, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	cfg.ChannelType = domain.ChannelType(channel.String)
	if cfg.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if cfg.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &cfg, nil
}
