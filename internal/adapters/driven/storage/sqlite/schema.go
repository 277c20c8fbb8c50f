package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/logger"
)

// tableStatements create every table in its current shape.
// Existing tables are left alone; missing columns are the migrator's job.
var tableStatements = []string{
	`CREATE TABLE IF NOT EXISTS AppSettings (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		Topmost INTEGER NOT NULL DEFAULT 0,
		ShowInTaskbar INTEGER NOT NULL DEFAULT 1,
		AnimationsEnabled INTEGER NOT NULL DEFAULT 1,
		DarkTheme INTEGER NOT NULL DEFAULT 0,
		UpdatedAt TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ApiConfigurations (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		Name TEXT NOT NULL,
		ApiUrl TEXT NOT NULL,
		ApiKey TEXT NOT NULL DEFAULT '',
		ModelName TEXT NOT NULL,
		StreamingEnabled INTEGER NOT NULL DEFAULT 1,
		MultimodalEnabled INTEGER NOT NULL DEFAULT 0,
		ChannelType TEXT NOT NULL DEFAULT 'OpenAI',
		SupportsThinking INTEGER NOT NULL DEFAULT 0,
		CreatedAt TEXT NOT NULL,
		UpdatedAt TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS TtsConfigurations (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		Name TEXT NOT NULL,
		ApiUrl TEXT NOT NULL,
		ApiKey TEXT NOT NULL DEFAULT '',
		Model TEXT NOT NULL,
		Voice TEXT NOT NULL,
		Speed REAL NOT NULL DEFAULT 1.0,
		StreamingEnabled INTEGER NOT NULL DEFAULT 0,
		IsActive INTEGER NOT NULL DEFAULT 0,
		ChannelType TEXT,
		CreatedAt TEXT NOT NULL,
		UpdatedAt TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Conversations (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		Title TEXT NOT NULL,
		CreatedAt TEXT NOT NULL,
		UpdatedAt TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Messages (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		ConversationId INTEGER NOT NULL,
		Content TEXT NOT NULL,
		IsUser INTEGER NOT NULL,
		ReasoningContent TEXT,
		CreatedAt TEXT NOT NULL,
		ImageData BLOB,
		ImageContentType TEXT,
		FOREIGN KEY (ConversationId) REFERENCES Conversations(Id)
	)`,
	`CREATE TABLE IF NOT EXISTS TtsAudio (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		TextHash TEXT NOT NULL UNIQUE,
		AudioData BLOB NOT NULL,
		TtsConfigJson TEXT NOT NULL DEFAULT '{}',
		CreatedAt TEXT NOT NULL,
		LastAccessedAt TEXT
	)`,
}

// indexStatements only reference columns present since each table's first version.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS IX_Messages_ConversationId ON Messages(ConversationId)`,
	`CREATE INDEX IF NOT EXISTS IX_Messages_CreatedAt ON Messages(CreatedAt)`,
	`CREATE INDEX IF NOT EXISTS IX_Conversations_UpdatedAt ON Conversations(UpdatedAt)`,
	`CREATE INDEX IF NOT EXISTS IX_TtsAudio_TextHash ON TtsAudio(TextHash)`,
}

// lateIndexStatements depend on migrated columns. Failures are logged only.
var lateIndexStatements = []string{
	`CREATE INDEX IF NOT EXISTS IX_TtsAudio_LastAccessedAt ON TtsAudio(LastAccessedAt)`,
}

// Initialize brings the schema up to date and seeds defaults.
// Table or index creation failures are fatal; column migration failures
// are logged and returned in the report.
func (s *Store) Initialize(ctx context.Context) (domain.MigrationReport, error) {
	var report domain.MigrationReport

	err := s.pool.WithWriter(ctx, func(conn *sql.Conn) error {
		for _, stmt := range tableStatements {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("creating table: %w", err)
			}
		}
		for _, stmt := range indexStatements {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("creating index: %w", err)
			}
		}

		report = migrateColumns(ctx, conn, columnMigrations)

		for _, stmt := range lateIndexStatements {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				logger.Warn("creating index: %v", err)
			}
		}

		return s.seedDefaults(ctx, conn)
	})
	if err != nil {
		return report, fmt.Errorf("initializing schema: %w", err)
	}

	logger.Debug("Schema ready at %s (%d columns added, %d failed)",
		s.path, len(report.Added), len(report.Failed))
	return report, nil
}

// seedDefaults inserts the settings row when the table is empty.
func (s *Store) seedDefaults(ctx context.Context, conn *sql.Conn) error {
	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM AppSettings`).Scan(&count); err != nil {
		return fmt.Errorf("counting settings: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := domain.DefaultAppSettings()
	_, err := conn.ExecContext(ctx, `
		INSERT INTO AppSettings (Topmost, ShowInTaskbar, AnimationsEnabled, DarkTheme, UpdatedAt)
		VALUES (?, ?, ?, ?, ?)
	`, defaults.Topmost, defaults.ShowInTaskbar, defaults.AnimationsEnabled, defaults.DarkTheme,
		formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	logger.Debug("Seeded default settings")
	return nil
}
