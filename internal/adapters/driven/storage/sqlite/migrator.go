package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/logger"
)

// ColumnMigration describes a column added to a table after its first release.
type ColumnMigration struct {
	Table      string
	Column     string
	Definition string
}

// String returns the Table.Column form used in reports.
func (m ColumnMigration) String() string {
	return m.Table + "." + m.Column
}

// columnMigrations lists every column added after its table first shipped.
// Append only: entries are never removed, renamed or retyped, because a
// database from any earlier build must be able to catch up.
var columnMigrations = []ColumnMigration{
	{"AppSettings", "AnimationsEnabled", "INTEGER NOT NULL DEFAULT 1"},
	{"AppSettings", "DarkTheme", "INTEGER NOT NULL DEFAULT 0"},

	{"ApiConfigurations", "StreamingEnabled", "INTEGER NOT NULL DEFAULT 1"},
	{"ApiConfigurations", "MultimodalEnabled", "INTEGER NOT NULL DEFAULT 0"},
	{"ApiConfigurations", "ChannelType", "TEXT NOT NULL DEFAULT 'OpenAI'"},
	{"ApiConfigurations", "SupportsThinking", "INTEGER NOT NULL DEFAULT 0"},

	{"TtsConfigurations", "StreamingEnabled", "INTEGER NOT NULL DEFAULT 0"},
	{"TtsConfigurations", "IsActive", "INTEGER NOT NULL DEFAULT 0"},
	{"TtsConfigurations", "ChannelType", "TEXT"},

	{"Messages", "ReasoningContent", "TEXT"},
	{"Messages", "ImageData", "BLOB"},
	{"Messages", "ImageContentType", "TEXT"},

	{"TtsAudio", "LastAccessedAt", "TEXT"},
	{"TtsAudio", "TtsConfigJson", "TEXT NOT NULL DEFAULT '{}'"},
}

// migrateColumns adds every missing column in migrations.
// A failure affects only its own column: it is logged, recorded and skipped.
func migrateColumns(ctx context.Context, conn *sql.Conn, migrations []ColumnMigration) domain.MigrationReport {
	var report domain.MigrationReport
	existing := make(map[string]map[string]bool)

	for _, m := range migrations {
		columns, ok := existing[m.Table]
		if !ok {
			var err error
			columns, err = tableColumns(ctx, conn, m.Table)
			if err != nil {
				logger.Warn("reading columns of %s: %v", m.Table, err)
				report.Failed = append(report.Failed, domain.ColumnFailure{Table: m.Table, Column: m.Column, Err: err})
				continue
			}
			existing[m.Table] = columns
		}

		if columns[strings.ToLower(m.Column)] {
			continue
		}

		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Definition)
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			logger.Warn("adding column %s: %v", m, err)
			report.Failed = append(report.Failed, domain.ColumnFailure{Table: m.Table, Column: m.Column, Err: err})
			continue
		}

		columns[strings.ToLower(m.Column)] = true
		report.Added = append(report.Added, m.String())
		logger.Info("Added column %s", m)
	}

	return report
}

// tableColumns returns the lower-cased column names of table.
// Column names in SQLite are case-insensitive.
func tableColumns(ctx context.Context, conn *sql.Conn, table string) (map[string]bool, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		columns[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return columns, nil
}
