package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/logger"
)

// secretTables hold an ApiKey column that must never stay in plaintext.
var secretTables = []string{"ApiConfigurations", "TtsConfigurations"}

type storedSecret struct {
	id    int64
	value string
}

// MigrateSecrets protects every stored API key that is still plaintext.
// Rows are read in full before any is rewritten. A row that fails to
// protect or update is logged, counted and left as it was; the returned
// error only reports a connection or read failure.
func (s *Store) MigrateSecrets(ctx context.Context) (domain.SecretReport, error) {
	var report domain.SecretReport

	err := s.pool.WithWriter(ctx, func(conn *sql.Conn) error {
		for _, table := range secretTables {
			secrets, err := readSecrets(ctx, conn, table)
			if err != nil {
				return fmt.Errorf("reading %s secrets: %w", table, err)
			}

			for _, secret := range secrets {
				report.Scanned++
				if secret.value == "" || s.protector.IsProtected(secret.value) {
					continue
				}

				protected, err := s.protector.Protect(secret.value)
				if err != nil {
					logger.Warn("protecting %s key %d: %v", table, secret.id, err)
					report.Failed++
					continue
				}

				stmt := fmt.Sprintf("UPDATE %s SET ApiKey = ? WHERE Id = ?", table)
				if _, err := conn.ExecContext(ctx, stmt, protected, secret.id); err != nil {
					logger.Warn("updating %s key %d: %v", table, secret.id, err)
					report.Failed++
					continue
				}
				report.Protected++
			}
		}
		return nil
	})
	if err != nil {
		return report, classify("migrating secrets", err)
	}

	if report.Protected > 0 || report.Failed > 0 {
		logger.Info("Protected %d stored keys (%d failed)", report.Protected, report.Failed)
	}
	return report, nil
}

func readSecrets(ctx context.Context, conn *sql.Conn, table string) ([]storedSecret, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("SELECT Id, COALESCE(ApiKey, '') FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var secrets []storedSecret //nolint:prealloc
	for rows.Next() {
		var secret storedSecret
		if err := rows.Scan(&secret.id, &secret.value); err != nil {
			return nil, err
		}
		secrets = append(secrets, secret)
	}
	return secrets, rows.Err()
}
