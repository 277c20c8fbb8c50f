package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure StartupService implements the interface.
var _ driving.StartupService = (*StartupService)(nil)

// StartupService runs the one-time database preparation sequence:
// schema first, then secret protection.
type StartupService struct {
	db driven.Database
}

// NewStartupService creates a new startup service.
func NewStartupService(db driven.Database) *StartupService {
	return &StartupService{db: db}
}

// Start initialises the schema and protects stored secrets.
// A schema failure aborts startup. A secret migration failure is logged and
// reported in the result, since every stored key remains usable either way.
func (s *StartupService) Start(ctx context.Context) (domain.StartupReport, error) {
	var report domain.StartupReport

	logger.Section("Database")
	logger.Info("Using %s", s.db.Path())

	migration, err := s.db.Initialize(ctx)
	report.Migration = migration
	if err != nil {
		return report, fmt.Errorf("initialize database: %w", err)
	}
	for _, failure := range migration.Failed {
		logger.Warn("column %s.%s was not added: %v", failure.Table, failure.Column, failure.Err)
	}

	secrets, err := s.db.MigrateSecrets(ctx)
	report.Secrets = secrets
	if err != nil {
		logger.Warn("protecting stored secrets: %v", err)
		report.SecretsErr = err
	}

	return report, nil
}
