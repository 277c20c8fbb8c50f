package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// Ensure MaintenanceService implements the interface.
var _ driving.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService groups the operator-facing storage operations.
type MaintenanceService struct {
	db            driven.Database
	cache         driven.AudioCache
	conversations driven.ConversationStore
}

// NewMaintenanceService creates a new maintenance service.
func NewMaintenanceService(
	db driven.Database,
	cache driven.AudioCache,
	conversations driven.ConversationStore,
) *MaintenanceService {
	return &MaintenanceService{
		db:            db,
		cache:         cache,
		conversations: conversations,
	}
}

// CleanupCache runs one eviction pass.
func (s *MaintenanceService) CleanupCache(ctx context.Context, limits domain.CacheLimits) (domain.CleanupReport, error) {
	report, err := s.cache.Cleanup(ctx, limits)
	if err != nil {
		return report, fmt.Errorf("cleanup cache: %w", err)
	}
	return report, nil
}

// ClearCache removes every cached audio entry.
func (s *MaintenanceService) ClearCache(ctx context.Context) (int64, error) {
	n, err := s.cache.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// Backup copies the database to path.
func (s *MaintenanceService) Backup(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: backup path is required", domain.ErrInvalidInput)
	}
	return s.db.Backup(ctx, path)
}

// Restore replaces the database with the file at path.
func (s *MaintenanceService) Restore(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: restore path is required", domain.ErrInvalidInput)
	}
	return s.db.Restore(ctx, path)
}

// Stats gathers storage diagnostics.
func (s *MaintenanceService) Stats(ctx context.Context) (*driving.StorageStats, error) {
	pool := s.db.PoolStats()

	convs, err := s.conversations.List(ctx, domain.OrderByUpdated)
	if err != nil {
		return nil, fmt.Errorf("count conversations: %w", err)
	}

	cache, err := s.cache.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}

	return &driving.StorageStats{
		Path:          s.db.Path(),
		Available:     pool.Available,
		InUse:         pool.InUse,
		Total:         pool.Total,
		Max:           pool.Max,
		Conversations: len(convs),
		Cache:         cache,
	}, nil
}
