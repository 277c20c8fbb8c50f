package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// StartupService brings the database to a usable state.
type StartupService interface {
	// Start initialises the schema and then protects stored secrets.
	// Only schema failures are returned; secret failures are reported.
	Start(ctx context.Context) (domain.StartupReport, error)
}

// StorageStats is the diagnostics snapshot shown by the CLI.
type StorageStats struct {
	Path          string
	Available     int
	InUse         int
	Total         int
	Max           int
	Conversations int
	Cache         domain.CacheStats
}

// MaintenanceService exposes cache and file maintenance operations.
type MaintenanceService interface {
	// CleanupCache runs one eviction pass with the given limits.
	CleanupCache(ctx context.Context, limits domain.CacheLimits) (domain.CleanupReport, error)

	// ClearCache removes every cached audio entry.
	ClearCache(ctx context.Context) (int64, error)

	// Backup copies the database to path.
	Backup(ctx context.Context, path string) error

	// Restore replaces the database with the file at path.
	Restore(ctx context.Context, path string) error

	// Stats gathers storage diagnostics.
	Stats(ctx context.Context) (*StorageStats, error)
}

// CacheMaintainer runs audio cache cleanup in the background.
type CacheMaintainer interface {
	// Start runs a pass immediately and then on every cleanup interval.
	// Blocks until Stop is called or ctx is cancelled.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for an in-flight pass.
	Stop() error

	// Reload re-reads the interval and runs a pass.
	Reload()

	// RunOnce performs a single pass with the current limits.
	RunOnce(ctx context.Context) domain.MaintenanceRun

	// LastRun returns the most recent pass, or nil.
	LastRun() *domain.MaintenanceRun
}
