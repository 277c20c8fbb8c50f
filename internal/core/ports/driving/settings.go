package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// SettingsService manages persisted preferences and runtime configuration.
type SettingsService interface {
	// Get retrieves the persisted application settings.
	Get(ctx context.Context) (*domain.AppSettings, error)

	// Save persists application settings.
	Save(ctx context.Context, settings *domain.AppSettings) error

	// Runtime returns the runtime configuration with defaults applied.
	Runtime() domain.RuntimeConfig

	// SetCacheLimits persists new audio cache thresholds.
	SetCacheLimits(limits domain.CacheLimits) error

	// Watch calls onChange whenever the runtime configuration changes.
	// Blocks until ctx is cancelled.
	Watch(ctx context.Context, onChange func()) error
}
