package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for runtime configuration.
const (
	KeyDataDir         = "storage.data_dir"
	KeyEnvironment     = "storage.environment"
	KeyBusyTimeoutMS   = "storage.busy_timeout_ms"
	KeyCacheMaxAgeDays = "cache.max_age_days"
	KeyCacheMaxCount   = "cache.max_count"
	KeyCacheMaxSizeMB  = "cache.max_size_mb"
	KeyCleanupInterval = "cache.cleanup_interval_minutes"
	KeyVerbose         = "log.verbose"
)

// SettingsService combines the persisted UI preferences with the runtime
// configuration read from the config file.
type SettingsService struct {
	configStore driven.ConfigStore
	store       driven.SettingsStore
}

// NewSettingsService creates a new settings service.
// store may be nil when only runtime configuration is needed.
func NewSettingsService(configStore driven.ConfigStore, store driven.SettingsStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		store:       store,
	}
}

// Get retrieves the persisted application settings.
func (s *SettingsService) Get(ctx context.Context) (*domain.AppSettings, error) {
	if s.store == nil {
		return nil, fmt.Errorf("settings store not configured")
	}
	return s.store.Get(ctx)
}

// Save persists application settings.
func (s *SettingsService) Save(ctx context.Context, settings *domain.AppSettings) error {
	if s.store == nil {
		return fmt.Errorf("settings store not configured")
	}
	if err := s.store.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Runtime returns the runtime configuration. Missing or invalid values
// fall back to domain.DefaultRuntimeConfig.
func (s *SettingsService) Runtime() domain.RuntimeConfig {
	defaults := domain.DefaultRuntimeConfig()

	return domain.RuntimeConfig{
		DataDir:     s.configStore.GetString(KeyDataDir),
		Environment: s.getEnvironment(defaults.Environment),
		BusyTimeout: s.getMillis(KeyBusyTimeoutMS, defaults.BusyTimeout),
		Cache: domain.CacheLimits{
			MaxAgeDays: s.getInt(KeyCacheMaxAgeDays, defaults.Cache.MaxAgeDays),
			MaxCount:   s.getInt(KeyCacheMaxCount, defaults.Cache.MaxCount),
			MaxSizeMB:  s.getInt(KeyCacheMaxSizeMB, defaults.Cache.MaxSizeMB),
		},
		CleanupInterval: s.getMinutes(KeyCleanupInterval, defaults.CleanupInterval),
		Verbose:         s.getBool(KeyVerbose, defaults.Verbose),
	}
}

// SetCacheLimits persists new audio cache thresholds.
func (s *SettingsService) SetCacheLimits(limits domain.CacheLimits) error {
	if err := limits.Validate(); err != nil {
		return fmt.Errorf("invalid cache limits: %w", err)
	}

	if err := s.configStore.Set(KeyCacheMaxAgeDays, limits.MaxAgeDays); err != nil {
		return fmt.Errorf("save cache max_age_days: %w", err)
	}
	if err := s.configStore.Set(KeyCacheMaxCount, limits.MaxCount); err != nil {
		return fmt.Errorf("save cache max_count: %w", err)
	}
	if err := s.configStore.Set(KeyCacheMaxSizeMB, limits.MaxSizeMB); err != nil {
		return fmt.Errorf("save cache max_size_mb: %w", err)
	}
	return nil
}

// Watch reloads the configuration source on change and calls onChange.
func (s *SettingsService) Watch(ctx context.Context, onChange func()) error {
	return s.configStore.Watch(ctx, onChange)
}

// Helper methods for reading config with defaults.

// getInt treats zero and negative values as unset.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Millisecond
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Minute
}

func (s *SettingsService) getEnvironment(defaultVal domain.Environment) domain.Environment {
	val := s.configStore.GetString(KeyEnvironment)
	if val == "" {
		return defaultVal
	}
	env := domain.Environment(val)
	if !env.IsValid() {
		return defaultVal
	}
	return env
}
