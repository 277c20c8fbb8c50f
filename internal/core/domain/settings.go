package domain

import "time"

const unknownDescription = "Unknown"

// AppSettings holds the window and theme preferences.
// Exactly one row exists once the schema has been initialised.
type AppSettings struct {
	// ID is the row identifier (engine-assigned).
	ID int64

	// Topmost keeps the assistant window above other windows.
	Topmost bool

	// ShowInTaskbar shows the window in the OS taskbar.
	ShowInTaskbar bool

	// AnimationsEnabled toggles UI animations.
	AnimationsEnabled bool

	// DarkTheme selects the dark colour scheme.
	DarkTheme bool

	// UpdatedAt is when the settings were last written.
	UpdatedAt time.Time
}

// DefaultAppSettings returns the baseline row seeded on first initialisation.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Topmost:           false,
		ShowInTaskbar:     true,
		AnimationsEnabled: true,
		DarkTheme:         false,
	}
}

// Environment selects where the database file lives.
type Environment string

// Available environments.
const (
	// EnvironmentDevelopment keeps data in the project-local data directory.
	EnvironmentDevelopment Environment = "development"

	// EnvironmentProduction keeps data next to the executable.
	EnvironmentProduction Environment = "production"
)

// IsValid returns true if the environment is recognised.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentDevelopment, EnvironmentProduction:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (e Environment) String() string {
	return string(e)
}

// Description returns a human-readable description of the environment.
func (e Environment) Description() string {
	switch e {
	case EnvironmentDevelopment:
		return "Development (project data directory)"
	case EnvironmentProduction:
		return "Production (next to executable)"
	default:
		return unknownDescription
	}
}

// RuntimeConfig holds the process-level tunables read from the config file.
type RuntimeConfig struct {
	// DataDir overrides the environment-derived data directory when set.
	DataDir string

	// Environment decides the default data directory.
	Environment Environment

	// BusyTimeout bounds how long a statement waits on a locked database.
	BusyTimeout time.Duration

	// Cache holds the audio cache eviction thresholds.
	Cache CacheLimits

	// CleanupInterval is how often the maintenance loop runs a cleanup pass.
	CleanupInterval time.Duration

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultRuntimeConfig returns the configuration used when the file is silent.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Environment:     EnvironmentProduction,
		BusyTimeout:     30 * time.Second,
		Cache:           DefaultCacheLimits(),
		CleanupInterval: 6 * time.Hour,
	}
}
