package driven

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// SettingsStore persists the singleton settings row.
type SettingsStore interface {
	// Get returns the settings row.
	// Returns domain.ErrNotFound if the schema has not been initialised.
	Get(ctx context.Context) (*domain.AppSettings, error)

	// Save updates the settings row in place and stamps UpdatedAt.
	Save(ctx context.Context, settings *domain.AppSettings) error
}

// APIConfigStore persists chat provider configurations.
type APIConfigStore interface {
	// Save inserts (ID == 0) or updates the configuration.
	// On insert the generated ID is written back onto cfg. The API key is
	// written back in protected form.
	Save(ctx context.Context, cfg *domain.APIConfiguration) (int64, error)

	// Get retrieves a configuration by ID.
	Get(ctx context.Context, id int64) (*domain.APIConfiguration, error)

	// List returns all configurations ordered by creation time.
	List(ctx context.Context) ([]domain.APIConfiguration, error)

	// Delete removes a configuration.
	Delete(ctx context.Context, id int64) error
}

// TTSConfigStore persists speech provider configurations.
type TTSConfigStore interface {
	// Save inserts (ID == 0) or updates the configuration.
	// Saving an active configuration deactivates every other row in the
	// same transaction.
	Save(ctx context.Context, cfg *domain.TTSConfiguration) (int64, error)

	// Get retrieves a configuration by ID.
	Get(ctx context.Context, id int64) (*domain.TTSConfiguration, error)

	// List returns all configurations ordered by creation time.
	List(ctx context.Context) ([]domain.TTSConfiguration, error)

	// Delete removes a configuration.
	Delete(ctx context.Context, id int64) error

	// GetActive returns the active configuration.
	// Returns domain.ErrNotFound when none is active.
	GetActive(ctx context.Context) (*domain.TTSConfiguration, error)

	// SetActive makes id the only active configuration.
	SetActive(ctx context.Context, id int64) error
}

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	// Create inserts a conversation and writes the generated ID back.
	Create(ctx context.Context, conv *domain.Conversation) (int64, error)

	// Get retrieves a conversation by ID, including its message count.
	Get(ctx context.Context, id int64) (*domain.Conversation, error)

	// List returns all conversations in the requested order.
	List(ctx context.Context, order domain.ConversationOrder) ([]domain.Conversation, error)

	// Rename changes a conversation title.
	Rename(ctx context.Context, id int64, title string) error

	// Delete removes a conversation and all of its messages atomically.
	Delete(ctx context.Context, id int64) error

	// SaveMessage inserts a message and advances the parent conversation's
	// UpdatedAt to the message timestamp atomically.
	SaveMessage(ctx context.Context, msg *domain.Message) (int64, error)

	// ListMessages returns a conversation's messages, oldest first.
	ListMessages(ctx context.Context, conversationID int64) ([]domain.Message, error)

	// CountMessages returns the number of messages in a conversation.
	CountMessages(ctx context.Context, conversationID int64) (int, error)
}

// AudioCache stores synthesized speech keyed by a content hash.
type AudioCache interface {
	// KeyFor derives the cache key for a synthesis request.
	KeyFor(text, model, voice string, speed float64) string

	// Get returns cached audio and touches its access time.
	// The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores audio. An entry that already exists is left untouched
	// and reported as success.
	Put(ctx context.Context, key string, audio []byte, cfg domain.TTSCacheConfig) error

	// Cleanup enforces the age, count and size limits.
	Cleanup(ctx context.Context, limits domain.CacheLimits) (domain.CleanupReport, error)

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int64, error)

	// Stats summarises the cache contents.
	Stats(ctx context.Context) (domain.CacheStats, error)
}

// PoolStats describes writer permit and reader usage.
type PoolStats struct {
	Available int
	InUse     int
	Total     int
	Max       int
}

// Database exposes the whole-database lifecycle operations.
type Database interface {
	// Initialize creates missing tables and indexes, applies additive
	// column migrations and seeds defaults. Any error is fatal.
	Initialize(ctx context.Context) (domain.MigrationReport, error)

	// MigrateSecrets protects every stored secret that is still in plaintext.
	MigrateSecrets(ctx context.Context) (domain.SecretReport, error)

	// Backup copies the database file to path.
	Backup(ctx context.Context, path string) error

	// Restore replaces the database file with the file at path.
	// No writer or reader may be active.
	Restore(ctx context.Context, path string) error

	// PoolStats reports connection usage.
	PoolStats() PoolStats

	// Path returns the database file path.
	Path() string
}
