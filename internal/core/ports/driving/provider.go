package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// ProviderService manages chat and speech endpoint configurations.
type ProviderService interface {
	// ListAPI returns all chat endpoint configurations.
	ListAPI(ctx context.Context) ([]domain.APIConfiguration, error)

	// SaveAPI validates and stores a chat endpoint configuration.
	SaveAPI(ctx context.Context, cfg *domain.APIConfiguration) error

	// DeleteAPI removes a chat endpoint configuration.
	DeleteAPI(ctx context.Context, id int64) error

	// ListTTS returns all speech endpoint configurations.
	ListTTS(ctx context.Context) ([]domain.TTSConfiguration, error)

	// SaveTTS validates and stores a speech endpoint configuration.
	SaveTTS(ctx context.Context, cfg *domain.TTSConfiguration) error

	// ActivateTTS makes id the only active speech configuration.
	ActivateTTS(ctx context.Context, id int64) error

	// DeleteTTS removes a speech endpoint configuration.
	DeleteTTS(ctx context.Context, id int64) error
}
