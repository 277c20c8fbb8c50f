package driving

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// SpeechService produces speech audio, reusing cached synthesis when possible.
type SpeechService interface {
	// Speak returns audio for text. The boolean is true when served from cache.
	Speak(ctx context.Context, text string, cfg domain.TTSConfiguration) ([]byte, bool, error)

	// SpeakActive is Speak with the active TTS configuration.
	// Returns domain.ErrNotFound when no configuration is active.
	SpeakActive(ctx context.Context, text string) ([]byte, bool, error)
}
