package driven

import (
	"context"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// Synthesizer turns text into speech audio using a TTS provider.
type Synthesizer interface {
	// Synthesize returns encoded audio for text using cfg.
	Synthesize(ctx context.Context, text string, cfg domain.TTSConfiguration) ([]byte, error)
}
