package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure SpeechService implements the interface.
var _ driving.SpeechService = (*SpeechService)(nil)

// SpeechService serves speech from the audio cache and synthesizes on a miss.
// Concurrent requests for the same key share one synthesis.
type SpeechService struct {
	cache       driven.AudioCache
	synthesizer driven.Synthesizer
	configs     driven.TTSConfigStore
	group       singleflight.Group
}

// NewSpeechService creates a new speech service.
// configs may be nil when SpeakActive is not used.
func NewSpeechService(
	cache driven.AudioCache,
	synthesizer driven.Synthesizer,
	configs driven.TTSConfigStore,
) *SpeechService {
	return &SpeechService{
		cache:       cache,
		synthesizer: synthesizer,
		configs:     configs,
	}
}

// SpeakActive speaks text with the active TTS configuration.
func (s *SpeechService) SpeakActive(ctx context.Context, text string) ([]byte, bool, error) {
	if s.configs == nil {
		return nil, false, fmt.Errorf("tts configuration store not configured")
	}
	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("active tts configuration: %w", err)
	}
	return s.Speak(ctx, text, *cfg)
}

// Speak returns audio for text and whether it came from the cache.
// Cache read and write failures degrade to uncached synthesis.
func (s *SpeechService) Speak(ctx context.Context, text string, cfg domain.TTSConfiguration) ([]byte, bool, error) {
	if strings.TrimSpace(text) == "" {
		return nil, false, fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}

	key := s.cache.KeyFor(text, cfg.Model, cfg.Voice, cfg.Speed)

	audio, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("reading audio cache: %v", err)
	}
	if hit {
		return audio, true, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		audio, err := s.synthesizer.Synthesize(ctx, text, cfg)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(ctx, key, audio, cfg.CacheConfig()); err != nil {
			logger.Warn("writing audio cache: %v", err)
		}
		return audio, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("synthesize speech: %w", err)
	}
	audio = v.([]byte)
	if shared {
		// Every waiter received the same slice.
		audio = bytes.Clone(audio)
	}
	return audio, false, nil
}
