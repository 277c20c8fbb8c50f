package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// Ensure ProviderService implements the interface.
var _ driving.ProviderService = (*ProviderService)(nil)

// DefaultSpeed is the playback rate applied when none is given.
const DefaultSpeed = 1.0

// ProviderService validates and stores endpoint configurations.
// Keys are protected by the store on write.
type ProviderService struct {
	apis driven.APIConfigStore
	tts  driven.TTSConfigStore
}

// NewProviderService creates a new provider service.
func NewProviderService(apis driven.APIConfigStore, tts driven.TTSConfigStore) *ProviderService {
	return &ProviderService{
		apis: apis,
		tts:  tts,
	}
}

// ListAPI returns all chat endpoint configurations.
func (s *ProviderService) ListAPI(ctx context.Context) ([]domain.APIConfiguration, error) {
	return s.apis.List(ctx)
}

// SaveAPI validates and stores a chat endpoint configuration.
func (s *ProviderService) SaveAPI(ctx context.Context, cfg *domain.APIConfiguration) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration is required", domain.ErrInvalidInput)
	}
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := validateURL(cfg.APIURL); err != nil {
		return err
	}
	if cfg.ChannelType != "" && !cfg.ChannelType.IsValid() {
		return fmt.Errorf("%w: unknown channel type %q", domain.ErrInvalidInput, cfg.ChannelType)
	}

	if _, err := s.apis.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save api configuration: %w", err)
	}
	return nil
}

// DeleteAPI removes a chat endpoint configuration.
func (s *ProviderService) DeleteAPI(ctx context.Context, id int64) error {
	return s.apis.Delete(ctx, id)
}

// ListTTS returns all speech endpoint configurations.
func (s *ProviderService) ListTTS(ctx context.Context) ([]domain.TTSConfiguration, error) {
	return s.tts.List(ctx)
}

// SaveTTS validates and stores a speech endpoint configuration.
func (s *ProviderService) SaveTTS(ctx context.Context, cfg *domain.TTSConfiguration) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration is required", domain.ErrInvalidInput)
	}
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := validateURL(cfg.APIURL); err != nil {
		return err
	}
	if cfg.Speed < 0 {
		return fmt.Errorf("%w: speed must be positive", domain.ErrInvalidInput)
	}
	if cfg.Speed == 0 {
		cfg.Speed = DefaultSpeed
	}

	if _, err := s.tts.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save tts configuration: %w", err)
	}
	return nil
}

// ActivateTTS makes id the only active speech configuration.
func (s *ProviderService) ActivateTTS(ctx context.Context, id int64) error {
	return s.tts.SetActive(ctx, id)
}

// DeleteTTS removes a speech endpoint configuration.
func (s *ProviderService) DeleteTTS(ctx context.Context, id int64) error {
	return s.tts.Delete(ctx, id)
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: api url is required", domain.ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: invalid api url %q", domain.ErrInvalidInput, raw)
	}
	return nil
}
