// Package openai provides a speech synthesis adapter for the OpenAI audio API
// and compatible endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// Ensure Synthesizer implements the interface.
var _ driven.Synthesizer = (*Synthesizer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "tts-1"
	DefaultVoice   = "alloy"
	DefaultFormat  = "mp3"
	DefaultTimeout = 60 * time.Second
)

// Revealer recovers plaintext API keys from their stored form.
type Revealer interface {
	Reveal(value string) (string, error)
}

// Config holds configuration for the synthesizer.
type Config struct {
	// Revealer decrypts stored API keys (required).
	Revealer Revealer

	// Format is the requested audio encoding (default: mp3).
	Format string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Synthesizer turns text into audio through POST {APIURL}/audio/speech.
// Endpoint, model, voice and key come from each TTSConfiguration.
type Synthesizer struct {
	client   *http.Client
	revealer Revealer
	format   string
}

// speechRequest is the OpenAI API request format.
type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty"`
}

// errorResponse is the OpenAI API error format.
type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewSynthesizer creates a new OpenAI speech synthesizer.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	if cfg.Revealer == nil {
		return nil, fmt.Errorf("openai: revealer is required")
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Synthesizer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		revealer: cfg.Revealer,
		format:   cfg.Format,
	}, nil
}

// Synthesize returns encoded audio for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, cfg domain.TTSConfiguration) ([]byte, error) {
	apiKey, err := s.revealer.Reveal(cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("reveal api key: %w", err)
	}

	reqBody := speechRequest{
		Model:          valueOr(cfg.Model, DefaultModel),
		Input:          text,
		Voice:          valueOr(cfg.Voice, DefaultVoice),
		Speed:          cfg.Speed,
		ResponseFormat: s.format,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	baseURL := strings.TrimRight(valueOr(cfg.APIURL, DefaultBaseURL), "/")
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		baseURL+"/audio/speech",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("openai: empty audio response")
	}

	return body, nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
