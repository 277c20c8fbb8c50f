package domain

import "time"

// ChannelType identifies the wire protocol a provider endpoint speaks.
type ChannelType string

// Available channel types.
const (
	// ChannelOpenAI is the OpenAI-compatible chat/speech API.
	ChannelOpenAI ChannelType = "OpenAI"

	// ChannelAnthropic is the Anthropic messages API.
	ChannelAnthropic ChannelType = "Anthropic"

	// ChannelGemini is the Google Gemini API.
	ChannelGemini ChannelType = "Gemini"

	// ChannelOllama is a local Ollama instance.
	ChannelOllama ChannelType = "Ollama"
)

// IsValid returns true if the channel type is recognised.
func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelOpenAI, ChannelAnthropic, ChannelGemini, ChannelOllama:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c ChannelType) String() string {
	return string(c)
}

// Description returns a human-readable description of the channel.
func (c ChannelType) Description() string {
	switch c {
	case ChannelOpenAI:
		return "OpenAI compatible"
	case ChannelAnthropic:
		return "Anthropic"
	case ChannelGemini:
		return "Google Gemini"
	case ChannelOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// AllChannelTypes returns all available channel types.
func AllChannelTypes() []ChannelType {
	return []ChannelType{
		ChannelOpenAI,
		ChannelAnthropic,
		ChannelGemini,
		ChannelOllama,
	}
}

// APIConfiguration is a configured chat model endpoint.
type APIConfiguration struct {
	// ID is the row identifier. Zero until first saved.
	ID int64

	// Name is the display name.
	Name string

	// APIURL is the endpoint base URL.
	APIURL string

	// APIKey is the provider secret. Always held in protected form once saved.
	APIKey string

	// ModelName is the model requested from the endpoint.
	ModelName string

	// StreamingEnabled requests streamed responses.
	StreamingEnabled bool

	// MultimodalEnabled allows image attachments.
	MultimodalEnabled bool

	// ChannelType is the wire protocol of the endpoint.
	ChannelType ChannelType

	// SupportsThinking marks models that return reasoning content.
	SupportsThinking bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TTSConfiguration is a configured speech synthesis endpoint.
type TTSConfiguration struct {
	// ID is the row identifier. Zero until first saved.
	ID int64

	// Name is the display name.
	Name string

	// APIURL is the endpoint base URL.
	APIURL string

	// APIKey is the provider secret. Always held in protected form once saved.
	APIKey string

	// Model is the speech model.
	Model string

	// Voice is the voice preset.
	Voice string

	// Speed is the playback rate multiplier.
	Speed float64

	// StreamingEnabled requests streamed audio.
	StreamingEnabled bool

	// IsActive marks the configuration used for playback.
	// The store keeps at most one active row.
	IsActive bool

	// ChannelType is optional; empty means unset.
	ChannelType ChannelType

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CacheConfig returns the subset of fields that determines synthesized audio.
func (c TTSConfiguration) CacheConfig() TTSCacheConfig {
	return TTSCacheConfig{
		Model: c.Model,
		Voice: c.Voice,
		Speed: c.Speed,
	}
}
