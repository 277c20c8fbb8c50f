package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelType_IsValid(t *testing.T) {
	for _, c := range AllChannelTypes() {
		assert.True(t, c.IsValid(), "channel %s should be valid", c)
		assert.NotEqual(t, "Unknown", c.Description())
	}

	assert.False(t, ChannelType("").IsValid())
	assert.False(t, ChannelType("openai").IsValid())
	assert.Equal(t, "Unknown", ChannelType("Azure").Description())
}

func TestTTSConfiguration_CacheConfig(t *testing.T) {
	cfg := TTSConfiguration{
		Name:   "Narrator",
		APIKey: "secret",
		Model:  "tts-1",
		Voice:  "alloy",
		Speed:  1.25,
	}

	assert.Equal(t, TTSCacheConfig{Model: "tts-1", Voice: "alloy", Speed: 1.25}, cfg.CacheConfig())
}
