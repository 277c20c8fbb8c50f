package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func TestProviderAddAndList(t *testing.T) {
	env := setupTestCLI(t)

	out, err := runCLI(t, "provider", "add-api", "Work",
		"--url", "https://api.openai.com/v1", "--api-key", "sk-1234567890abcdef", "--model", "gpt-4o")
	require.NoError(t, err)
	assert.Contains(t, out, "Added chat endpoint 1: Work")

	stored, err := env.store.APIConfigs().Get(t.Context(), 1)
	require.NoError(t, err)
	assert.NotEqual(t, "sk-1234567890abcdef", stored.APIKey, "keys are encrypted at rest")
	assert.Equal(t, domain.ChannelOpenAI, stored.ChannelType)

	out, err = runCLI(t, "provider", "add-tts", "Voice", "--url", "http://localhost:8880/v1", "--voice", "nova", "--active")
	require.NoError(t, err)
	assert.Contains(t, out, "Added speech endpoint 1: Voice")

	out, err = runCLI(t, "provider", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "API Key: (encrypted)")
	assert.Contains(t, out, "* 1  Voice")
	assert.Contains(t, out, "API Key: (not set)")
}

func TestProviderAdd_Invalid(t *testing.T) {
	setupTestCLI(t)

	_, err := runCLI(t, "provider", "add-api", "Work")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = runCLI(t, "provider", "add-tts", "Voice", "--url", "http://localhost", "--speed=-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProviderActivateAndRemove(t *testing.T) {
	env := setupTestCLI(t)

	_, err := runCLI(t, "provider", "add-tts", "A", "--url", "http://a.test", "--active")
	require.NoError(t, err)
	_, err = runCLI(t, "provider", "add-tts", "B", "--url", "http://b.test")
	require.NoError(t, err)

	out, err := runCLI(t, "provider", "activate", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Speech endpoint 2 is now active")

	active, err := env.store.TTSConfigs().GetActive(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "B", active.Name)

	_, err = runCLI(t, "provider", "remove", "tts", "1")
	require.NoError(t, err)
	_, err = runCLI(t, "provider", "remove", "tts", "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = runCLI(t, "provider", "remove", "voice", "2")
	assert.Error(t, err)
}

func TestSpeakCmd(t *testing.T) {
	env := setupTestCLI(t)
	output := filepath.Join(t.TempDir(), "out.mp3")

	_, err := runCLI(t, "speak", "hello", "-o", output)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no active endpoint")

	_, err = runCLI(t, "provider", "add-tts", "Voice", "--url", "http://localhost:8880/v1", "--active")
	require.NoError(t, err)

	out, err := runCLI(t, "speak", "hello", "world", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "synthesized")

	audio, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "audio:hello world", string(audio))

	out, err = runCLI(t, "speak", "hello", "world", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "cached")
	assert.Equal(t, 1, env.synth.calls)
}
