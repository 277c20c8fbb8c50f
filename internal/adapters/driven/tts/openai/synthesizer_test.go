package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

type prefixRevealer struct {
	err error
}

func (r prefixRevealer) Reveal(value string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return strings.TrimPrefix(value, "protected:"), nil
}

func TestNewSynthesizer(t *testing.T) {
	_, err := NewSynthesizer(Config{})
	assert.Error(t, err)

	s, err := NewSynthesizer(Config{Revealer: prefixRevealer{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, s.format)
	assert.Equal(t, DefaultTimeout, s.client.Timeout)
}

func TestSynthesizer_Synthesize(t *testing.T) {
	var got speechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer server.Close()

	s, err := NewSynthesizer(Config{Revealer: prefixRevealer{}})
	require.NoError(t, err)

	audio, err := s.Synthesize(context.Background(), "hello", domain.TTSConfiguration{
		APIURL: server.URL + "/v1/",
		APIKey: "protected:sk-test",
		Model:  "tts-1-hd",
		Voice:  "nova",
		Speed:  1.25,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("ID3audio"), audio)
	assert.Equal(t, "hello", got.Input)
	assert.Equal(t, "tts-1-hd", got.Model)
	assert.Equal(t, "nova", got.Voice)
	assert.InDelta(t, 1.25, got.Speed, 0.0001)
	assert.Equal(t, "mp3", got.ResponseFormat)
}

func TestSynthesizer_Defaults(t *testing.T) {
	var got speechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("audio"))
	}))
	defer server.Close()

	s, err := NewSynthesizer(Config{Revealer: prefixRevealer{}})
	require.NoError(t, err)

	_, err = s.Synthesize(context.Background(), "hi", domain.TTSConfiguration{APIURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, DefaultVoice, got.Voice)
}

func TestSynthesizer_ErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{
			name:     "api error",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`,
			contains: "Incorrect API key",
		},
		{
			name:     "plain error",
			status:   http.StatusBadGateway,
			body:     "upstream down",
			contains: "upstream down",
		},
		{
			name:     "empty body",
			status:   http.StatusOK,
			body:     "",
			contains: "empty audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s, err := NewSynthesizer(Config{Revealer: prefixRevealer{}})
			require.NoError(t, err)

			_, err = s.Synthesize(context.Background(), "hi", domain.TTSConfiguration{APIURL: server.URL})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestSynthesizer_RevealFailure(t *testing.T) {
	s, err := NewSynthesizer(Config{Revealer: prefixRevealer{err: errors.New("bad key file")}})
	require.NoError(t, err)

	_, err = s.Synthesize(context.Background(), "hi", domain.TTSConfiguration{APIKey: "enc:v1:xx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key file")
}
