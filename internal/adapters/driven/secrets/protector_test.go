package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestNew_KeyLength(t *testing.T) {
	_, err := New([]byte("short"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := New(testKey(1))
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestProtector_RoundTrip(t *testing.T) {
	p, err := New(testKey(7))
	require.NoError(t, err)

	tests := []string{"sk-abc123", "", "unicode: ключ 🔑", strings.Repeat("x", 4096)}
	for _, plaintext := range tests {
		protected, err := p.Protect(plaintext)
		require.NoError(t, err)
		assert.True(t, p.IsProtected(protected))
		assert.True(t, strings.HasPrefix(protected, Prefix))
		if plaintext != "" {
			assert.NotContains(t, protected, plaintext)
		}

		revealed, err := p.Reveal(protected)
		require.NoError(t, err)
		assert.Equal(t, plaintext, revealed)
	}
}

func TestProtector_FreshNonce(t *testing.T) {
	p, err := New(testKey(7))
	require.NoError(t, err)

	a, err := p.Protect("same")
	require.NoError(t, err)
	b, err := p.Protect("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestProtector_IsProtected(t *testing.T) {
	p, err := New(testKey(7))
	require.NoError(t, err)

	assert.False(t, p.IsProtected("sk-plain"))
	assert.False(t, p.IsProtected(""))
	assert.True(t, p.IsProtected(Prefix+"anything"))
}

func TestProtector_RevealPlaintextPassesThrough(t *testing.T) {
	p, err := New(testKey(7))
	require.NoError(t, err)

	got, err := p.Reveal("sk-legacy")
	require.NoError(t, err)
	assert.Equal(t, "sk-legacy", got)
}

func TestProtector_RevealRejectsTampering(t *testing.T) {
	p, err := New(testKey(7))
	require.NoError(t, err)
	other, err := New(testKey(8))
	require.NoError(t, err)

	protected, err := p.Protect("secret")
	require.NoError(t, err)

	_, err = other.Reveal(protected)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = p.Reveal(Prefix + "!!!not base64!!!")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = p.Reveal(Prefix + "AAAA")
	assert.ErrorIs(t, err, ErrMalformed)

	flipped := []byte(protected)
	i := len(Prefix) + 10 // inside a full base64 quantum, so every bit counts
	if flipped[i] == 'A' {
		flipped[i] = 'B'
	} else {
		flipped[i] = 'A'
	}
	_, err = p.Reveal(string(flipped))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOpen_CreatesAndReusesKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := Open(dir)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, int64(32), info.Size())

	protected, err := first.Protect("persisted")
	require.NoError(t, err)

	second, err := Open(dir)
	require.NoError(t, err)
	revealed, err := second.Reveal(protected)
	require.NoError(t, err)
	assert.Equal(t, "persisted", revealed)
}

func TestOpen_RejectsCorruptKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("bad"), 0600))

	_, err := Open(dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
