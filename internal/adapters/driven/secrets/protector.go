// Package secrets protects API keys at rest with XChaCha20-Poly1305.
//
// Protected values are text: a version prefix followed by the base64url
// encoding of nonce||ciphertext. The 32-byte key lives in a file next to the
// database and is created on first use.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// Prefix marks a value produced by Protect.
const Prefix = "enc:v1:"

// KeyFileName is the key file created inside the data directory.
const KeyFileName = "murmur.key"

// ErrMalformed indicates a protected value that cannot be decoded or authenticated.
var ErrMalformed = errors.New("malformed protected value")

// Protector encrypts secrets with a symmetric key.
type Protector struct {
	key []byte
}

// Verify interface compliance.
var _ driven.SecretProtector = (*Protector)(nil)

// New creates a Protector from a 32-byte key.
func New(key []byte) (*Protector, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d",
			domain.ErrInvalidInput, chacha20poly1305.KeySize, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Protector{key: k}, nil
}

// Open loads the key file in dataDir, generating it if it does not exist.
func Open(dataDir string) (*Protector, error) {
	path := filepath.Join(dataDir, KeyFileName)

	key, err := os.ReadFile(path)
	switch {
	case err == nil:
		return New(key)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	// O_EXCL so a concurrent first run cannot overwrite a key already in use.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return Open(dataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("creating key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close() //nolint:errcheck
		return nil, fmt.Errorf("writing key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}
	return New(key)
}

// Protect encrypts plaintext under a fresh random nonce.
func (p *Protector) Protect(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(Prefix))
	return Prefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// IsProtected reports whether value carries the protected prefix.
func (p *Protector) IsProtected(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Reveal decrypts a value produced by Protect. Values without the prefix
// are returned as they are, so rows not yet migrated stay usable.
func (p *Protector) Reveal(value string) (string, error) {
	if !p.IsProtected(value) {
		return value, nil
	}

	sealed, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformed)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return string(plaintext), nil
}
