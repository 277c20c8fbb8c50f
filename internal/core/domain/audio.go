package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Bytes per megabyte used by cache size limits.
const bytesPerMB = 1024 * 1024

// TTSCacheConfig is the diagnostic configuration stored next to cached audio.
// It is written for inspection only and never queried.
type TTSCacheConfig struct {
	Model string  `json:"model"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

// AudioCacheEntry is one cached synthesis result.
type AudioCacheEntry struct {
	// ID is the row identifier.
	ID int64

	// TextHash is the content-addressed key (see KeyFor).
	TextHash string

	// AudioData is the synthesized audio.
	AudioData []byte

	// TTSConfigJSON is the serialised TTSCacheConfig.
	TTSConfigJSON string

	CreatedAt time.Time

	// LastAccessedAt is touched on every cache hit.
	LastAccessedAt time.Time
}

// CacheLimits bounds the audio cache.
type CacheLimits struct {
	// MaxAgeDays removes entries created longer ago than this.
	MaxAgeDays int

	// MaxCount caps the number of entries.
	MaxCount int

	// MaxSizeMB caps the total audio size in megabytes.
	MaxSizeMB int
}

// DefaultCacheLimits returns the stock eviction thresholds.
func DefaultCacheLimits() CacheLimits {
	return CacheLimits{
		MaxAgeDays: 7,
		MaxCount:   1000,
		MaxSizeMB:  500,
	}
}

// MaxAge returns MaxAgeDays as a duration.
func (l CacheLimits) MaxAge() time.Duration {
	return time.Duration(l.MaxAgeDays) * 24 * time.Hour
}

// MaxBytes returns MaxSizeMB in bytes.
func (l CacheLimits) MaxBytes() int64 {
	return int64(l.MaxSizeMB) * bytesPerMB
}

// Validate rejects negative or zero thresholds.
func (l CacheLimits) Validate() error {
	if l.MaxAgeDays <= 0 || l.MaxCount <= 0 || l.MaxSizeMB <= 0 {
		return ErrInvalidInput
	}
	return nil
}

// CacheStats summarises the audio cache contents.
type CacheStats struct {
	Entries    int64
	TotalBytes int64
	Oldest     time.Time
	Newest     time.Time
}

// CleanupReport describes one cleanup pass.
type CleanupReport struct {
	// ExpiredRemoved counts entries removed by the age pass.
	ExpiredRemoved int64

	// EvictedRemoved counts entries removed by the count/size pass.
	EvictedRemoved int64

	// BytesFreed is the audio size of all removed entries.
	BytesFreed int64

	// Remaining is the entry count after the pass.
	Remaining int64

	// RemainingBytes is the audio size after the pass.
	RemainingBytes int64
}

// Removed returns the total number of entries deleted.
func (r CleanupReport) Removed() int64 {
	return r.ExpiredRemoved + r.EvictedRemoved
}

// CacheKey derives the content address of a synthesis request: hex SHA-256
// over the trimmed text, model and voice and the shortest round-trip
// formatting of speed, separated by NUL bytes.
func CacheKey(text, model, voice string, speed float64) string {
	parts := []string{
		strings.TrimSpace(text),
		strings.TrimSpace(model),
		strings.TrimSpace(voice),
		strconv.FormatFloat(speed, 'f', -1, 64),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
