package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// Ensure AudioCache implements the interface.
var _ driven.AudioCache = (*AudioCache)(nil)

type audioEntry struct {
	id             int64
	audio          []byte
	config         domain.TTSCacheConfig
	createdAt      time.Time
	lastAccessedAt time.Time
}

// AudioCache is an in-memory implementation of driven.AudioCache.
// It applies the same expiry and eviction rules as the SQLite cache.
type AudioCache struct {
	mu      sync.Mutex
	entries map[string]*audioEntry
	nextID  int64

	// Now supplies timestamps. Defaults to time.Now.
	Now func() time.Time
}

// NewAudioCache creates an empty in-memory audio cache.
func NewAudioCache() *AudioCache {
	return &AudioCache{
		entries: make(map[string]*audioEntry),
		Now:     time.Now,
	}
}

// KeyFor returns domain.CacheKey for the request.
func (c *AudioCache) KeyFor(text, model, voice string, speed float64) string {
	return domain.CacheKey(text, model, voice, speed)
}

// Get returns cached audio and marks the entry as used.
func (c *AudioCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	e.lastAccessedAt = c.Now()
	return append([]byte(nil), e.audio...), true, nil
}

// Put stores audio unless key is already cached.
func (c *AudioCache) Put(_ context.Context, key string, audio []byte, cfg domain.TTSCacheConfig) error {
	if key == "" || len(audio) == 0 {
		return fmt.Errorf("%w: key and audio are required", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return nil
	}
	c.nextID++
	now := c.Now()
	c.entries[key] = &audioEntry{
		id:             c.nextID,
		audio:          append([]byte(nil), audio...),
		config:         cfg,
		createdAt:      now,
		lastAccessedAt: now,
	}
	return nil
}

// Cleanup removes entries created before the age cutoff, then evicts least
// recently used entries until the count and size limits hold.
func (c *AudioCache) Cleanup(_ context.Context, limits domain.CacheLimits) (domain.CleanupReport, error) {
	var report domain.CleanupReport
	if err := limits.Validate(); err != nil {
		return report, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.Now().Add(-limits.MaxAge())
	for key, e := range c.entries {
		if e.createdAt.Before(cutoff) {
			report.ExpiredRemoved++
			report.BytesFreed += int64(len(e.audio))
			delete(c.entries, key)
		}
	}

	keys := make([]string, 0, len(c.entries))
	var size int64
	for key, e := range c.entries {
		keys = append(keys, key)
		size += int64(len(e.audio))
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := c.entries[keys[i]], c.entries[keys[j]]
		if !a.lastAccessedAt.Equal(b.lastAccessedAt) {
			return a.lastAccessedAt.Before(b.lastAccessedAt)
		}
		return a.id < b.id
	})

	count := int64(len(keys))
	for _, key := range keys {
		if count <= int64(limits.MaxCount) && size <= limits.MaxBytes() {
			break
		}
		n := int64(len(c.entries[key].audio))
		delete(c.entries, key)
		report.EvictedRemoved++
		report.BytesFreed += n
		count--
		size -= n
	}

	report.Remaining = count
	report.RemainingBytes = size
	return report, nil
}

// Clear removes every entry.
func (c *AudioCache) Clear(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(c.entries))
	c.entries = make(map[string]*audioEntry)
	return n, nil
}

// Stats summarises the cache contents.
func (c *AudioCache) Stats(_ context.Context) (domain.CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stats domain.CacheStats
	for _, e := range c.entries {
		stats.Entries++
		stats.TotalBytes += int64(len(e.audio))
		if stats.Oldest.IsZero() || e.createdAt.Before(stats.Oldest) {
			stats.Oldest = e.createdAt
		}
		if e.createdAt.After(stats.Newest) {
			stats.Newest = e.createdAt
		}
	}
	return stats, nil
}
