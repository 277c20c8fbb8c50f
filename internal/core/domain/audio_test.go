package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheLimits_Conversions(t *testing.T) {
	limits := DefaultCacheLimits()

	assert.Equal(t, 7, limits.MaxAgeDays)
	assert.Equal(t, 1000, limits.MaxCount)
	assert.Equal(t, 500, limits.MaxSizeMB)
	assert.Equal(t, 7*24*time.Hour, limits.MaxAge())
	assert.Equal(t, int64(500*1024*1024), limits.MaxBytes())
}

func TestCacheLimits_Validate(t *testing.T) {
	tests := []struct {
		name    string
		limits  CacheLimits
		wantErr bool
	}{
		{"defaults", DefaultCacheLimits(), false},
		{"zero age", CacheLimits{MaxAgeDays: 0, MaxCount: 1, MaxSizeMB: 1}, true},
		{"zero count", CacheLimits{MaxAgeDays: 1, MaxCount: 0, MaxSizeMB: 1}, true},
		{"negative size", CacheLimits{MaxAgeDays: 1, MaxCount: 1, MaxSizeMB: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.limits.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCleanupReport_Removed(t *testing.T) {
	report := CleanupReport{ExpiredRemoved: 3, EvictedRemoved: 4}
	assert.Equal(t, int64(7), report.Removed())
}

func TestMessage_HasImage(t *testing.T) {
	assert.False(t, Message{}.HasImage())
	assert.True(t, Message{ImageData: []byte{0x89}}.HasImage())
}

func TestConversationOrder_IsValid(t *testing.T) {
	assert.True(t, OrderByUpdated.IsValid())
	assert.True(t, OrderByCreated.IsValid())
	assert.False(t, ConversationOrder("title").IsValid())
}

func TestMaintenanceRun(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := MaintenanceRun{StartedAt: start, EndedAt: start.Add(2 * time.Second)}

	assert.True(t, run.Success())
	assert.Equal(t, 2*time.Second, run.Duration())

	run.Error = "boom"
	assert.False(t, run.Success())
}

func TestMigrationReport_Changed(t *testing.T) {
	assert.False(t, MigrationReport{}.Changed())
	assert.True(t, MigrationReport{Added: []string{"Messages.ImageData"}}.Changed())
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("hello", "tts-1", "alloy", 1)
	assert.Len(t, key, 64)
	assert.Equal(t, key, CacheKey(" hello\t", "tts-1 ", " alloy", 1.0))
	assert.NotEqual(t, key, CacheKey("hello", "tts-1", "alloy", 1.1))
	assert.NotEqual(t, key, CacheKey("hellotts-1", "", "alloy", 1))
}
