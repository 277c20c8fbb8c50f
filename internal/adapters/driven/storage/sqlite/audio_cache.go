package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/logger"
)

// evictionBatchSize bounds the number of ids in one DELETE ... IN statement.
const evictionBatchSize = 500

// lastAccessed is the recency of an entry, used only to rank eviction
// victims. Rows written before the column existed fall back to their
// creation time.
const lastAccessed = "COALESCE(LastAccessedAt, CreatedAt)"

// audioCache implements driven.AudioCache on the TtsAudio table.
type audioCache struct {
	store *Store
}

// Verify interface compliance.
var _ driven.AudioCache = (*audioCache)(nil)

// KeyFor returns domain.CacheKey for the request.
func (c *audioCache) KeyFor(text, model, voice string, speed float64) string {
	return domain.CacheKey(text, model, voice, speed)
}

// Get returns the cached audio and marks the entry as used.
// A failure to record the access is logged and does not turn the hit into an error.
func (c *audioCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var audio []byte
	err := c.store.read(ctx, "reading audio cache", func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT AudioData FROM TtsAudio WHERE TextHash = ?`, key).Scan(&audio)
	})
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	now := c.store.clock()
	err = c.store.write(ctx, "touching audio cache", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`UPDATE TtsAudio SET LastAccessedAt = ? WHERE TextHash = ?`, formatTime(now), key)
		return err
	})
	if err != nil {
		logger.Warn("recording audio cache access: %v", err)
	}
	return audio, true, nil
}

// Put stores audio under key. If the key is already cached the existing
// entry is kept and nil is returned.
func (c *audioCache) Put(ctx context.Context, key string, audio []byte, cfg domain.TTSCacheConfig) error {
	if key == "" {
		return fmt.Errorf("%w: cache key is empty", domain.ErrInvalidInput)
	}
	if len(audio) == 0 {
		return fmt.Errorf("%w: audio is empty", domain.ErrInvalidInput)
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling tts config: %w", err)
	}

	stamp := formatTime(c.store.clock())
	err = c.store.write(ctx, "writing audio cache", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, `
			INSERT INTO TtsAudio (TextHash, AudioData, TtsConfigJson, CreatedAt, LastAccessedAt)
			VALUES (?, ?, ?, ?, ?)
		`, key, audio, string(configJSON), stamp, stamp)
		return err
	})
	if err != nil && isUniqueViolation(err) {
		logger.Debug("Audio for %s already cached", shortKey(key))
		return nil
	}
	return err
}

// Cleanup removes entries created longer ago than limits.MaxAge, then evicts
// the least recently used entries until both the count and size bounds hold.
// Reading an entry refreshes its eviction rank but never its age.
// Everything happens in one transaction.
func (c *audioCache) Cleanup(ctx context.Context, limits domain.CacheLimits) (domain.CleanupReport, error) {
	var report domain.CleanupReport
	if err := limits.Validate(); err != nil {
		return report, fmt.Errorf("%w: cache limits must be positive", err)
	}

	cutoff := formatTime(c.store.clock().Add(-limits.MaxAge()))

	err := c.store.writeTx(ctx, "cleaning audio cache", func(tx *sql.Tx) error {
		report = domain.CleanupReport{}

		var expiredBytes int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(LENGTH(AudioData)), 0) FROM TtsAudio WHERE CreatedAt < ?`,
			cutoff).Scan(&expiredBytes)
		if err != nil {
			return fmt.Errorf("measuring expired entries: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM TtsAudio WHERE CreatedAt < ?`, cutoff)
		if err != nil {
			return fmt.Errorf("removing expired entries: %w", err)
		}
		if report.ExpiredRemoved, err = result.RowsAffected(); err != nil {
			return err
		}
		report.BytesFreed = expiredBytes

		count, size, err := cacheTotals(ctx, tx)
		if err != nil {
			return err
		}

		maxCount := int64(limits.MaxCount)
		maxBytes := limits.MaxBytes()
		if count > maxCount || size > maxBytes {
			victims, freed, err := selectVictims(ctx, tx, count-maxCount, size-maxBytes)
			if err != nil {
				return err
			}
			if err := deleteByID(ctx, tx, victims); err != nil {
				return err
			}
			report.EvictedRemoved = int64(len(victims))
			report.BytesFreed += freed
			count -= int64(len(victims))
			size -= freed
		}

		report.Remaining = count
		report.RemainingBytes = size
		return nil
	})
	if err != nil {
		return domain.CleanupReport{}, err
	}

	if report.Removed() > 0 {
		logger.Info("Audio cache cleanup removed %d expired and %d evicted entries (%d bytes)",
			report.ExpiredRemoved, report.EvictedRemoved, report.BytesFreed)
	}
	return report, nil
}

// selectVictims walks entries from least to most recently used until removing
// them brings the count excess and size excess to zero or below.
func selectVictims(ctx context.Context, tx *sql.Tx, countExcess, sizeExcess int64) ([]int64, int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT Id, LENGTH(AudioData) FROM TtsAudio ORDER BY `+lastAccessed+`, Id`)
	if err != nil {
		return nil, 0, fmt.Errorf("ranking entries: %w", err)
	}
	defer rows.Close()

	var (
		victims []int64
		freed   int64
	)
	for rows.Next() && (countExcess > 0 || sizeExcess > 0) {
		var id, size int64
		if err := rows.Scan(&id, &size); err != nil {
			return nil, 0, err
		}
		victims = append(victims, id)
		freed += size
		countExcess--
		sizeExcess -= size
	}
	return victims, freed, rows.Err()
}

func deleteByID(ctx context.Context, tx *sql.Tx, ids []int64) error {
	for start := 0; start < len(ids); start += evictionBatchSize {
		end := min(start+evictionBatchSize, len(ids))
		batch := ids[start:end]

		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM TtsAudio WHERE Id IN (`+placeholders+`)`, args...); err != nil {
			return fmt.Errorf("evicting entries: %w", err)
		}
	}
	return nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func cacheTotals(ctx context.Context, db rowQuerier) (count, size int64, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(AudioData)), 0) FROM TtsAudio`).Scan(&count, &size)
	if err != nil {
		return 0, 0, fmt.Errorf("measuring cache: %w", err)
	}
	return count, size, nil
}

// Clear removes every entry.
func (c *audioCache) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := c.store.write(ctx, "clearing audio cache", func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM TtsAudio`)
		if err != nil {
			return err
		}
		removed, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Cleared %d audio cache entries", removed)
	return removed, nil
}

// Stats summarises the cache. Oldest and Newest are creation times and
// stay zero for an empty cache.
func (c *audioCache) Stats(ctx context.Context) (domain.CacheStats, error) {
	var (
		stats          domain.CacheStats
		oldest, newest sql.NullString
	)
	err := c.store.read(ctx, "reading audio cache stats", func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `
			SELECT COUNT(*), COALESCE(SUM(LENGTH(AudioData)), 0), MIN(CreatedAt), MAX(CreatedAt)
			FROM TtsAudio
		`).Scan(&stats.Entries, &stats.TotalBytes, &oldest, &newest)
	})
	if err != nil {
		return domain.CacheStats{}, err
	}

	if oldest.Valid {
		if stats.Oldest, err = parseTime(oldest.String); err != nil {
			return domain.CacheStats{}, fmt.Errorf("reading audio cache stats: %w", err)
		}
	}
	if newest.Valid {
		if stats.Newest, err = parseTime(newest.String); err != nil {
			return domain.CacheStats{}, fmt.Errorf("reading audio cache stats: %w", err)
		}
	}
	return stats, nil
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
