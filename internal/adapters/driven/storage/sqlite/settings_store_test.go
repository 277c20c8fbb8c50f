package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func TestSettingsStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	store.now = func() time.Time { return fixed }

	settings, err := store.Settings().Get(ctx)
	require.NoError(t, err)

	settings.Topmost = true
	settings.DarkTheme = true
	settings.AnimationsEnabled = false
	require.NoError(t, store.Settings().Save(ctx, settings))
	assert.Equal(t, fixed, settings.UpdatedAt)

	got, err := store.Settings().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestSettingsStore_SaveWithoutID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	settings := domain.DefaultAppSettings()
	settings.DarkTheme = true
	require.NoError(t, store.Settings().Save(ctx, &settings))
	assert.NotZero(t, settings.ID)

	got, err := store.Settings().Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.DarkTheme)
	assert.Equal(t, int64(1), queryInt(t, store, `SELECT COUNT(*) FROM AppSettings`))
}

func TestSettingsStore_SaveUnknownID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.Settings().Save(context.Background(), &domain.AppSettings{ID: 42})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettingsStore_Nil(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.Settings().Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsStore_GetBeforeSeed(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	execRaw(t, store, `DELETE FROM AppSettings`)

	_, err := store.Settings().Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
