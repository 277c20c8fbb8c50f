package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func TestPathProvider_Override(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	p := NewPathProvider(domain.EnvironmentDevelopment, dir)

	got, err := p.DataDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	dbPath, err := p.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFileName), dbPath)
}

func TestPathProvider_DevelopmentUsesProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0600))
	deep := filepath.Join(root, "internal", "pkg")
	require.NoError(t, os.MkdirAll(deep, 0700))

	p := NewPathProvider(domain.EnvironmentDevelopment, "")
	p.getwd = func() (string, error) { return deep, nil }

	got, err := p.DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data"), got)
}

func TestPathProvider_DevelopmentFallsBackToWorkingDir(t *testing.T) {
	wd := t.TempDir()

	p := NewPathProvider(domain.EnvironmentDevelopment, "")
	p.getwd = func() (string, error) { return wd, nil }

	got, err := p.DataDir()
	require.NoError(t, err)
	// A go.mod above the temp directory is not expected on test machines.
	assert.Equal(t, filepath.Join(wd, "data"), got)
}

func TestPathProvider_ProductionUsesExecutableDir(t *testing.T) {
	binDir := t.TempDir()
	exe := filepath.Join(binDir, "murmur")
	require.NoError(t, os.WriteFile(exe, []byte{}, 0700))

	p := NewPathProvider(domain.EnvironmentProduction, "")
	p.executable = func() (string, error) { return exe, nil }

	got, err := p.DataDir()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(binDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(want, "data"), got)
}

func TestPathProvider_ResolvesOnce(t *testing.T) {
	calls := 0
	wd := t.TempDir()
	p := NewPathProvider(domain.EnvironmentDevelopment, "")
	p.getwd = func() (string, error) {
		calls++
		return wd, nil
	}

	_, err := p.DataDir()
	require.NoError(t, err)
	_, err = p.DatabasePath()
	require.NoError(t, err)
	_, err = p.ConnectionString()
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestPathProvider_Errors(t *testing.T) {
	t.Run("unknown environment", func(t *testing.T) {
		p := NewPathProvider(domain.Environment("staging"), "")
		_, err := p.DataDir()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("working directory unavailable", func(t *testing.T) {
		p := NewPathProvider(domain.EnvironmentDevelopment, "")
		p.getwd = func() (string, error) { return "", errors.New("gone") }
		_, err := p.DatabasePath()
		assert.Error(t, err)
	})
}

func TestPathProvider_ConnectionString(t *testing.T) {
	dir := t.TempDir()
	p := NewPathProvider(domain.EnvironmentProduction, dir)

	plain, err := p.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFileName), plain)

	dsn, err := p.ConnectionString(pragma("busy_timeout", 250), pragma("query_only", 1))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, plain+"?"))
	assert.True(t, strings.HasSuffix(dsn, "_pragma=busy_timeout(250)&_pragma=query_only(1)"))
}
