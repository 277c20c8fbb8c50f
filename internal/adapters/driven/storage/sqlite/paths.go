package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// DatabaseFileName is the name of the database file inside the data directory.
const DatabaseFileName = "murmur.db"

// dataDirName is the directory holding the database in both environments.
const dataDirName = "data"

// PathProvider resolves the on-disk location of the database.
// Resolution happens once, on first use, and the result is reused for the
// lifetime of the provider.
type PathProvider struct {
	env      domain.Environment
	override string

	getwd      func() (string, error)
	executable func() (string, error)

	once sync.Once
	dir  string
	err  error
}

// NewPathProvider creates a provider for env.
// A non-empty dataDir takes precedence over the environment default.
func NewPathProvider(env domain.Environment, dataDir string) *PathProvider {
	return &PathProvider{
		env:        env,
		override:   dataDir,
		getwd:      os.Getwd,
		executable: os.Executable,
	}
}

// DataDir returns the data directory, creating it if needed.
func (p *PathProvider) DataDir() (string, error) {
	p.once.Do(func() {
		p.dir, p.err = p.resolve()
		if p.err != nil {
			return
		}
		if err := os.MkdirAll(p.dir, 0700); err != nil {
			p.err = fmt.Errorf("creating data directory: %w", err)
		}
	})
	return p.dir, p.err
}

// DatabasePath returns the full path of the database file.
func (p *PathProvider) DatabasePath() (string, error) {
	dir, err := p.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFileName), nil
}

// ConnectionString returns the driver DSN for the database file with the
// given query parameters (e.g. "_pragma=query_only(1)") appended in order.
func (p *PathProvider) ConnectionString(params ...string) (string, error) {
	path, err := p.DatabasePath()
	if err != nil {
		return "", err
	}
	if len(params) == 0 {
		return path, nil
	}
	return path + "?" + strings.Join(params, "&"), nil
}

func (p *PathProvider) resolve() (string, error) {
	if p.override != "" {
		return filepath.Abs(p.override)
	}

	switch p.env {
	case domain.EnvironmentDevelopment:
		wd, err := p.getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		return filepath.Join(projectRoot(wd), dataDirName), nil
	case domain.EnvironmentProduction, "":
		exe, err := p.executable()
		if err != nil {
			return "", fmt.Errorf("locating executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Join(filepath.Dir(exe), dataDirName), nil
	default:
		return "", fmt.Errorf("%w: unknown environment %q", domain.ErrInvalidInput, p.env)
	}
}

// projectRoot walks up from dir to the nearest directory holding go.mod.
// Falls back to dir itself.
func projectRoot(dir string) string {
	for current := dir; ; {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// pragma formats a modernc.org/sqlite DSN pragma parameter.
func pragma(name string, value any) string {
	return fmt.Sprintf("_pragma=%s(%v)", name, value)
}
