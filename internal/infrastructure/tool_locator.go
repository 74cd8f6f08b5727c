package infrastructure

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// userBaseTimeout bounds the interpreter introspection query
const userBaseTimeout = 5 * time.Second

// UserBaseFunc reports the user-local installation prefix
type UserBaseFunc func(ctx context.Context) (string, error)

// ToolLocator resolves externally installed tools. Search order:
//  1. the configured name itself when it is a path
//  2. PATH
//  3. <user base>/bin, the prefix pip --user installs into
//  4. well-known installation directories, then configured extra dirs
type ToolLocator struct {
	knownDirs []string
	userBase  UserBaseFunc
	logger    *zap.Logger

	once         sync.Once
	userBaseDir  string
	userBaseSkip bool
}

// NewToolLocator creates a locator with the default user-base query
func NewToolLocator(cfg domain.ToolsConfig, logger *zap.Logger) *ToolLocator {
	return NewToolLocatorWith(append(DefaultToolDirs(), cfg.SearchDirs...), PythonUserBase, logger)
}

// NewToolLocatorWith creates a locator with explicit directories and user-base query.
// A nil userBase disables step 3.
func NewToolLocatorWith(knownDirs []string, userBase UserBaseFunc, logger *zap.Logger) *ToolLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolLocator{knownDirs: knownDirs, userBase: userBase, logger: logger}
}

// DefaultToolDirs returns the fixed list of known installation directories
func DefaultToolDirs() []string {
	dirs := []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"), filepath.Join(home, "go", "bin"))
	}
	return dirs
}

// Locate returns the path of the first match for name, or ErrToolNotFound
func (l *ToolLocator) Locate(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty tool name", domain.ErrToolNotFound)
	}

	if strings.ContainsRune(name, os.PathSeparator) {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	if dir := l.userBinDir(); dir != "" {
		candidate := filepath.Join(dir, executableName(name))
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	for _, dir := range l.knownDirs {
		candidate := filepath.Join(ExpandPath(dir), executableName(name))
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
}

// userBinDir queries the user base once per locator
func (l *ToolLocator) userBinDir() string {
	l.once.Do(func() {
		if l.userBase == nil {
			l.userBaseSkip = true
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), userBaseTimeout)
		defer cancel()
		base, err := l.userBase(ctx)
		if err != nil || base == "" {
			l.logger.Debug("User base lookup unavailable", zap.Error(err))
			l.userBaseSkip = true
			return
		}
		l.userBaseDir = filepath.Join(base, "bin")
	})
	if l.userBaseSkip {
		return ""
	}
	return l.userBaseDir
}

// PythonUserBase asks the Python runtime for its user-site prefix
func PythonUserBase(ctx context.Context) (string, error) {
	python, err := exec.LookPath("python3")
	if err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, python, "-m", "site", "--user-base").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}

func executableName(name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return name + ".exe"
	}
	return name
}

// ExpandPath expands environment variables and a leading ~ in paths
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
