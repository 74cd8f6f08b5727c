package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// RunLockName is the lock file created in the download base directory
const RunLockName = ".vid2pdf.lock"

// RunLock keeps two processes from running pipelines into the same base
// directory at once.
type RunLock struct {
	path   string
	lock   *flock.Flock
	logger *zap.Logger
}

// NewRunLock creates a lock for baseDir
func NewRunLock(baseDir string, logger *zap.Logger) *RunLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	path := filepath.Join(ExpandPath(baseDir), RunLockName)
	return &RunLock{path: path, lock: flock.New(path), logger: logger}
}

// Path returns the lock file path
func (l *RunLock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking, or returns ErrRunInProgress
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: lock held at %s", domain.ErrRunInProgress, l.path)
	}
	l.logger.Debug("Run lock acquired", zap.String("lock", l.path))
	return nil
}

// Release drops the lock
func (l *RunLock) Release() {
	if err := l.lock.Unlock(); err != nil {
		l.logger.Warn("Failed to release run lock", zap.Error(err))
	}
}
