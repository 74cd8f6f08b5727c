package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

const (
	snapshotPattern = "screenshot_%04d.png"
	snapshotGlob    = "screenshot_*.png"
)

// FFmpegExtractor samples one frame every interval seconds with ffmpeg
type FFmpegExtractor struct {
	binary  string
	locator Locator
	runner  CommandRunner
	logger  *zap.Logger
}

// NewFFmpegExtractor creates a new ffmpeg-backed snapshot extractor
func NewFFmpegExtractor(binary string, locator Locator, runner CommandRunner, logger *zap.Logger) *FFmpegExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegExtractor{binary: binary, locator: locator, runner: runner, logger: logger}
}

// Command builds the extraction invocation
func (e *FFmpegExtractor) Command(path, videoPath, snapshotDir string, interval int) Command {
	return NewCommand(path,
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%d", interval),
		filepath.Join(snapshotDir, snapshotPattern),
	)
}

// Extract writes snapshots into snapshotDir and returns them in capture order
func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath, snapshotDir string, interval int) ([]string, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %d", domain.ErrExtractionFailed, interval)
	}

	path, err := e.locator.Locate(e.binary)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create snapshot directory: %v", domain.ErrExtractionFailed, err)
	}
	if err := removeStaleSnapshots(snapshotDir); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	if _, err := e.runner.Run(ctx, e.Command(path, videoPath, snapshotDir, interval)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	images, err := ListSnapshots(snapshotDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSnapshots, snapshotDir)
	}

	e.logger.Info("Snapshots extracted",
		zap.String("dir", snapshotDir),
		zap.Int("count", len(images)))
	return images, nil
}

// ListSnapshots returns the snapshot files in dir in lexicographic order,
// which is capture order for the zero-padded pattern.
func ListSnapshots(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, snapshotGlob))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func removeStaleSnapshots(dir string) error {
	stale, err := ListSnapshots(dir)
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale snapshot: %w", err)
		}
	}
	return nil
}
