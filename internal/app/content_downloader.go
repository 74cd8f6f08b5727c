package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
)

// ContentDownloader downloads one chosen format. It finds a working profile
// for that format with a probe before transferring, independently of the
// profile that served the metadata.
type ContentDownloader struct {
	ytdlp    YTDLP
	profiles []domain.ClientProfile
	progress domain.ProgressIndicator
	logger   *zap.Logger
}

// NewContentDownloader creates a new content downloader
func NewContentDownloader(ytdlp YTDLP, progress domain.ProgressIndicator, logger *zap.Logger) *ContentDownloader {
	if progress == nil {
		progress = infrastructure.NoopIndicator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentDownloader{
		ytdlp:    ytdlp,
		profiles: domain.ClientProfiles(),
		progress: progress,
		logger:   logger,
	}
}

type probeResult struct {
	ext string
}

// Download fetches formatID into layout and returns the video file path
func (d *ContentDownloader) Download(ctx context.Context, url, formatID string, layout domain.OutputLayout) (string, error) {
	path, err := d.ytdlp.Resolve()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(layout.Folder, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create output folder: %v", domain.ErrDownloadFailed, err)
	}

	var probe probeResult
	var profile domain.ClientProfile
	err = d.progress.Track(ctx, "Checking access to format "+formatID, func(ctx context.Context) error {
		var err error
		probe, profile, err = TryProfiles(ctx, d.profiles, d.logger, func(ctx context.Context, p domain.ClientProfile) (probeResult, error) {
			ext, err := d.ytdlp.ProbeFormat(ctx, path, p, url, formatID)
			return probeResult{ext: ext}, err
		})
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: format %s: %v", domain.ErrNoWorkingClient, formatID, err)
	}

	d.logger.Info("Starting download",
		zap.String("profile", string(profile)),
		zap.String("format_id", formatID),
		zap.String("folder", layout.Folder))

	err = d.progress.Track(ctx, "Downloading", func(ctx context.Context) error {
		return d.ytdlp.Transfer(ctx, path, profile, url, formatID, layout.VideoTemplate())
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	videoPath, err := locateVideo(layout, probe.ext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	d.logger.Info("Download completed", zap.String("path", videoPath))
	return videoPath, nil
}

// locateVideo returns the expected output path, or the single finished file
// sharing the stem when yt-dlp chose a different container.
func locateVideo(layout domain.OutputLayout, ext string) (string, error) {
	expected := layout.VideoPath(ext)
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}

	matches, err := filepath.Glob(filepath.Join(layout.Folder, layout.Stem+".*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if strings.HasSuffix(m, ".part") || strings.HasSuffix(m, ".ytdl") {
			continue
		}
		return m, nil
	}
	return "", fmt.Errorf("output file not found: %s", expected)
}
