package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
)

// MetadataFetcher retrieves video metadata, falling back across client profiles
type MetadataFetcher struct {
	ytdlp    YTDLP
	profiles []domain.ClientProfile
	progress domain.ProgressIndicator
	logger   *zap.Logger
}

// NewMetadataFetcher creates a new metadata fetcher. A nil progress indicator
// renders nothing.
func NewMetadataFetcher(ytdlp YTDLP, progress domain.ProgressIndicator, logger *zap.Logger) *MetadataFetcher {
	if progress == nil {
		progress = infrastructure.NoopIndicator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataFetcher{
		ytdlp:    ytdlp,
		profiles: domain.ClientProfiles(),
		progress: progress,
		logger:   logger,
	}
}

// FetchMetadata returns metadata from the first profile that answers
func (f *MetadataFetcher) FetchMetadata(ctx context.Context, url string) (*domain.VideoMetadata, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrMetadataUnavailable)
	}

	path, err := f.ytdlp.Resolve()
	if err != nil {
		return nil, err
	}

	var meta *domain.VideoMetadata
	err = f.progress.Track(ctx, "Fetching video info", func(ctx context.Context) error {
		var profile domain.ClientProfile
		var err error
		meta, profile, err = TryProfiles(ctx, f.profiles, f.logger, func(ctx context.Context, p domain.ClientProfile) (*domain.VideoMetadata, error) {
			return f.ytdlp.QueryMetadata(ctx, path, p, url)
		})
		if err == nil {
			f.logger.Info("Metadata fetched",
				zap.String("profile", string(profile)),
				zap.String("title", meta.Title),
				zap.Int("formats", len(meta.Formats)))
		}
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}

	return meta, nil
}
