package app

import (
	"context"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// YTDLP is the per-profile yt-dlp surface the fetch stages depend on
type YTDLP interface {
	Resolve() (string, error)
	QueryMetadata(ctx context.Context, path string, profile domain.ClientProfile, url string) (*domain.VideoMetadata, error)
	ProbeFormat(ctx context.Context, path string, profile domain.ClientProfile, url, formatID string) (string, error)
	Transfer(ctx context.Context, path string, profile domain.ClientProfile, url, formatID, template string) error
}
