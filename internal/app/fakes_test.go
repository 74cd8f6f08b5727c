package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// fakeYTDLP scripts per-profile outcomes and records every call
type fakeYTDLP struct {
	mu         sync.Mutex
	resolveErr error

	metadata     map[domain.ClientProfile]*domain.VideoMetadata
	probeExt     map[domain.ClientProfile]string
	transferErr  error
	transferExt  string
	skipTransfer bool

	metadataCalls []domain.ClientProfile
	probeCalls    []domain.ClientProfile
	transfers     []transferCall
}

type transferCall struct {
	profile  domain.ClientProfile
	formatID string
	template string
}

var errBlocked = errors.New("HTTP Error 403: Forbidden")

func (f *fakeYTDLP) Resolve() (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "/usr/local/bin/yt-dlp", nil
}

func (f *fakeYTDLP) QueryMetadata(ctx context.Context, path string, profile domain.ClientProfile, url string) (*domain.VideoMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadataCalls = append(f.metadataCalls, profile)
	if meta, ok := f.metadata[profile]; ok {
		return meta, nil
	}
	return nil, errBlocked
}

func (f *fakeYTDLP) ProbeFormat(ctx context.Context, path string, profile domain.ClientProfile, url, formatID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls = append(f.probeCalls, profile)
	if ext, ok := f.probeExt[profile]; ok {
		return ext, nil
	}
	return "", errBlocked
}

func (f *fakeYTDLP) Transfer(ctx context.Context, path string, profile domain.ClientProfile, url, formatID, template string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, transferCall{profile: profile, formatID: formatID, template: template})
	if f.transferErr != nil {
		return f.transferErr
	}
	if f.skipTransfer {
		return nil
	}
	ext := f.transferExt
	if ext == "" {
		ext = f.probeExt[profile]
	}
	return os.WriteFile(strings.Replace(template, "%(ext)s", ext, 1), []byte("video"), 0644)
}

// recordingIndicator records the messages it was asked to track
type recordingIndicator struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingIndicator) Track(ctx context.Context, message string, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
	return fn(ctx)
}

func sampleMetadata(title string) *domain.VideoMetadata {
	duration := 125.0
	return &domain.VideoMetadata{
		ID:         "abc",
		Title:      title,
		Duration:   &duration,
		WebpageURL: "https://www.youtube.com/watch?v=abc",
		Formats: []domain.FormatDescriptor{
			{FormatID: "22", Ext: "mp4", Resolution: "1280x720", Size: 50 << 20, HasSize: true, VCodec: "avc1", ACodec: "mp4a"},
			{FormatID: "18", Ext: "mp4", Resolution: "640x360", Size: 3 << 20, HasSize: true, VCodec: "avc1", ACodec: "mp4a"},
		},
	}
}
