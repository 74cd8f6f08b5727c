package domain

import (
	"context"
	"path/filepath"
)

// MetadataSource retrieves full metadata for a source URL
type MetadataSource interface {
	FetchMetadata(ctx context.Context, url string) (*VideoMetadata, error)
}

// ContentFetcher downloads one chosen format and returns the local file path
type ContentFetcher interface {
	Download(ctx context.Context, url, formatID string, layout OutputLayout) (string, error)
}

// SnapshotExtractor samples frames from a video into an ordered image list
type SnapshotExtractor interface {
	Extract(ctx context.Context, videoPath, snapshotDir string, interval int) ([]string, error)
}

// DocumentAssembler concatenates ordered images into one document
type DocumentAssembler interface {
	Assemble(images []string, outputPath string) error
}

// SummaryWriter writes the plain-text summary for a video
type SummaryWriter interface {
	WriteSummary(meta *VideoMetadata, url, path string) error
}

// Chooser resolves which option to download when more than one exists
type Chooser interface {
	Choose(ctx context.Context, meta *VideoMetadata, sel Selection) (SelectionOption, error)
}

// ProgressIndicator shows activity while fn blocks. Implementations must have
// stopped all rendering by the time Track returns.
type ProgressIndicator interface {
	Track(ctx context.Context, message string, fn func(ctx context.Context) error) error
}

// OutputLayout describes where one run writes its artifacts
type OutputLayout struct {
	Folder       string
	Stem         string
	SnapshotDir  string
	DocumentPath string
	SummaryPath  string
}

// VideoTemplate returns the yt-dlp output template for the video file
func (l OutputLayout) VideoTemplate() string {
	return filepath.Join(l.Folder, l.Stem+".%(ext)s")
}

// VideoPath returns the final video path for a container extension
func (l OutputLayout) VideoPath(ext string) string {
	return filepath.Join(l.Folder, l.Stem+"."+ext)
}
