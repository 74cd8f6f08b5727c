package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// TextSummaryWriter writes a plain-text summary of a video's metadata
type TextSummaryWriter struct{}

// NewTextSummaryWriter creates a new summary writer
func NewTextSummaryWriter() *TextSummaryWriter {
	return &TextSummaryWriter{}
}

// WriteSummary renders meta and writes it to path, replacing any previous file
func (w *TextSummaryWriter) WriteSummary(meta *domain.VideoMetadata, url, path string) error {
	if meta == nil {
		return fmt.Errorf("no metadata to summarise")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(RenderSummary(meta, url)), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// RenderSummary formats the summary text
func RenderSummary(meta *domain.VideoMetadata, url string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:    %s\n", meta.Title)
	fmt.Fprintf(&b, "Uploader: %s\n", orNA(meta.Uploader))
	fmt.Fprintf(&b, "Uploaded: %s\n", formatUploadDate(meta.UploadDate))
	fmt.Fprintf(&b, "Views:    %s\n", humanize.Comma(meta.ViewCount))
	fmt.Fprintf(&b, "Duration: %s\n", FormatDuration(meta.Duration))
	fmt.Fprintf(&b, "URL:      %s\n", url)
	if meta.WebpageURL != "" && meta.WebpageURL != url {
		fmt.Fprintf(&b, "Page:     %s\n", meta.WebpageURL)
	}
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		b.WriteString("\nDescription:\n")
		b.WriteString(desc)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatDuration renders seconds as H:MM:SS, or N/A when unknown
func FormatDuration(seconds *float64) string {
	if seconds == nil || *seconds < 0 {
		return "N/A"
	}
	total := int64(*seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// formatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD
func formatUploadDate(raw string) string {
	if raw == "" {
		return "N/A"
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
