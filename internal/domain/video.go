package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VideoMetadata represents the information yt-dlp reports for one video.
// It is treated as immutable once parsed.
type VideoMetadata struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Duration    *float64           `json:"duration,omitempty"` // seconds
	Uploader    string             `json:"uploader"`
	UploadDate  string             `json:"upload_date"` // YYYYMMDD
	ViewCount   int64              `json:"view_count"`
	Description string             `json:"description"`
	WebpageURL  string             `json:"webpage_url"`
	Formats     []FormatDescriptor `json:"formats"`
}

// FormatDescriptor represents one encoding variant offered by the source
type FormatDescriptor struct {
	FormatID    string `json:"format_id"`
	Ext         string `json:"ext"`
	Resolution  string `json:"resolution"`
	Size        int64  `json:"size"`
	HasSize     bool   `json:"has_size"`
	Approximate bool   `json:"approximate"`
	VCodec      string `json:"vcodec"`
	ACodec      string `json:"acodec"`
}

// Eligible reports whether the variant carries both a video and an audio stream.
func (f FormatDescriptor) Eligible() bool {
	return codecPresent(f.VCodec) && codecPresent(f.ACodec)
}

func codecPresent(codec string) bool {
	return codec != "" && codec != "none"
}

// DefaultTitle is used when the source reports no title.
const DefaultTitle = "youtube_video"

// ytdlpInfo mirrors the subset of `yt-dlp -j` output we consume.
type ytdlpInfo struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Duration    *float64      `json:"duration"`
	Uploader    string        `json:"uploader"`
	UploadDate  string        `json:"upload_date"`
	ViewCount   *float64      `json:"view_count"`
	Description string        `json:"description"`
	WebpageURL  string        `json:"webpage_url"`
	Ext         string        `json:"ext"`
	Formats     []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	Resolution     string   `json:"resolution"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
}

// ParseVideoMetadata parses a single JSON object emitted by `yt-dlp -j`.
func ParseVideoMetadata(data []byte) (*VideoMetadata, error) {
	info, err := decodeInfo(data)
	if err != nil {
		return nil, err
	}

	title := info.Title
	if title == "" {
		title = DefaultTitle
	}

	meta := &VideoMetadata{
		ID:          info.ID,
		Title:       title,
		Duration:    info.Duration,
		Uploader:    info.Uploader,
		UploadDate:  info.UploadDate,
		Description: info.Description,
		WebpageURL:  info.WebpageURL,
		Formats:     make([]FormatDescriptor, 0, len(info.Formats)),
	}
	if info.ViewCount != nil {
		meta.ViewCount = int64(*info.ViewCount)
	}

	for _, f := range info.Formats {
		desc := FormatDescriptor{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Resolution: f.Resolution,
		}
		if desc.Resolution == "" {
			desc.Resolution = "N/A"
		}
		if f.VCodec != nil {
			desc.VCodec = *f.VCodec
		}
		if f.ACodec != nil {
			desc.ACodec = *f.ACodec
		}
		// A zero filesize is as good as unknown.
		switch {
		case f.Filesize != nil && *f.Filesize > 0:
			desc.Size, desc.HasSize = int64(*f.Filesize), true
		case f.FilesizeApprox != nil && *f.FilesizeApprox > 0:
			desc.Size, desc.HasSize, desc.Approximate = int64(*f.FilesizeApprox), true, true
		}
		meta.Formats = append(meta.Formats, desc)
	}

	return meta, nil
}

// ParseFormatExt extracts the container extension from a format-specific
// `yt-dlp -j -f ID` response, falling back to mp4.
func ParseFormatExt(data []byte) (string, error) {
	info, err := decodeInfo(data)
	if err != nil {
		return "", err
	}
	if info.Ext == "" {
		return "mp4", nil
	}
	return info.Ext, nil
}

func decodeInfo(data []byte) (*ytdlpInfo, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object from yt-dlp")
	}
	var info ytdlpInfo
	if err := json.Unmarshal(trimmed, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	return &info, nil
}
