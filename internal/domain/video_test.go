package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInfo = `{
  "id": "dQw4w9WgXcQ",
  "title": "Sample Video",
  "duration": 212.0,
  "uploader": "Uploader",
  "upload_date": "20091025",
  "view_count": 1500000000,
  "description": "desc",
  "webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
  "formats": [
    {"format_id": "18", "ext": "mp4", "resolution": "640x360", "filesize": 12345678, "vcodec": "avc1.42001E", "acodec": "mp4a.40.2"},
    {"format_id": "22", "ext": "mp4", "resolution": "1280x720", "filesize": null, "filesize_approx": 45678901.5, "vcodec": "avc1.64001F", "acodec": "mp4a.40.2"},
    {"format_id": "140", "ext": "m4a", "resolution": "audio only", "filesize": 3456789, "vcodec": "none", "acodec": "mp4a.40.2"},
    {"format_id": "sb0", "ext": "mhtml", "vcodec": "none"}
  ]
}`

func TestParseVideoMetadata(t *testing.T) {
	meta, err := ParseVideoMetadata([]byte(sampleInfo))
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", meta.ID)
	assert.Equal(t, "Sample Video", meta.Title)
	require.NotNil(t, meta.Duration)
	assert.Equal(t, 212.0, *meta.Duration)
	assert.Equal(t, int64(1500000000), meta.ViewCount)
	assert.Equal(t, "20091025", meta.UploadDate)
	require.Len(t, meta.Formats, 4)

	exact := meta.Formats[0]
	assert.True(t, exact.HasSize)
	assert.False(t, exact.Approximate)
	assert.Equal(t, int64(12345678), exact.Size)
	assert.True(t, exact.Eligible())

	approx := meta.Formats[1]
	assert.True(t, approx.HasSize)
	assert.True(t, approx.Approximate)
	assert.Equal(t, int64(45678901), approx.Size)

	assert.False(t, meta.Formats[2].Eligible())

	storyboard := meta.Formats[3]
	assert.False(t, storyboard.HasSize)
	assert.False(t, storyboard.Eligible())
	assert.Equal(t, "N/A", storyboard.Resolution)
}

func TestParseVideoMetadata_DefaultTitle(t *testing.T) {
	meta, err := ParseVideoMetadata([]byte(`{"id": "x", "formats": []}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, meta.Title)
	assert.Nil(t, meta.Duration)
	assert.Empty(t, meta.Formats)
}

func TestParseVideoMetadata_Malformed(t *testing.T) {
	inputs := map[string]string{
		"empty":          "",
		"not json":       "ERROR: Sign in to confirm you're not a bot",
		"array":          `[{"id": "x"}]`,
		"null":           "null",
		"truncated":      `{"id": "x", "formats": [`,
		"several values": "{\"id\": \"a\"}\n{\"id\": \"b\"}",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseVideoMetadata([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParseFormatExt(t *testing.T) {
	ext, err := ParseFormatExt([]byte(`{"id": "x", "ext": "webm"}`))
	require.NoError(t, err)
	assert.Equal(t, "webm", ext)

	ext, err = ParseFormatExt([]byte(`{"id": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, "mp4", ext)

	_, err = ParseFormatExt([]byte("garbage"))
	assert.Error(t, err)
}

func TestFormatDescriptor_Eligible(t *testing.T) {
	tests := []struct {
		name     string
		vcodec   string
		acodec   string
		expected bool
	}{
		{"both present", "vp9", "opus", true},
		{"video none", "none", "opus", false},
		{"audio none", "vp9", "none", false},
		{"video missing", "", "opus", false},
		{"audio missing", "vp9", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FormatDescriptor{VCodec: tt.vcodec, ACodec: tt.acodec}
			assert.Equal(t, tt.expected, f.Eligible())
		})
	}
}

func TestOutputLayout_Paths(t *testing.T) {
	layout := OutputLayout{Folder: "/tmp/out/My Video", Stem: "My Video"}

	assert.Equal(t, "/tmp/out/My Video/My Video.%(ext)s", layout.VideoTemplate())
	assert.Equal(t, "/tmp/out/My Video/My Video.webm", layout.VideoPath("webm"))
}
