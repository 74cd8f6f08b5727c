package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// fakeFFmpeg writes the given number of frames next to its output pattern
const fakeFFmpeg = `#!/bin/sh
for last; do :; done
dir=$(dirname "$last")
i=1
while [ $i -le ${FRAMES:-3} ]; do
  touch "$dir/$(printf 'screenshot_%04d.png' $i)"
  i=$((i+1))
done
`

func newTestExtractor(t *testing.T, script string) (*FFmpegExtractor, string) {
	t.Helper()
	tmp := t.TempDir()
	stub := writeStub(t, filepath.Join(tmp, "bin"), "ffmpeg", script)
	extractor := NewFFmpegExtractor("ffmpeg", staticLocator{"ffmpeg": stub}, NewExecRunner("", nil), nil)
	return extractor, tmp
}

func TestFFmpegExtractor_Command(t *testing.T) {
	extractor := NewFFmpegExtractor("", staticLocator{}, &fakeRunner{}, nil)

	cmd := extractor.Command("/usr/bin/ffmpeg", "/v/in.mp4", "/v/screenshots", 10)

	assert.Equal(t, []string{"-y", "-i", "/v/in.mp4", "-vf", "fps=1/10", "/v/screenshots/screenshot_%04d.png"}, cmd.Args)
}

func TestFFmpegExtractor_Extract(t *testing.T) {
	t.Setenv("FRAMES", "3")
	extractor, tmp := newTestExtractor(t, fakeFFmpeg)
	dir := filepath.Join(tmp, "out", "screenshots")

	images, err := extractor.Extract(context.Background(), filepath.Join(tmp, "in.mp4"), dir, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "screenshot_0001.png"),
		filepath.Join(dir, "screenshot_0002.png"),
		filepath.Join(dir, "screenshot_0003.png"),
	}, images)
}

func TestFFmpegExtractor_RemovesStaleSnapshots(t *testing.T) {
	t.Setenv("FRAMES", "2")
	extractor, tmp := newTestExtractor(t, fakeFFmpeg)
	dir := filepath.Join(tmp, "screenshots")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range []string{"screenshot_0001.png", "screenshot_0009.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("old"), 0644))
	}

	images, err := extractor.Extract(context.Background(), "in.mp4", dir, 5)

	require.NoError(t, err)
	assert.Len(t, images, 2)
	assert.NoFileExists(t, filepath.Join(dir, "screenshot_0009.png"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestFFmpegExtractor_NoSnapshots(t *testing.T) {
	t.Setenv("FRAMES", "0")
	extractor, tmp := newTestExtractor(t, fakeFFmpeg)

	_, err := extractor.Extract(context.Background(), "in.mp4", filepath.Join(tmp, "screenshots"), 5)

	assert.ErrorIs(t, err, domain.ErrNoSnapshots)
}

func TestFFmpegExtractor_ToolFailure(t *testing.T) {
	extractor, tmp := newTestExtractor(t, "#!/bin/sh\necho 'Invalid data found' >&2\nexit 1\n")

	_, err := extractor.Extract(context.Background(), "in.mp4", filepath.Join(tmp, "screenshots"), 5)

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestFFmpegExtractor_MissingTool(t *testing.T) {
	extractor := NewFFmpegExtractor("ffmpeg", staticLocator{}, &fakeRunner{}, nil)

	_, err := extractor.Extract(context.Background(), "in.mp4", t.TempDir(), 5)

	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestFFmpegExtractor_InvalidInterval(t *testing.T) {
	runner := &fakeRunner{}
	extractor := NewFFmpegExtractor("ffmpeg", staticLocator{"ffmpeg": "/bin/ffmpeg"}, runner, nil)

	_, err := extractor.Extract(context.Background(), "in.mp4", t.TempDir(), 0)

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Empty(t, runner.commands)
}
