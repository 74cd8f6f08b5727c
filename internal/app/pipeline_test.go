package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
)

type fakeMetadataSource struct {
	meta  *domain.VideoMetadata
	err   error
	calls int
}

func (f *fakeMetadataSource) FetchMetadata(ctx context.Context, url string) (*domain.VideoMetadata, error) {
	f.calls++
	return f.meta, f.err
}

type fakeFetcher struct {
	formatID string
	err      error
	calls    int
}

func (f *fakeFetcher) Download(ctx context.Context, url, formatID string, layout domain.OutputLayout) (string, error) {
	f.calls++
	f.formatID = formatID
	if f.err != nil {
		return "", f.err
	}
	return layout.VideoPath("mp4"), nil
}

type fakeExtractor struct {
	images []string
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath, snapshotDir string, interval int) ([]string, error) {
	return f.images, f.err
}

type fakeAssembler struct {
	calls  int
	images []string
	err    error
}

func (f *fakeAssembler) Assemble(images []string, outputPath string) error {
	f.calls++
	f.images = images
	return f.err
}

type fakeSummary struct{ err error }

func (f fakeSummary) WriteSummary(meta *domain.VideoMetadata, url, path string) error { return f.err }

type fakeChooser struct {
	category domain.OptionCategory
	err      error
	calls    int
}

func (f *fakeChooser) Choose(ctx context.Context, meta *domain.VideoMetadata, sel domain.Selection) (domain.SelectionOption, error) {
	f.calls++
	if f.err != nil {
		return domain.SelectionOption{}, f.err
	}
	opt, _ := sel.Find(f.category)
	return opt, nil
}

type fakeNotifier struct {
	completed []string
	failed    []error
}

func (f *fakeNotifier) NotifyRunCompleted(ctx context.Context, title string) {
	f.completed = append(f.completed, title)
}

func (f *fakeNotifier) NotifyRunFailed(ctx context.Context, url string, err error) {
	f.failed = append(f.failed, err)
}

type fakeLock struct {
	err      error
	released bool
}

func (f *fakeLock) Acquire() error { return f.err }
func (f *fakeLock) Release()       { f.released = true }

type pipelineFixture struct {
	metadata  *fakeMetadataSource
	fetcher   *fakeFetcher
	extractor *fakeExtractor
	assembler *fakeAssembler
	notifier  *fakeNotifier
	progress  *recordingIndicator
	states    []domain.RunState
	deps      PipelineDeps
}

func newPipelineFixture(t *testing.T, meta *domain.VideoMetadata) *pipelineFixture {
	base := t.TempDir()
	f := &pipelineFixture{
		metadata:  &fakeMetadataSource{meta: meta},
		fetcher:   &fakeFetcher{},
		extractor: &fakeExtractor{images: []string{"a.png", "b.png"}},
		assembler: &fakeAssembler{},
		notifier:  &fakeNotifier{},
		progress:  &recordingIndicator{},
	}
	f.deps = PipelineDeps{
		Metadata:   f.metadata,
		Selector:   domain.NewFormatSelector(domain.SelectionConfig{}),
		Downloader: f.fetcher,
		Extractor:  f.extractor,
		Assembler:  f.assembler,
		Layout: func(title string) domain.OutputLayout {
			return infrastructure.NewOutputLayout(base, title, 50)
		},
		Summary:  fakeSummary{},
		Progress: f.progress,
		Notifier: f.notifier,
	}
	return f
}

func (f *pipelineFixture) pipeline() *Pipeline {
	p := NewPipeline(f.deps, nil)
	p.OnUpdate(func(run domain.PipelineRun) {
		if len(f.states) == 0 || f.states[len(f.states)-1] != run.State {
			f.states = append(f.states, run.State)
		}
	})
	return p
}

func TestPipeline_FullRunWithChoice(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("My Talk"))
	chooser := &fakeChooser{category: domain.CategoryCompact}
	run := domain.NewPipelineRun("https://youtu.be/abc", 10)

	err := f.pipeline().Execute(context.Background(), run, chooser)

	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, run.State)
	assert.Equal(t, []domain.RunState{
		domain.StateFetchingMetadata,
		domain.StateSelectingFormat,
		domain.StateAwaitingChoice,
		domain.StateDownloading,
		domain.StateExtracting,
		domain.StateAssembling,
		domain.StateDone,
	}, f.states)
	assert.Equal(t, 1, chooser.calls)
	assert.Equal(t, "18", f.fetcher.formatID)
	require.NotNil(t, run.Choice)
	assert.Equal(t, domain.CategoryCompact, run.Choice.Category)
	assert.Equal(t, []string{"a.png", "b.png"}, f.assembler.images)
	assert.Equal(t, "My Talk_screenshots.pdf", filepath.Base(run.DocumentPath))
	assert.Equal(t, "My Talk_summary.txt", filepath.Base(run.SummaryPath))
	assert.Equal(t, "My Talk.mp4", filepath.Base(run.VideoPath))
	assert.NotNil(t, run.CompletedAt)
	require.NotNil(t, run.Selection.EstimatedDocumentKB)
	assert.Equal(t, int64(12*200), *run.Selection.EstimatedDocumentKB)
	assert.Equal(t, []string{"My Talk"}, f.notifier.completed)
	assert.Equal(t, []string{"Taking screenshots", "Creating PDF"}, f.progress.messages)
}

func TestPipeline_SingleOptionSkipsChoice(t *testing.T) {
	meta := sampleMetadata("Short")
	meta.Formats = meta.Formats[1:]
	f := newPipelineFixture(t, meta)
	chooser := &fakeChooser{category: domain.CategoryCompact}
	run := domain.NewPipelineRun("u", 10)

	require.NoError(t, f.pipeline().Execute(context.Background(), run, chooser))

	assert.Zero(t, chooser.calls)
	assert.NotContains(t, f.states, domain.StateAwaitingChoice)
	assert.Equal(t, "18", f.fetcher.formatID)
}

func TestPipeline_DefaultsToOriginalWithoutChooser(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("Talk"))
	run := domain.NewPipelineRun("u", 10)

	require.NoError(t, f.pipeline().Execute(context.Background(), run, nil))

	assert.Equal(t, "22", f.fetcher.formatID)
}

func TestPipeline_NoDownloadableFormat(t *testing.T) {
	meta := sampleMetadata("Audio only")
	for i := range meta.Formats {
		meta.Formats[i].VCodec = "none"
	}
	f := newPipelineFixture(t, meta)
	run := domain.NewPipelineRun("u", 10)

	err := f.pipeline().Execute(context.Background(), run, nil)

	assert.ErrorIs(t, err, domain.ErrNoDownloadableFormat)
	assert.Equal(t, domain.StateFailed, run.State)
	assert.Zero(t, f.fetcher.calls)
	require.Len(t, f.notifier.failed, 1)
}

func TestPipeline_OperatorCancels(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("Talk"))
	run := domain.NewPipelineRun("u", 10)

	err := f.pipeline().Execute(context.Background(), run, &fakeChooser{err: domain.ErrCancelled})

	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, domain.StateFailed, run.State)
	assert.Zero(t, f.fetcher.calls, "download never starts before a choice")
	assert.Empty(t, f.notifier.failed)
}

func TestPipeline_NoSnapshotsSkipsAssembly(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("Talk"))
	f.extractor.images = nil
	f.extractor.err = domain.ErrNoSnapshots
	run := domain.NewPipelineRun("u", 10)

	err := f.pipeline().Execute(context.Background(), run, nil)

	assert.ErrorIs(t, err, domain.ErrNoSnapshots)
	assert.Zero(t, f.assembler.calls)
	assert.Empty(t, run.DocumentPath)
	assert.NotEmpty(t, run.VideoPath, "downloaded video is left in place")
}

func TestPipeline_StageErrorsFailTheRun(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *pipelineFixture)
		wantErr error
	}{
		{"metadata", func(f *pipelineFixture) { f.metadata.err = domain.ErrMetadataUnavailable }, domain.ErrMetadataUnavailable},
		{"download", func(f *pipelineFixture) { f.fetcher.err = domain.ErrNoWorkingClient }, domain.ErrNoWorkingClient},
		{"assembly", func(f *pipelineFixture) { f.assembler.err = domain.ErrAssemblyFailed }, domain.ErrAssemblyFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t, sampleMetadata("Talk"))
			tt.mutate(f)
			run := domain.NewPipelineRun("u", 10)

			err := f.pipeline().Execute(context.Background(), run, nil)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.StateFailed, run.State)
			assert.NotEmpty(t, run.ErrorMessage)
			assert.Equal(t, domain.StateFailed, f.states[len(f.states)-1])
		})
	}
}

func TestPipeline_SummaryFailureIsNotFatal(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("Talk"))
	f.deps.Summary = fakeSummary{err: errors.New("disk full")}
	run := domain.NewPipelineRun("u", 10)

	require.NoError(t, f.pipeline().Execute(context.Background(), run, nil))

	assert.Equal(t, domain.StateDone, run.State)
	assert.Empty(t, run.SummaryPath)
}

func TestPipeline_LockHeld(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("Talk"))
	f.deps.Lock = &fakeLock{err: domain.ErrRunInProgress}
	run := domain.NewPipelineRun("u", 10)

	err := f.pipeline().Execute(context.Background(), run, nil)

	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.Zero(t, f.metadata.calls)
}

func TestPipeline_ReleasesLock(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("Talk"))
	lock := &fakeLock{}
	f.deps.Lock = lock

	require.NoError(t, f.pipeline().Execute(context.Background(), domain.NewPipelineRun("u", 10), nil))
	assert.True(t, lock.released)
}

func TestPipeline_InvalidInput(t *testing.T) {
	f := newPipelineFixture(t, sampleMetadata("Talk"))

	err := f.pipeline().Execute(context.Background(), domain.NewPipelineRun("u", 0), nil)
	assert.Error(t, err)

	err = f.pipeline().Execute(context.Background(), domain.NewPipelineRun("", 10), nil)
	assert.Error(t, err)
	assert.Zero(t, f.metadata.calls)
}

func TestAutoChooser(t *testing.T) {
	sel := domain.NewFormatSelector(domain.SelectionConfig{}).Select(sampleMetadata("x").Formats, nil, 10)

	opt, err := AutoChooser{Category: domain.CategoryCompact}.Choose(context.Background(), nil, sel)
	require.NoError(t, err)
	assert.Equal(t, "18", opt.FormatID)

	single := domain.Selection{Options: sel.Options[:1]}
	opt, err = AutoChooser{Category: domain.CategoryCompact}.Choose(context.Background(), nil, single)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOriginal, opt.Category)

	_, err = AutoChooser{Category: domain.CategoryOriginal}.Choose(context.Background(), nil, domain.Selection{})
	assert.ErrorIs(t, err, domain.ErrNoDownloadableFormat)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOriginal, c)

	c, err = ParseCategory(" Compact ")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCompact, c)

	_, err = ParseCategory("smallest")
	assert.Error(t, err)
}
