package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
)

// RunNotifier is told about finished runs
type RunNotifier interface {
	NotifyRunCompleted(ctx context.Context, title string)
	NotifyRunFailed(ctx context.Context, url string, err error)
}

// RunLocker guards a run against concurrent runs in other processes
type RunLocker interface {
	Acquire() error
	Release()
}

// LayoutFunc derives the output layout from a video title
type LayoutFunc func(title string) domain.OutputLayout

// PipelineDeps bundles the stages a pipeline drives
type PipelineDeps struct {
	Metadata   domain.MetadataSource
	Selector   domain.FormatSelector
	Downloader domain.ContentFetcher
	Extractor  domain.SnapshotExtractor
	Assembler  domain.DocumentAssembler
	Layout     LayoutFunc

	// Optional
	Summary  domain.SummaryWriter
	Progress domain.ProgressIndicator
	Notifier RunNotifier
	Lock     RunLocker
}

// Pipeline drives one run from URL to document
type Pipeline struct {
	deps     PipelineDeps
	logger   *zap.Logger
	onUpdate func(domain.PipelineRun)
}

// NewPipeline creates a new pipeline
func NewPipeline(deps PipelineDeps, logger *zap.Logger) *Pipeline {
	if deps.Progress == nil {
		deps.Progress = infrastructure.NoopIndicator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, logger: logger}
}

// OnUpdate registers a callback receiving a snapshot after every change to a run
func (p *Pipeline) OnUpdate(fn func(domain.PipelineRun)) {
	p.onUpdate = fn
}

// Execute runs every stage in order. chooser is consulted only when the
// selection offers more than one option. The run ends in Done or Failed.
func (p *Pipeline) Execute(ctx context.Context, run *domain.PipelineRun, chooser domain.Chooser) error {
	log := p.logger.With(zap.String("run_id", run.ID), zap.String("url", run.URL))

	if strings.TrimSpace(run.URL) == "" {
		return p.fail(ctx, log, run, fmt.Errorf("url is required"))
	}
	if run.Interval <= 0 {
		return p.fail(ctx, log, run, fmt.Errorf("interval must be a positive number of seconds, got %d", run.Interval))
	}

	if p.deps.Lock != nil {
		if err := p.deps.Lock.Acquire(); err != nil {
			return p.fail(ctx, log, run, err)
		}
		defer p.deps.Lock.Release()
	}

	// Metadata
	if err := p.advance(log, run, domain.StateFetchingMetadata); err != nil {
		return p.fail(ctx, log, run, err)
	}
	meta, err := p.deps.Metadata.FetchMetadata(ctx, run.URL)
	if err != nil {
		return p.fail(ctx, log, run, err)
	}
	run.Metadata = meta

	// Selection
	if err := p.advance(log, run, domain.StateSelectingFormat); err != nil {
		return p.fail(ctx, log, run, err)
	}
	sel := p.deps.Selector.Select(meta.Formats, meta.Duration, run.Interval)
	run.Selection = &sel
	if len(sel.Options) == 0 {
		return p.fail(ctx, log, run, fmt.Errorf("%w: %d formats offered, none with audio, video and a known size",
			domain.ErrNoDownloadableFormat, len(meta.Formats)))
	}
	if sel.CompactUnavailable {
		log.Info("No compact variant below the size threshold",
			zap.Int64("threshold", p.deps.Selector.SizeThreshold))
	}

	choice := sel.Options[0]
	if len(sel.Options) > 1 {
		if err := p.advance(log, run, domain.StateAwaitingChoice); err != nil {
			return p.fail(ctx, log, run, err)
		}
		if chooser == nil {
			chooser = AutoChooser{Category: domain.CategoryOriginal}
		}
		choice, err = chooser.Choose(ctx, meta, sel)
		if err != nil {
			return p.fail(ctx, log, run, err)
		}
	}
	run.Choice = &choice

	// Download
	if err := p.advance(log, run, domain.StateDownloading,
		zap.String("format_id", choice.FormatID),
		zap.String("category", string(choice.Category))); err != nil {
		return p.fail(ctx, log, run, err)
	}
	layout := p.deps.Layout(meta.Title)
	videoPath, err := p.deps.Downloader.Download(ctx, run.URL, choice.FormatID, layout)
	if err != nil {
		return p.fail(ctx, log, run, err)
	}
	run.VideoPath = videoPath
	p.writeSummary(log, run, meta, layout)

	// Snapshots
	if err := p.advance(log, run, domain.StateExtracting); err != nil {
		return p.fail(ctx, log, run, err)
	}
	run.SnapshotDir = layout.SnapshotDir
	var images []string
	err = p.deps.Progress.Track(ctx, "Taking screenshots", func(ctx context.Context) error {
		var err error
		images, err = p.deps.Extractor.Extract(ctx, videoPath, layout.SnapshotDir, run.Interval)
		return err
	})
	if err != nil {
		return p.fail(ctx, log, run, err)
	}

	// Document
	if err := p.advance(log, run, domain.StateAssembling, zap.Int("images", len(images))); err != nil {
		return p.fail(ctx, log, run, err)
	}
	err = p.deps.Progress.Track(ctx, "Creating PDF", func(ctx context.Context) error {
		return p.deps.Assembler.Assemble(images, layout.DocumentPath)
	})
	if err != nil {
		return p.fail(ctx, log, run, err)
	}
	run.DocumentPath = layout.DocumentPath

	if err := p.advance(log, run, domain.StateDone, zap.String("document", run.DocumentPath)); err != nil {
		return p.fail(ctx, log, run, err)
	}
	if p.deps.Notifier != nil {
		p.deps.Notifier.NotifyRunCompleted(ctx, meta.Title)
	}
	return nil
}

// advance transitions the run and publishes the change
func (p *Pipeline) advance(log *zap.Logger, run *domain.PipelineRun, to domain.RunState, fields ...zap.Field) error {
	if err := run.Transition(to); err != nil {
		return err
	}
	log.Info("Run state changed", append([]zap.Field{zap.String("state", string(to))}, fields...)...)
	p.publish(run)
	return nil
}

func (p *Pipeline) fail(ctx context.Context, log *zap.Logger, run *domain.PipelineRun, err error) error {
	run.MarkFailed(err)
	if errors.Is(err, domain.ErrCancelled) {
		log.Info("Run cancelled by operator")
	} else {
		log.Error("Run failed", zap.String("state", string(run.State)), zap.Error(err))
	}
	p.publish(run)
	if p.deps.Notifier != nil && !errors.Is(err, domain.ErrCancelled) {
		p.deps.Notifier.NotifyRunFailed(context.WithoutCancel(ctx), run.URL, err)
	}
	return err
}

// writeSummary is best effort: a failed summary never fails the run
func (p *Pipeline) writeSummary(log *zap.Logger, run *domain.PipelineRun, meta *domain.VideoMetadata, layout domain.OutputLayout) {
	if p.deps.Summary == nil {
		return
	}
	if err := p.deps.Summary.WriteSummary(meta, run.URL, layout.SummaryPath); err != nil {
		log.Warn("Failed to write summary", zap.Error(err))
		return
	}
	run.SummaryPath = layout.SummaryPath
	p.publish(run)
}

func (p *Pipeline) publish(run *domain.PipelineRun) {
	if p.onUpdate != nil {
		p.onUpdate(run.Snapshot())
	}
}

// AutoChooser picks an option by category without asking anyone. When the
// requested category is not offered it falls back to the original.
type AutoChooser struct {
	Category domain.OptionCategory
}

// Choose implements domain.Chooser
func (c AutoChooser) Choose(ctx context.Context, meta *domain.VideoMetadata, sel domain.Selection) (domain.SelectionOption, error) {
	if opt, ok := sel.Find(c.Category); ok {
		return opt, nil
	}
	if opt, ok := sel.Find(domain.CategoryOriginal); ok {
		return opt, nil
	}
	return domain.SelectionOption{}, domain.ErrNoDownloadableFormat
}

// ParseCategory validates an operator-supplied option category
func ParseCategory(s string) (domain.OptionCategory, error) {
	switch domain.OptionCategory(strings.ToLower(strings.TrimSpace(s))) {
	case "", domain.CategoryOriginal:
		return domain.CategoryOriginal, nil
	case domain.CategoryCompact:
		return domain.CategoryCompact, nil
	default:
		return "", fmt.Errorf("invalid choice %q: want original or compact", s)
	}
}
