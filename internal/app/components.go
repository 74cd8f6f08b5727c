package app

import (
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
)

// Components holds the stages built from one configuration
type Components struct {
	Config    *domain.Config
	Locator   *infrastructure.ToolLocator
	Runner    *infrastructure.ExecRunner
	YTDLP     *infrastructure.YTDLPClient
	Metadata  *MetadataFetcher
	Selector  domain.FormatSelector
	Extractor *infrastructure.FFmpegExtractor
	Lock      *infrastructure.RunLock
	Pipeline  *Pipeline
}

// NewComponents wires every pipeline stage from config. progress decorates
// the blocking yt-dlp and ffmpeg calls; pass nil for none.
func NewComponents(config *domain.Config, progress domain.ProgressIndicator, logger *zap.Logger) *Components {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = infrastructure.NoopIndicator{}
	}

	locator := infrastructure.NewToolLocator(config.Tools, logger)
	runner := infrastructure.NewExecRunner(config.Download.LogsDir, logger)
	ytdlp := infrastructure.NewYTDLPClient(config.Tools.YTDLPBinary, locator, runner, config.Fetch, logger)
	extractor := infrastructure.NewFFmpegExtractor(config.Tools.FFmpegBinary, locator, runner, logger)
	lock := infrastructure.NewRunLock(config.Download.BaseDir, logger)
	metadata := NewMetadataFetcher(ytdlp, progress, logger)
	selector := domain.NewFormatSelector(config.Selection)

	deps := PipelineDeps{
		Metadata:   metadata,
		Selector:   selector,
		Downloader: NewContentDownloader(ytdlp, progress, logger),
		Extractor:  extractor,
		Assembler:  infrastructure.NewPDFAssembler(config.Snapshot.JPEGQuality, logger),
		Layout: func(title string) domain.OutputLayout {
			return infrastructure.NewOutputLayout(config.Download.BaseDir, title, config.Download.TitleMaxLength)
		},
		Progress: progress,
		Notifier: infrastructure.NewNotificationService(config.Notification, runner, logger),
		Lock:     lock,
	}
	if config.Download.WriteSummary {
		deps.Summary = infrastructure.NewTextSummaryWriter()
	}

	return &Components{
		Config:    config,
		Locator:   locator,
		Runner:    runner,
		YTDLP:     ytdlp,
		Metadata:  metadata,
		Selector:  selector,
		Extractor: extractor,
		Lock:      lock,
		Pipeline:  NewPipeline(deps, logger),
	}
}

// ToolStatus reports where one external tool was found
type ToolStatus struct {
	Name string
	Path string
	Err  error
}

// CheckTools locates every external tool the pipeline needs
func (c *Components) CheckTools() []ToolStatus {
	names := []string{c.Config.Tools.YTDLPBinary, c.Config.Tools.FFmpegBinary}
	statuses := make([]ToolStatus, 0, len(names))
	for _, name := range names {
		path, err := c.Locator.Locate(name)
		statuses = append(statuses, ToolStatus{Name: name, Path: path, Err: err})
	}
	return statuses
}
