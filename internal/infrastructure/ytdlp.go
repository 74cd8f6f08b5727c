package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// Locator resolves an external tool name to an executable path
type Locator interface {
	Locate(name string) (string, error)
}

// YTDLPClient builds and runs yt-dlp invocations for a single client profile.
// Profile iteration lives in the app layer.
type YTDLPClient struct {
	binary  string
	locator Locator
	runner  CommandRunner
	config  domain.FetchConfig
	logger  *zap.Logger
}

// NewYTDLPClient creates a new yt-dlp client
func NewYTDLPClient(binary string, locator Locator, runner CommandRunner, config domain.FetchConfig, logger *zap.Logger) *YTDLPClient {
	if binary == "" {
		binary = "yt-dlp"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPClient{binary: binary, locator: locator, runner: runner, config: config, logger: logger}
}

// Resolve locates the yt-dlp executable
func (c *YTDLPClient) Resolve() (string, error) {
	return c.locator.Locate(c.binary)
}

// MetadataCommand builds the full-metadata query for one profile
func (c *YTDLPClient) MetadataCommand(path string, profile domain.ClientProfile, url string) Command {
	return NewCommand(path,
		"-j",
		"--extractor-args", profile.ExtractorArgs(),
		"--retries", strconv.Itoa(c.config.Retries),
		url,
	)
}

// ProbeCommand builds the single-format access probe for one profile
func (c *YTDLPClient) ProbeCommand(path string, profile domain.ClientProfile, url, formatID string) Command {
	return NewCommand(path,
		"-j",
		"-f", formatID,
		"--extractor-args", profile.ExtractorArgs(),
		url,
	)
}

// TransferCommand builds the download invocation for one profile
func (c *YTDLPClient) TransferCommand(path string, profile domain.ClientProfile, url, formatID, template string) Command {
	return NewCommand(path,
		"-f", formatID,
		"-o", template,
		"--extractor-args", profile.ExtractorArgs(),
		"--retries", strconv.Itoa(c.config.DownloadRetries),
		url,
	)
}

// QueryMetadata runs one metadata attempt bounded by the metadata timeout
func (c *YTDLPClient) QueryMetadata(ctx context.Context, path string, profile domain.ClientProfile, url string) (*domain.VideoMetadata, error) {
	ctx, cancel := withTimeout(ctx, c.config.MetadataTimeout)
	defer cancel()

	c.logger.Debug("Querying metadata", zap.String("profile", string(profile)), zap.String("url", url))

	result, err := c.runner.Run(ctx, c.MetadataCommand(path, profile, url))
	if err != nil {
		return nil, err
	}
	meta, err := domain.ParseVideoMetadata(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata from yt-dlp: %w", err)
	}
	return meta, nil
}

// ProbeFormat checks that profile can access formatID and returns the
// container extension yt-dlp will write.
func (c *YTDLPClient) ProbeFormat(ctx context.Context, path string, profile domain.ClientProfile, url, formatID string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	c.logger.Debug("Probing format",
		zap.String("profile", string(profile)),
		zap.String("format_id", formatID))

	result, err := c.runner.Run(ctx, c.ProbeCommand(path, profile, url, formatID))
	if err != nil {
		return "", err
	}
	ext, err := domain.ParseFormatExt(result.Stdout)
	if err != nil {
		return "", fmt.Errorf("invalid probe output from yt-dlp: %w", err)
	}
	return ext, nil
}

// Transfer downloads formatID to template. It is not time-bounded.
func (c *YTDLPClient) Transfer(ctx context.Context, path string, profile domain.ClientProfile, url, formatID, template string) error {
	_, err := c.runner.Run(ctx, c.TransferCommand(path, profile, url, formatID, template))
	return err
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
