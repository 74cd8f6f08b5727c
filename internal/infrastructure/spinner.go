package infrastructure

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

const spinnerTick = 120 * time.Millisecond

// Spinner renders an indeterminate progress spinner while a blocking call
// runs. Each Track call owns its own goroutine.
type Spinner struct {
	writer  io.Writer
	enabled bool
	tick    time.Duration
}

// NewSpinner creates a spinner that renders only when writer is a terminal
func NewSpinner(writer io.Writer) *Spinner {
	return &Spinner{writer: writer, enabled: isTerminal(writer), tick: spinnerTick}
}

// NewForcedSpinner creates a spinner that always renders
func NewForcedSpinner(writer io.Writer, tick time.Duration) *Spinner {
	if tick <= 0 {
		tick = spinnerTick
	}
	return &Spinner{writer: writer, enabled: true, tick: tick}
}

// Track runs fn while the spinner animates. The animation goroutine is
// stopped and joined before Track returns, including when fn panics.
func (s *Spinner) Track(ctx context.Context, message string, fn func(ctx context.Context) error) error {
	if !s.enabled {
		return fn(ctx)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.writer),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	spinCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-spinCtx.Done():
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	defer func() {
		stop()
		wg.Wait()
		_ = bar.Finish()
	}()

	return fn(ctx)
}

// NoopIndicator runs fn without rendering anything
type NoopIndicator struct{}

// Track runs fn directly
func (NoopIndicator) Track(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
