package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// maxRetainedRuns bounds how many finished runs are kept for status queries
const maxRetainedRuns = 100

// RunRequest describes a run submitted through the API
type RunRequest struct {
	URL      string
	Interval int
	Choice   domain.OptionCategory
}

// RunManager executes submitted runs in the background, one at a time, and
// keeps their latest snapshots in memory for status queries.
type RunManager struct {
	pipeline *Pipeline
	logger   *zap.Logger

	mu      sync.RWMutex
	runs    map[string]domain.PipelineRun
	order   []string
	running bool
	ctx     context.Context
	cancel  context.CancelFunc

	slot     chan struct{} // capacity 1: a run holds it while executing
	workerWg sync.WaitGroup
}

// NewRunManager creates a new run manager. It takes over the pipeline's
// update callback.
func NewRunManager(pipeline *Pipeline, logger *zap.Logger) *RunManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	rm := &RunManager{
		pipeline: pipeline,
		logger:   logger,
		runs:     make(map[string]domain.PipelineRun),
		slot:     make(chan struct{}, 1),
	}
	pipeline.OnUpdate(rm.store)
	return rm
}

// Start enables run submission. Runs are cancelled when ctx is.
func (rm *RunManager) Start(ctx context.Context) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.running {
		return fmt.Errorf("run manager already running")
	}
	rm.ctx, rm.cancel = context.WithCancel(ctx)
	rm.running = true
	rm.logger.Info("Run manager started")
	return nil
}

// Stop cancels any active run and waits for it to finish
func (rm *RunManager) Stop() error {
	rm.mu.Lock()
	if !rm.running {
		rm.mu.Unlock()
		return fmt.Errorf("run manager not running")
	}
	rm.running = false
	rm.cancel()
	rm.mu.Unlock()

	rm.workerWg.Wait()
	rm.logger.Info("Run manager stopped")
	return nil
}

// IsRunning returns whether the manager accepts runs
func (rm *RunManager) IsRunning() bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.running
}

// Busy reports whether a run is executing
func (rm *RunManager) Busy() bool {
	return len(rm.slot) > 0
}

// Submit validates req and starts a run, or returns ErrRunInProgress
func (rm *RunManager) Submit(req RunRequest) (domain.PipelineRun, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return domain.PipelineRun{}, fmt.Errorf("url is required")
	}
	if req.Interval <= 0 {
		return domain.PipelineRun{}, fmt.Errorf("interval must be a positive number of seconds")
	}
	choice, err := ParseCategory(string(req.Choice))
	if err != nil {
		return domain.PipelineRun{}, err
	}

	rm.mu.RLock()
	running, ctx := rm.running, rm.ctx
	rm.mu.RUnlock()
	if !running {
		return domain.PipelineRun{}, fmt.Errorf("run manager not running")
	}

	select {
	case rm.slot <- struct{}{}:
	default:
		return domain.PipelineRun{}, domain.ErrRunInProgress
	}

	run := domain.NewPipelineRun(url, req.Interval)
	submitted := run.Snapshot()
	rm.store(submitted)

	rm.logger.Info("Run submitted",
		zap.String("run_id", run.ID),
		zap.String("url", url),
		zap.Int("interval", req.Interval),
		zap.String("choice", string(choice)))

	rm.workerWg.Add(1)
	go func() {
		defer rm.workerWg.Done()
		defer func() { <-rm.slot }()

		if err := rm.pipeline.Execute(ctx, run, AutoChooser{Category: choice}); err != nil {
			rm.logger.Warn("Run ended with error",
				zap.String("run_id", run.ID),
				zap.Error(err))
		}
	}()

	return submitted, nil
}

// Get returns the latest snapshot of a run
func (rm *RunManager) Get(id string) (domain.PipelineRun, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	run, ok := rm.runs[id]
	return run, ok
}

// store records a run snapshot, evicting the oldest runs past the limit
func (rm *RunManager) store(run domain.PipelineRun) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if _, exists := rm.runs[run.ID]; !exists {
		rm.order = append(rm.order, run.ID)
		for len(rm.order) > maxRetainedRuns {
			delete(rm.runs, rm.order[0])
			rm.order = rm.order[1:]
		}
	}
	rm.runs[run.ID] = run
}
