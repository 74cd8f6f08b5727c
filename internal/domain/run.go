package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunState represents the current state of a pipeline run
type RunState string

const (
	StateIdle             RunState = "idle"
	StateFetchingMetadata RunState = "fetching_metadata"
	StateSelectingFormat  RunState = "selecting_format"
	StateAwaitingChoice   RunState = "awaiting_choice"
	StateDownloading      RunState = "downloading"
	StateExtracting       RunState = "extracting"
	StateAssembling       RunState = "assembling"
	StateDone             RunState = "done"
	StateFailed           RunState = "failed"
)

// transitions lists the forward edges of the run state machine.
// Failed is reachable from every non-terminal state and handled separately.
var transitions = map[RunState][]RunState{
	StateIdle:             {StateFetchingMetadata},
	StateFetchingMetadata: {StateSelectingFormat},
	StateSelectingFormat:  {StateAwaitingChoice, StateDownloading},
	StateAwaitingChoice:   {StateDownloading},
	StateDownloading:      {StateExtracting},
	StateExtracting:       {StateAssembling},
	StateAssembling:       {StateDone},
}

// PipelineRun ties together everything produced by one invocation
type PipelineRun struct {
	ID           string           `json:"id"`
	URL          string           `json:"url"`
	Interval     int              `json:"interval"`
	State        RunState         `json:"state"`
	Metadata     *VideoMetadata   `json:"metadata,omitempty"`
	Selection    *Selection       `json:"selection,omitempty"`
	Choice       *SelectionOption `json:"choice,omitempty"`
	VideoPath    string           `json:"video_path,omitempty"`
	SnapshotDir  string           `json:"snapshot_dir,omitempty"`
	DocumentPath string           `json:"document_path,omitempty"`
	SummaryPath  string           `json:"summary_path,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// NewPipelineRun creates a new run in the idle state
func NewPipelineRun(url string, interval int) *PipelineRun {
	now := time.Now()
	return &PipelineRun{
		ID:        uuid.New().String(),
		URL:       url,
		Interval:  interval,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the run to the next state if the edge is allowed
func (r *PipelineRun) Transition(to RunState) error {
	if r.IsTerminal() {
		return fmt.Errorf("%w: run already %s", ErrInvalidTransition, r.State)
	}
	for _, allowed := range transitions[r.State] {
		if allowed == to {
			r.State = to
			r.UpdatedAt = time.Now()
			if to == StateDone {
				now := r.UpdatedAt
				r.CompletedAt = &now
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, to)
}

// MarkFailed marks the run as failed. Terminal runs are left untouched.
func (r *PipelineRun) MarkFailed(err error) {
	if r.IsTerminal() {
		return
	}
	r.State = StateFailed
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	now := time.Now()
	r.UpdatedAt = now
	r.CompletedAt = &now
}

// IsTerminal checks if the run is in a terminal state
func (r *PipelineRun) IsTerminal() bool {
	return r.State == StateDone || r.State == StateFailed
}

// Snapshot returns a copy safe to hand to another goroutine
func (r *PipelineRun) Snapshot() PipelineRun {
	cp := *r
	if r.Choice != nil {
		choice := *r.Choice
		cp.Choice = &choice
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		cp.CompletedAt = &t
	}
	return cp
}
