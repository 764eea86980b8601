package history

import "time"

// Run statuses.
const (
	StatusRunning     = "running"
	StatusSucceeded   = "succeeded"
	StatusPartial     = "partial"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// Preset statuses.
const (
	PresetSucceeded = "succeeded"
	PresetFailed    = "failed"
	PresetSkipped   = "skipped"
)

// Run is one invocation of the generator.
type Run struct {
	ID              string
	SourceFile      string
	OutputDirectory string
	BaseName        string
	Aspect          string
	FailurePolicy   string
	Status          string
	VariantPath     string
	Succeeded       int
	Failed          int
	StartedAt       time.Time
	FinishedAt      time.Time
	ErrorMessage    string
}

// Duration returns the wall-clock time of a finished run, or zero.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Preset is the stored outcome of one preset within a run.
type Preset struct {
	RunID        string
	Tier         string
	Kbps         int
	Status       string
	FailedStep   string
	ExitCode     int
	Duration     time.Duration
	PlaylistPath string
	Segments     int
	ErrorMessage string
}
