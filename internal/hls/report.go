package hls

import (
	"time"

	"hlsmaker/internal/preset"
)

// Step names one phase of preset processing.
type Step string

const (
	StepTranscode Step = "transcode"
	StepSegment   Step = "segment"
	StepVerify    Step = "verify"
)

// Preset outcome statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// PresetOutcome is the result of processing one preset.
type PresetOutcome struct {
	Preset       preset.Preset
	Status       string
	FailedStep   Step
	ExitCode     int
	Duration     time.Duration
	PlaylistPath string
	Segments     int
	Err          error
}

// Report summarizes a run.
type Report struct {
	RunID           string
	SourceFile      string
	OutputDirectory string
	BaseName        string
	StartedAt       time.Time
	FinishedAt      time.Time
	Presets         []PresetOutcome
	VariantPath     string
	Interrupted     bool
}

// Succeeded counts presets that produced a playable rendition.
func (r Report) Succeeded() int { return r.count(StatusSucceeded) }

// Failed counts presets whose tool invocation or verification failed.
func (r Report) Failed() int { return r.count(StatusFailed) }

// Skipped counts presets never attempted because the run stopped early.
func (r Report) Skipped() int { return r.count(StatusSkipped) }

// Duration returns the wall-clock time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r Report) count(status string) int {
	n := 0
	for _, outcome := range r.Presets {
		if outcome.Status == status {
			n++
		}
	}
	return n
}
