// Package report collects spec results and renders the run report.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitlab-dev/fitrunner/pkg/core"
)

// Attachment is a debug artifact captured during a failing spec.
type Attachment struct {
	Name string `json:"name"` // e.g. failure.png, hierarchy.json
	Path string `json:"path"` // Relative to the report output dir
	Type string `json:"type"` // screenshot, hierarchy
}

// SpecResult captures the complete outcome of executing a single spec.
type SpecResult struct {
	// Identity
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`

	// Status
	Status core.Status `json:"status"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Error details
	Error    string             `json:"error,omitempty"`
	Category core.ErrorCategory `json:"errorCategory,omitempty"`

	// Retry tracking
	Attempt     int      `json:"attempt"`               // Final attempt (1-based)
	MaxAttempts int      `json:"maxAttempts"`           // Configured retries + 1
	RetryErrors []string `json:"retryErrors,omitempty"` // Errors from earlier attempts
	Flaky       bool     `json:"flaky,omitempty"`       // Passed after retry

	// Debug artifacts
	Attachments []Attachment `json:"attachments,omitempty"`
}

// RunResult captures the complete outcome of a suite run.
type RunResult struct {
	// Identity
	Name  string `json:"name"`
	RunID string `json:"runId"`

	// Platform info (captured once per run)
	PlatformInfo *core.PlatformInfo `json:"platformInfo,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Specs []SpecResult `json:"specs"`

	// Summary (computed)
	TotalSpecs   int `json:"totalSpecs"`
	PassedSpecs  int `json:"passedSpecs"`
	FailedSpecs  int `json:"failedSpecs"`
	SkippedSpecs int `json:"skippedSpecs"`
	FlakySpecs   int `json:"flakySpecs,omitempty"`
}

// NewRunResult creates a run result with a fresh run ID.
func NewRunResult(name string) *RunResult {
	return &RunResult{
		Name:      name,
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
}

// ComputeSummary recalculates spec counts from the Specs slice.
func (r *RunResult) ComputeSummary() {
	r.TotalSpecs = len(r.Specs)
	r.PassedSpecs = 0
	r.FailedSpecs = 0
	r.SkippedSpecs = 0
	r.FlakySpecs = 0

	for _, spec := range r.Specs {
		switch spec.Status {
		case core.StatusPassed, core.StatusWarned:
			r.PassedSpecs++
		case core.StatusFailed, core.StatusErrored:
			r.FailedSpecs++
		case core.StatusSkipped:
			r.SkippedSpecs++
		}
		if spec.Flaky {
			r.FlakySpecs++
		}
	}
}

// Success returns true if every spec passed (including warned).
func (r *RunResult) Success() bool {
	for _, spec := range r.Specs {
		if !spec.Status.IsSuccess() && spec.Status != core.StatusSkipped {
			return false
		}
	}
	return len(r.Specs) > 0
}
