// Package models defines the transport-facing result and record types
// shared by the study orchestrator, HTTP service and CLI.
package models

import "time"

// StudyStatus is the lifecycle state of a submitted study.
type StudyStatus string

const (
	StatusPending   StudyStatus = "pending"
	StatusRunning   StudyStatus = "running"
	StatusCompleted StudyStatus = "completed"
	StatusFailed    StudyStatus = "failed"
	StatusStopped   StudyStatus = "stopped"
)

// StudyRecord tracks one submitted study end to end.
type StudyRecord struct {
	ID          string      `json:"id" yaml:"id"`
	Status      StudyStatus `json:"status" yaml:"status"`
	SubmittedAt time.Time   `json:"submitted_at" yaml:"submitted_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Error       string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Series is one plot-ready line: paired X/Y arrays of equal length.
type Series struct {
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
	X     []float64 `json:"x" yaml:"x"`
	Y     []float64 `json:"y" yaml:"y"`
}

// Histogram is a binned distribution. Edges has one more entry than
// Counts; Density holds the normalized bin heights.
type Histogram struct {
	Edges   []float64 `json:"edges" yaml:"edges"`
	Counts  []int     `json:"counts" yaml:"counts"`
	Density []float64 `json:"density" yaml:"density"`
}

// CDFPoint is one step of an empirical distribution function.
type CDFPoint struct {
	Value       float64 `json:"value" yaml:"value"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// Band is a percentile interval across an ensemble, keyed by the
// abscissa values of the underlying series.
type Band struct {
	Percentile float64   `json:"percentile" yaml:"percentile"`
	X          []float64 `json:"x" yaml:"x"`
	Lower      []float64 `json:"lower" yaml:"lower"`
	Upper      []float64 `json:"upper" yaml:"upper"`
}
