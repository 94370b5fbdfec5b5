// Package model defines the records kept between runs.
package model

import "time"

// Run is one completed process invocation.
type Run struct {
	ID           string         `json:"id" yaml:"id"`
	Source       string         `json:"source" yaml:"source"`
	Target       string         `json:"target" yaml:"target"`
	Format       string         `json:"format" yaml:"format"`
	DryRun       bool           `json:"dry_run" yaml:"dry_run"`
	Rows         int            `json:"rows" yaml:"rows"`
	Found        int            `json:"found" yaml:"found"`
	NotFound     int            `json:"not_found" yaml:"not_found"`
	UnknownState int            `json:"unknown_state" yaml:"unknown_state"`
	Failures     map[string]int `json:"failures,omitempty" yaml:"failures,omitempty"` // by failure kind
	StartedAt    time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time      `json:"finished_at" yaml:"finished_at"`
}

// FailureCount is the number of rows whose lookup failed.
func (r Run) FailureCount() int {
	n := 0
	for _, c := range r.Failures {
		n += c
	}
	return n
}

// Duration is the wall-clock time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
