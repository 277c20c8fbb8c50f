package domain

import "time"

// MaintenanceRun records one pass of the background cache maintenance loop.
type MaintenanceRun struct {
	// StartedAt is when the pass started.
	StartedAt time.Time

	// EndedAt is when the pass completed.
	EndedAt time.Time

	// Limits are the thresholds the pass enforced.
	Limits CacheLimits

	// Report is the cleanup outcome. Zero when Error is set.
	Report CleanupReport

	// Error contains the error message if the pass failed.
	Error string
}

// Success indicates whether the pass completed without error.
func (r MaintenanceRun) Success() bool {
	return r.Error == ""
}

// Duration returns how long the pass took.
func (r MaintenanceRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
