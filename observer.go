package whirr

import (
	"context"

	"whirr/job"
)

// Observer provides read-only access to jobs, runs and status counts.
//
// Observer does not modify state and does not participate in lease
// handling or lifecycle transitions. It is intended for diagnostic,
// monitoring and submission-API use cases (spec §4.5).
//
// Methods of Observer return authoritative snapshots of storage state at
// the time of the call. Returned values must be treated as immutable
// views; mutating them does not affect the underlying store.
type Observer interface {

	// GetJob returns the job identified by id, or ErrNotFound if no job
	// with that id exists.
	GetJob(ctx context.Context, id int64) (*job.Job, error)

	// ListActive returns every job currently queued or running.
	ListActive(ctx context.Context) ([]*job.Job, error)

	// ListRuns returns run-index rows matching filter.
	ListRuns(ctx context.Context, filter RunFilter) ([]*RunIndex, error)

	// GetRun returns the run-index row for runID, or ErrNotFound if
	// unknown to the store.
	GetRun(ctx context.Context, runID string) (*RunIndex, error)

	// Status returns job and worker counts by status.
	Status(ctx context.Context) (StatusCounts, error)
}
