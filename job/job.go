package job

import (
	"time"
)

// Job represents a scheduling unit managed by the queue storage.
//
// It embeds Spec and augments it with delivery state and scheduling
// information.
//
// CreatedAt records when the job was initially enqueued. StartedAt is
// set when the job is claimed and cleared again if the job is reaped
// back to queued. FinishedAt is
// non-nil once the job has reached a terminal status.
//
// HeartbeatAt and LeaseExpiresAt implement the visibility-timeout lease:
// while LeaseExpiresAt is set and in the future, the job is considered
// owned by WorkerID. HeartbeatAt records the last successful renewal.
//
// CancelRequestedAt is set by the submission API and observed by the
// owning worker on its next lease renewal.
//
// Attempt is 1 for an original submission and is incremented by a
// requeue (orphan reap) or an explicit Retry. ParentJobID links a retry
// to the job it was retried from.
//
// RunID is the derived identifier of this job's run directory (see
// package rundir): "job-<id>" for queued jobs.
//
// Job instances should be treated as snapshots of storage state.
// Mutating fields directly does not change the underlying queue state;
// transitions must be performed through the Puller interface.
type Job struct {
	Spec

	ID     int64
	RunID  string
	Status Status

	WorkerID *string

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time

	HeartbeatAt       *time.Time
	LeaseExpiresAt    *time.Time
	CancelRequestedAt *time.Time

	ExitCode *int
	Attempt  uint32

	ParentJobID *int64
}

// Lease reports whether the job's current lease, if any, is still valid
// at the given instant.
func (j *Job) Lease(now time.Time) bool {
	return j.LeaseExpiresAt != nil && j.LeaseExpiresAt.After(now)
}

// CancelRequested reports whether cancellation has been requested for
// this job, independent of whether the owning worker has observed it
// yet.
func (j *Job) CancelRequested() bool {
	return j.CancelRequestedAt != nil
}
