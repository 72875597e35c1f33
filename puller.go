package whirr

import (
	"context"
	"time"

	"whirr/job"
)

// Puller defines the read-write contract for claiming and managing jobs
// in the queue lifecycle (spec §4.1).
//
// Puller provides lease-based visibility semantics similar to systems
// such as Amazon SQS:
//
//   - Pull transitions the oldest eligible job from queued to running.
//   - While running, a job is invisible to other claimants.
//   - LeaseExpiresAt defines the visibility timeout (lease).
//   - If a worker crashes or stalls before completion, reaping returns
//     the job to queued once its lease expires.
//
// Unlike a generic at-least-once queue, whirr never silently retries a
// running job after handler failure: a job reaches a terminal status
// exactly once per attempt, and only Retry or reap produce a further
// attempt.
type Puller interface {

	// Pull selects the oldest eligible queued job (by CreatedAt, then
	// ID) and atomically transitions it to running, owned by workerID.
	//
	// Implementations must ensure that:
	//
	//   - the returned job is atomically transitioned to running
	//   - Attempt is left unchanged (only Retry and reaping raise it)
	//   - StartedAt and HeartbeatAt are set to now
	//   - LeaseExpiresAt is set to now + lease
	//
	// An empty queue is the normal case, not a failure. Implementations
	// report it either as (nil, nil) (store/httpclient) or as ErrNotFound
	// (store/sqlstore); callers treat both as "no job".
	//
	// If ctx is canceled, Pull aborts and returns a non-nil error.
	Pull(ctx context.Context, workerID string, lease time.Duration) (*job.Job, error)

	// Renew extends the lease of a running job and reports whether
	// cancellation has been requested for it.
	//
	// Renew must only succeed if (jobID, workerID) still matches the
	// current owner and the job is running; otherwise it returns
	// ErrNotOwner. This is the sole channel by which a worker discovers
	// cancellation: a caller need not poll separately.
	Renew(ctx context.Context, jobID int64, workerID string, lease time.Duration) (cancelRequested bool, err error)

	// Complete transitions a running job to a terminal status
	// (completed, failed or cancelled) and records its exit code.
	//
	// Complete must only succeed if (jobID, workerID) still matches the
	// current owner; otherwise it returns ErrNotOwner, and the caller
	// must abandon the job without writing further state (spec §7).
	Complete(ctx context.Context, jobID int64, workerID string, exitCode int, status job.Status) error

	// RequestCancel marks a job for cancellation and returns its current
	// status so the caller can decide on a fast path (a queued job is
	// cancelled synchronously; a running job is marked and observed
	// asynchronously by its owning worker).
	//
	// RequestCancel is idempotent. If the job does not exist,
	// ErrNotFound is returned.
	RequestCancel(ctx context.Context, jobID int64) (job.Status, error)

	// CancelAllQueued cancels every job currently in status queued and
	// returns the count affected.
	CancelAllQueued(ctx context.Context) (int64, error)

	// Retry creates a new job from a terminal, non-successful job: the
	// same CommandArgv, Workdir, Name and Tags, ParentJobID set to the
	// original's ID, and Attempt = original.Attempt + 1.
	//
	// Retry fails with ErrNotRetryable unless the referenced job's
	// status is failed or cancelled.
	Retry(ctx context.Context, jobID int64) (*job.Job, error)

	// ReapExpired finds every running job whose lease has expired as of
	// now, resets each to queued (clearing WorkerID, StartedAt,
	// HeartbeatAt and LeaseExpiresAt, incrementing Attempt), and returns
	// the affected job ids.
	//
	// ReapExpired is idempotent: a job already queued is left alone.
	ReapExpired(ctx context.Context, now time.Time) ([]int64, error)
}
