package whirr

import (
	"context"

	"whirr/job"
)

// Pusher defines the write-side entry point of the queue: spec §4.1
// enqueue.
type Pusher interface {

	// Push enqueues a new job for future claiming.
	//
	// The provided context controls cancellation of the enqueue
	// operation itself. It does not affect the lifetime of the
	// enqueued job.
	//
	// Implementations must:
	//
	//   - reject spec.Workdir values that are not absolute paths with
	//     ErrInvalidWorkdir
	//   - persist the job durably, in status queued, before returning
	//   - assign CreatedAt and a monotonically increasing ID
	//   - derive RunID as "job-<id>"
	//
	// Push does not mutate spec after returning. If Push returns a
	// non-nil error, no job is considered enqueued.
	Push(ctx context.Context, spec *job.Spec) (*job.Job, error)
}
