package whirr

import (
	"time"

	"whirr/job"
)

// RunIndex is the thin, rebuildable Store-side record of a run described
// in spec §3.3. The run directory on disk remains authoritative; this
// index exists only so that listing does not require a filesystem scan.
type RunIndex struct {
	RunID      string
	JobID      int64
	Name       string
	Status     job.Status
	Tags       []string
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// RunFilter narrows ListRuns. A zero value (job.Unknown) matches every run.
type RunFilter struct {
	Status job.Status
	Tag    string
	Limit  int
}

// StatusCounts reports the spec §4.5 status() tallies.
type StatusCounts struct {
	Queued      int64
	Running     int64
	Completed   int64
	Failed      int64
	Cancelled   int64
	WorkersIdle int64
	WorkersBusy int64
}
