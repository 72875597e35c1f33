package sqlstore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"whirr"
	"whirr/job"
)

// Cleaner implements whirr.Cleaner using a SQL backend.
//
// Cleaner permanently removes terminal jobs (and, transitively, their
// run index entries, which are projected from the same row) from
// storage. It does not touch the run directories those jobs produced on
// disk — retention of run directories themselves is a separate,
// operator-driven concern (spec §6.1's "filesystem is authoritative").
type Cleaner struct {
	db *bun.DB
}

// NewCleaner creates a new SQL-backed Cleaner.
func NewCleaner(db *bun.DB) *Cleaner {
	return &Cleaner{db: db}
}

// Clean deletes jobs matching status (or, if status is job.Unknown, any
// terminal status) whose FinishedAt is at or before *before, if before
// is non-nil.
//
// Clean returns whirr.ErrBadStatus if status is non-zero and not
// terminal — deleting an in-progress job's record is never allowed.
func (c *Cleaner) Clean(ctx context.Context, status job.Status, before *time.Time) (int64, error) {
	if status != job.Unknown && !status.Terminal() {
		return 0, whirr.ErrBadStatus
	}
	query := c.db.NewDelete().Model((*jobModel)(nil))
	if status != job.Unknown {
		query.Where("status = ?", status)
	} else {
		query.Where("status IN (?, ?, ?)", job.Completed, job.Failed, job.Cancelled)
	}
	if before != nil {
		query.Where("finished_at <= ?", *before)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return getAffected(res), nil
}
