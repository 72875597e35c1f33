package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"whirr"
	"whirr/job"
)

// Puller implements whirr.Puller using a SQL backend.
//
// Puller's claim algorithm branches on the underlying dialect: for
// sqlitedialect it relies on the caller having configured the database
// connection with SetMaxOpenConns(1), making the connection pool
// itself the serialization point for a plain transaction; for pgdialect
// it uses SELECT ... FOR UPDATE SKIP LOCKED so concurrent pollers never
// block on each other. Every other operation is dialect-agnostic.
type Puller struct {
	db *bun.DB
}

// NewPuller creates a new SQL-backed Puller.
//
// The provided *bun.DB must be properly configured and connected.
// Schema initialization must be completed before using Puller.
func NewPuller(db *bun.DB) *Puller {
	return &Puller{db: db}
}

// classifyErr wraps a database error from Pull or Renew as
// ErrStoreUnavailable — the only two calls spec §7 retries with
// backoff. Other Puller methods return their database errors as-is.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", whirr.ErrStoreUnavailable, err)
}

// Pull claims the oldest queued job, transitioning it to Running and
// assigning it a lease of the given duration (spec §4.1).
//
// Pull returns whirr.ErrNotFound if no job is queued.
func (p *Puller) Pull(ctx context.Context, workerID string, lease time.Duration) (*job.Job, error) {
	if p.db.Dialect().Name() == dialect.PG {
		return p.pullPG(ctx, workerID, lease)
	}
	return p.pullSerialized(ctx, workerID, lease)
}

func (p *Puller) pullPG(ctx context.Context, workerID string, lease time.Duration) (*job.Job, error) {
	now := time.Now()
	leaseUntil := now.Add(lease)

	subQuery := p.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("id").
		Where("status = ?", job.Queued).
		Order("created_at ASC", "id ASC").
		Limit(1).
		For("UPDATE SKIP LOCKED")

	var model jobModel
	err := p.db.NewUpdate().
		Model(&model).
		Set("status = ?", job.Running).
		Set("worker_id = ?", workerID).
		Set("started_at = ?", now).
		Set("heartbeat_at = ?", now).
		Set("lease_expires_at = ?", leaseUntil).
		Where("id IN (?)", subQuery).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, whirr.ErrNotFound
		}
		return nil, classifyErr(err)
	}
	return model.toJob(), nil
}

func (p *Puller) pullSerialized(ctx context.Context, workerID string, lease time.Duration) (*job.Job, error) {
	now := time.Now()
	leaseUntil := now.Add(lease)

	var model jobModel
	err := p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var id int64
		if err := tx.NewSelect().
			Model((*jobModel)(nil)).
			Column("id").
			Where("status = ?", job.Queued).
			Order("created_at ASC", "id ASC").
			Limit(1).
			Scan(ctx, &id); err != nil {
			return err
		}
		return tx.NewUpdate().
			Model(&model).
			Set("status = ?", job.Running).
			Set("worker_id = ?", workerID).
			Set("started_at = ?", now).
			Set("heartbeat_at = ?", now).
			Set("lease_expires_at = ?", leaseUntil).
			Where("id = ?", id).
			Returning("*").
			Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, whirr.ErrNotFound
		}
		return nil, classifyErr(err)
	}
	return model.toJob(), nil
}

// Renew extends a job's lease and reports whether cancellation has been
// requested, in a single round trip (spec §4.1's renew contract).
//
// Renew returns whirr.ErrNotOwner if jobID is not currently Running
// under workerID — typically because its lease already expired and it
// was reaped.
func (p *Puller) Renew(ctx context.Context, jobID int64, workerID string, lease time.Duration) (bool, error) {
	now := time.Now()
	leaseUntil := now.Add(lease)

	var model jobModel
	err := p.db.NewUpdate().
		Model(&model).
		Set("heartbeat_at = ?", now).
		Set("lease_expires_at = ?", leaseUntil).
		Where("id = ?", jobID).
		Where("worker_id = ?", workerID).
		Where("status = ?", job.Running).
		Returning("cancel_requested_at").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, whirr.ErrNotOwner
		}
		return false, classifyErr(err)
	}
	return model.CancelRequestedAt != nil, nil
}

// Complete transitions a Running job to a terminal status, recording
// its exit code.
//
// Complete returns whirr.ErrBadStatus if status is not terminal, and
// whirr.ErrNotOwner if jobID is not currently Running under workerID.
func (p *Puller) Complete(ctx context.Context, jobID int64, workerID string, exitCode int, status job.Status) error {
	if !status.Terminal() {
		return whirr.ErrBadStatus
	}
	now := time.Now()
	res, err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", status).
		Set("exit_code = ?", exitCode).
		Set("finished_at = ?", now).
		Set("worker_id = NULL").
		Set("lease_expires_at = NULL").
		Where("id = ?", jobID).
		Where("worker_id = ?", workerID).
		Where("status = ?", job.Running).
		Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return whirr.ErrNotOwner
	}
	return nil
}

// RequestCancel marks jobID for cancellation.
//
// A queued job is cancelled synchronously. A running job has
// cancel_requested_at set, to be observed by its owning worker on the
// next renew (spec §4.1, §4.2); RequestCancel is idempotent in this
// case. RequestCancel returns the job's current status either way.
func (p *Puller) RequestCancel(ctx context.Context, jobID int64) (job.Status, error) {
	now := time.Now()

	var cancelled jobModel
	err := p.db.NewUpdate().
		Model(&cancelled).
		Set("status = ?", job.Cancelled).
		Set("cancel_requested_at = ?", now).
		Set("finished_at = ?", now).
		Set("exit_code = ?", -1).
		Where("id = ?", jobID).
		Where("status = ?", job.Queued).
		Returning("status").
		Scan(ctx)
	if err == nil {
		return cancelled.Status, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return job.Unknown, err
	}

	if _, err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("cancel_requested_at = ?", now).
		Where("id = ?", jobID).
		Where("status = ?", job.Running).
		Where("cancel_requested_at IS NULL").
		Exec(ctx); err != nil {
		return job.Unknown, err
	}

	var status job.Status
	err = p.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("status").
		Where("id = ?", jobID).
		Scan(ctx, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return job.Unknown, whirr.ErrNotFound
		}
		return job.Unknown, err
	}
	return status, nil
}

// CancelAllQueued cancels every currently-queued job and reports how
// many were affected.
func (p *Puller) CancelAllQueued(ctx context.Context) (int64, error) {
	now := time.Now()
	res, err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Cancelled).
		Set("cancel_requested_at = ?", now).
		Set("finished_at = ?", now).
		Set("exit_code = ?", -1).
		Where("status = ?", job.Queued).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return getAffected(res), nil
}

// Retry creates a new queued job copying jobID's command, workdir,
// name and tags, linked via ParentJobID with Attempt incremented (spec
// §4.1, §9 test 4).
//
// Retry returns whirr.ErrNotRetryable unless jobID is currently Failed
// or Cancelled.
func (p *Puller) Retry(ctx context.Context, jobID int64) (*job.Job, error) {
	var parent jobModel
	if err := p.db.NewSelect().Model(&parent).Where("id = ?", jobID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, whirr.ErrNotFound
		}
		return nil, err
	}
	if parent.Status != job.Failed && parent.Status != job.Cancelled {
		return nil, whirr.ErrNotRetryable
	}

	child := &jobModel{
		Name:        parent.Name,
		CommandArgv: parent.CommandArgv,
		Workdir:     parent.Workdir,
		Tags:        parent.Tags,
		Config:      parent.Config,
		Status:      job.Queued,
		CreatedAt:   time.Now(),
		Attempt:     parent.Attempt + 1,
		ParentJobID: &parent.ID,
	}
	err := p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(child).Returning("id").Exec(ctx); err != nil {
			return err
		}
		child.RunID = fmt.Sprintf("job-%d", child.ID)
		_, err := tx.NewUpdate().Model(child).Column("run_id").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return child.toJob(), nil
}

// ReapExpired returns every Running job whose lease has expired as of
// now to Queued, incrementing its attempt counter (spec §4.4). It
// returns the ids of jobs it requeued.
func (p *Puller) ReapExpired(ctx context.Context, now time.Time) ([]int64, error) {
	var ids []int64
	err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Queued).
		Set("worker_id = NULL").
		Set("started_at = NULL").
		Set("heartbeat_at = NULL").
		Set("lease_expires_at = NULL").
		Set("attempt = attempt + 1").
		Where("status = ?", job.Running).
		Where("lease_expires_at < ?", now).
		Returning("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
