package sqlstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/uptrace/bun"

	"whirr"
	"whirr/job"
)

// Pusher implements whirr.Pusher using a SQL backend.
//
// Pusher inserts new jobs into storage in the Queued state. It performs
// no deduplication: the caller is responsible for idempotency if a spec
// is submitted more than once.
type Pusher struct {
	db *bun.DB
}

// NewPusher creates a new SQL-backed Pusher.
//
// The provided *bun.DB must be properly configured and connected.
// Schema initialization must be completed before pushing jobs.
func NewPusher(db *bun.DB) *Pusher {
	return &Pusher{db: db}
}

// Push inserts spec as a new queued job.
//
// The job's id is assigned by the database; its run_id is derived from
// that id as "job-<id>" (spec §6.1) and written back in the same
// transaction, so Push either creates a fully-formed row or none at
// all.
func (p *Pusher) Push(ctx context.Context, spec *job.Spec) (*job.Job, error) {
	if !filepath.IsAbs(spec.Workdir) {
		return nil, whirr.ErrInvalidWorkdir
	}
	model := fromSpec(spec, "")
	err := p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(model).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		model.RunID = fmt.Sprintf("job-%d", model.ID)
		if _, err := tx.NewUpdate().Model(model).Column("run_id").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("assign run id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model.toJob(), nil
}
