package sqlstore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"whirr"
	"whirr/registry"
)

// Registrar implements whirr.Registrar using a SQL backend.
//
// A worker record is upserted on RegisterWorker and transitions to
// Stopped on a clean SetStopped call. A crash leaves it Busy (or Idle)
// with a stale LastSeenAt — the signal operators use to notice a dead
// worker (spec §3.2); Registrar performs no liveness detection itself.
type Registrar struct {
	db *bun.DB
}

// NewRegistrar creates a new SQL-backed Registrar.
func NewRegistrar(db *bun.DB) *Registrar {
	return &Registrar{db: db}
}

// RegisterWorker upserts a worker row in Idle status.
func (r *Registrar) RegisterWorker(ctx context.Context, id, host, slot string) error {
	now := time.Now()
	model := &workerModel{
		ID:           id,
		Host:         host,
		Slot:         slot,
		Status:       registry.Idle,
		LastSeenAt:   now,
		RegisteredAt: now,
	}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("host = EXCLUDED.host").
		Set("slot = EXCLUDED.slot").
		Set("status = EXCLUDED.status").
		Set("last_seen_at = EXCLUDED.last_seen_at").
		Exec(ctx)
	return err
}

// Heartbeat refreshes a worker's liveness timestamp and status.
// currentJobID is nil when the worker is idle between jobs.
func (r *Registrar) Heartbeat(ctx context.Context, id string, currentJobID *int64) error {
	status := registry.Idle
	if currentJobID != nil {
		status = registry.Busy
	}
	res, err := r.db.NewUpdate().
		Model((*workerModel)(nil)).
		Set("status = ?", status).
		Set("current_job_id = ?", currentJobID).
		Set("last_seen_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return whirr.ErrNotFound
	}
	return nil
}

// SetStopped marks a worker as cleanly stopped.
func (r *Registrar) SetStopped(ctx context.Context, id string) error {
	res, err := r.db.NewUpdate().
		Model((*workerModel)(nil)).
		Set("status = ?", registry.Stopped).
		Set("current_job_id = NULL").
		Set("last_seen_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return whirr.ErrNotFound
	}
	return nil
}

// ListWorkers returns every known worker.
func (r *Registrar) ListWorkers(ctx context.Context) ([]*registry.Worker, error) {
	var models []*workerModel
	if err := r.db.NewSelect().
		Model(&models).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	ret := make([]*registry.Worker, len(models))
	for i, m := range models {
		ret[i] = m.toWorker()
	}
	return ret, nil
}
