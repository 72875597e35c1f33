package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"whirr"
	"whirr/job"
	"whirr/registry"
)

// Observer implements whirr.Observer using a SQL backend.
//
// Observer provides read-only access to job state. It does not
// participate in lease handling or state transitions and must not
// modify job records.
type Observer struct {
	db *bun.DB
}

// NewObserver creates a new SQL-backed Observer.
func NewObserver(db *bun.DB) *Observer {
	return &Observer{db: db}
}

// GetJob retrieves a job by id, returning whirr.ErrNotFound if it does
// not exist.
func (o *Observer) GetJob(ctx context.Context, id int64) (*job.Job, error) {
	var model jobModel
	err := o.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, whirr.ErrNotFound
		}
		return nil, err
	}
	return model.toJob(), nil
}

// ListActive returns every job currently Queued or Running.
func (o *Observer) ListActive(ctx context.Context) ([]*job.Job, error) {
	var models []*jobModel
	err := o.db.NewSelect().
		Model(&models).
		Where("status IN (?, ?)", job.Queued, job.Running).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]*job.Job, len(models))
	for i, m := range models {
		ret[i] = m.toJob()
	}
	return ret, nil
}

// ListRuns projects run index entries directly from the jobs table
// (whirr.RunIndex carries exactly the columns jobs already has), applying
// whirr.RunFilter.
func (o *Observer) ListRuns(ctx context.Context, filter whirr.RunFilter) ([]*whirr.RunIndex, error) {
	query := o.db.NewSelect().Model((*jobModel)(nil)).Order("created_at DESC")
	if filter.Status != job.Unknown {
		query.Where("status = ?", filter.Status)
	}
	if filter.Tag != "" {
		query.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}
	if filter.Limit > 0 {
		query.Limit(filter.Limit)
	}

	var models []*jobModel
	if err := query.Scan(ctx, &models); err != nil {
		return nil, err
	}
	ret := make([]*whirr.RunIndex, len(models))
	for i, m := range models {
		ret[i] = &whirr.RunIndex{
			RunID:      m.RunID,
			JobID:      m.ID,
			Name:       m.Name,
			Status:     m.Status,
			Tags:       m.Tags,
			StartedAt:  m.StartedAt,
			FinishedAt: m.FinishedAt,
		}
	}
	return ret, nil
}

// GetRun looks up a single run index entry by its run id.
func (o *Observer) GetRun(ctx context.Context, runID string) (*whirr.RunIndex, error) {
	var model jobModel
	err := o.db.NewSelect().Model(&model).Where("run_id = ?", runID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, whirr.ErrNotFound
		}
		return nil, err
	}
	return &whirr.RunIndex{
		RunID:      model.RunID,
		JobID:      model.ID,
		Name:       model.Name,
		Status:     model.Status,
		Tags:       model.Tags,
		StartedAt:  model.StartedAt,
		FinishedAt: model.FinishedAt,
	}, nil
}

// Status returns aggregate job and worker counts for the status
// endpoint (spec §6.2 GET /api/v1/status).
func (o *Observer) Status(ctx context.Context) (whirr.StatusCounts, error) {
	var counts whirr.StatusCounts
	var rows []struct {
		Status job.Status `bun:"status"`
		Count  int64      `bun:"count"`
	}
	if err := o.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("status, count(*) AS count").
		GroupExpr("status").
		Scan(ctx, &rows); err != nil {
		return counts, err
	}
	for _, r := range rows {
		switch r.Status {
		case job.Queued:
			counts.Queued = r.Count
		case job.Running:
			counts.Running = r.Count
		case job.Completed:
			counts.Completed = r.Count
		case job.Failed:
			counts.Failed = r.Count
		case job.Cancelled:
			counts.Cancelled = r.Count
		}
	}

	idle, busy, err := o.workerCounts(ctx)
	if err != nil {
		return counts, err
	}
	counts.WorkersIdle = idle
	counts.WorkersBusy = busy
	return counts, nil
}

func (o *Observer) workerCounts(ctx context.Context) (idle, busy int64, err error) {
	idleCount, err := o.db.NewSelect().
		Model((*workerModel)(nil)).
		Where("status = ?", registry.Idle).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	busyCount, err := o.db.NewSelect().
		Model((*workerModel)(nil)).
		Where("status = ?", registry.Busy).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	return int64(idleCount), int64(busyCount), nil
}
