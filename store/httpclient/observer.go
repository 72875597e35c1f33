package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"whirr"
	"whirr/job"
)

// GetJob implements whirr.Observer.GetJob via GET /api/v1/jobs/{id}.
func (c *Client) GetJob(ctx context.Context, id int64) (*job.Job, error) {
	var w wireJob
	path := "/api/v1/jobs/" + strconv.FormatInt(id, 10)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &w); err != nil {
		return nil, err
	}
	return w.toJob(), nil
}

// ListActive implements whirr.Observer.ListActive by merging the queued
// and running pages of /api/v1/runs is not sufficient (that endpoint
// returns run-index rows, not job rows with worker ownership), so
// ListActive instead lists runs in both statuses and resolves each via
// GetJob. This is intentionally not optimized: remote administrative
// tooling, not the hot worker path, is the only caller (spec §4.5).
func (c *Client) ListActive(ctx context.Context) ([]*job.Job, error) {
	var active []*job.Job
	for _, s := range []job.Status{job.Queued, job.Running} {
		runs, err := c.ListRuns(ctx, whirr.RunFilter{Status: s})
		if err != nil {
			return nil, err
		}
		for _, run := range runs {
			j, err := c.GetJob(ctx, run.JobID)
			if err != nil {
				return nil, err
			}
			active = append(active, j)
		}
	}
	return active, nil
}

// ListRuns implements whirr.Observer.ListRuns via GET /api/v1/runs.
func (c *Client) ListRuns(ctx context.Context, filter whirr.RunFilter) ([]*whirr.RunIndex, error) {
	q := url.Values{}
	if filter.Status != job.Unknown {
		q.Set("status", filter.Status.String())
	}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/api/v1/runs"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var wires []wireRun
	if _, err := c.do(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}
	runs := make([]*whirr.RunIndex, len(wires))
	for i := range wires {
		runs[i] = wires[i].toRunIndex()
	}
	return runs, nil
}

// GetRun implements whirr.Observer.GetRun via GET /api/v1/runs/{run_id}.
func (c *Client) GetRun(ctx context.Context, runID string) (*whirr.RunIndex, error) {
	var detail struct {
		wireRun
	}
	path := "/api/v1/runs/" + url.PathEscape(runID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return detail.toRunIndex(), nil
}

// Status implements whirr.Observer.Status via GET /api/v1/status.
func (c *Client) Status(ctx context.Context) (whirr.StatusCounts, error) {
	var resp struct {
		whirr.StatusCounts
		WorkersIdle int64 `json:"workers_idle"`
		WorkersBusy int64 `json:"workers_busy"`
	}
	_, err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &resp)
	counts := resp.StatusCounts
	counts.WorkersIdle = resp.WorkersIdle
	counts.WorkersBusy = resp.WorkersBusy
	return counts, err
}

var _ whirr.Observer = (*Client)(nil)
