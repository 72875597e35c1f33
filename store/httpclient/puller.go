package httpclient

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"whirr"
	"whirr/job"
)

// Pull implements whirr.Puller.Pull via POST /api/v1/jobs/claim,
// retried against whirr.ErrStoreUnavailable (spec §7).
func (c *Client) Pull(ctx context.Context, workerID string, lease time.Duration) (*job.Job, error) {
	req := map[string]any{
		"worker_id":     workerID,
		"lease_seconds": int64(lease / time.Second),
	}
	var w wireJob
	status, err := c.doWithBackoff(ctx, http.MethodPost, "/api/v1/jobs/claim", req, &w)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return w.toJob(), nil
}

// Renew implements whirr.Puller.Renew via POST
// /api/v1/jobs/{id}/heartbeat, retried against whirr.ErrStoreUnavailable
// (spec §7).
func (c *Client) Renew(ctx context.Context, jobID int64, workerID string, lease time.Duration) (bool, error) {
	req := map[string]any{"worker_id": workerID}
	var resp struct {
		CancelRequested bool `json:"cancel_requested"`
	}
	path := "/api/v1/jobs/" + strconv.FormatInt(jobID, 10) + "/heartbeat"
	if _, err := c.doWithBackoff(ctx, http.MethodPost, path, req, &resp); err != nil {
		return false, err
	}
	return resp.CancelRequested, nil
}

// Complete implements whirr.Puller.Complete via POST
// /api/v1/jobs/{id}/complete. Not retried: a store outage mid-complete
// must surface to the caller rather than silently retrying a terminal
// state transition (spec §7 retries claim_next and renew only).
func (c *Client) Complete(ctx context.Context, jobID int64, workerID string, exitCode int, status job.Status) error {
	req := map[string]any{
		"worker_id": workerID,
		"exit_code": exitCode,
		"status":    status,
	}
	path := "/api/v1/jobs/" + strconv.FormatInt(jobID, 10) + "/complete"
	_, err := c.do(ctx, http.MethodPost, path, req, nil)
	return err
}

// RequestCancel implements whirr.Puller.RequestCancel via POST
// /api/v1/jobs/{id}/cancel.
func (c *Client) RequestCancel(ctx context.Context, jobID int64) (job.Status, error) {
	var resp struct {
		Status job.Status `json:"status"`
	}
	path := "/api/v1/jobs/" + strconv.FormatInt(jobID, 10) + "/cancel"
	if _, err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return job.Unknown, err
	}
	return resp.Status, nil
}

// CancelAllQueued implements whirr.Puller.CancelAllQueued via POST
// /api/v1/jobs/cancel-queued.
func (c *Client) CancelAllQueued(ctx context.Context) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/jobs/cancel-queued", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Retry implements whirr.Puller.Retry via POST /api/v1/jobs/{id}/retry.
func (c *Client) Retry(ctx context.Context, jobID int64) (*job.Job, error) {
	var resp struct {
		JobID int64 `json:"job_id"`
	}
	path := "/api/v1/jobs/" + strconv.FormatInt(jobID, 10) + "/retry"
	if _, err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return c.GetJob(ctx, resp.JobID)
}

// ReapExpired implements whirr.Puller.ReapExpired via POST
// /api/v1/jobs/reap. now is accepted for interface-shape symmetry with
// the embedded store but is not sent: the server always reaps against
// its own clock.
func (c *Client) ReapExpired(ctx context.Context, now time.Time) ([]int64, error) {
	var resp struct {
		JobIDs []int64 `json:"job_ids"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/jobs/reap", nil, &resp); err != nil {
		return nil, err
	}
	return resp.JobIDs, nil
}

var _ whirr.Puller = (*Client)(nil)
