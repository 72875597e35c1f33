package httpclient

import (
	"context"
	"net/http"

	"whirr/job"
)

// Push implements whirr.Pusher by POSTing to /api/v1/jobs.
func (c *Client) Push(ctx context.Context, spec *job.Spec) (*job.Job, error) {
	req := map[string]any{
		"command_argv": spec.CommandArgv,
		"workdir":      spec.Workdir,
		"name":         spec.Name,
		"tags":         spec.Tags,
		"config":       spec.Config,
	}
	var resp struct {
		JobID  int64  `json:"job_id"`
		RunID  string `json:"run_id"`
		RunDir string `json:"run_dir"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/jobs", req, &resp); err != nil {
		return nil, err
	}
	return &job.Job{
		Spec:   *spec,
		ID:     resp.JobID,
		RunID:  resp.RunID,
		Status: job.Queued,
	}, nil
}
