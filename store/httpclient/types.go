package httpclient

import (
	"time"

	"whirr"
	"whirr/job"
	"whirr/registry"
)

// wireJob mirrors httpapi's jobDTO: the JSON shape of a job row over the
// wire (spec §3.1, §6.2).
type wireJob struct {
	ID          int64          `json:"id"`
	RunID       string         `json:"run_id"`
	Name        string         `json:"name"`
	CommandArgv []string       `json:"command_argv"`
	Workdir     string         `json:"workdir"`
	Tags        []string       `json:"tags,omitempty"`
	Config      map[string]any `json:"config,omitempty"`

	Status   job.Status `json:"status"`
	WorkerID *string    `json:"worker_id,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	HeartbeatAt       *time.Time `json:"heartbeat_at,omitempty"`
	LeaseExpiresAt    *time.Time `json:"lease_expires_at,omitempty"`
	CancelRequestedAt *time.Time `json:"cancel_requested_at,omitempty"`

	ExitCode *int   `json:"exit_code,omitempty"`
	Attempt  uint32 `json:"attempt"`

	ParentJobID *int64 `json:"parent_job_id,omitempty"`
}

func (w *wireJob) toJob() *job.Job {
	return &job.Job{
		Spec: job.Spec{
			Name:        w.Name,
			CommandArgv: w.CommandArgv,
			Workdir:     w.Workdir,
			Tags:        w.Tags,
			Config:      w.Config,
		},
		ID:                w.ID,
		RunID:             w.RunID,
		Status:            w.Status,
		WorkerID:          w.WorkerID,
		CreatedAt:         w.CreatedAt,
		StartedAt:         w.StartedAt,
		FinishedAt:        w.FinishedAt,
		HeartbeatAt:       w.HeartbeatAt,
		LeaseExpiresAt:    w.LeaseExpiresAt,
		CancelRequestedAt: w.CancelRequestedAt,
		ExitCode:          w.ExitCode,
		Attempt:           w.Attempt,
		ParentJobID:       w.ParentJobID,
	}
}

type wireWorker struct {
	ID           string          `json:"id"`
	Host         string          `json:"host"`
	Slot         string          `json:"slot"`
	Status       registry.Status `json:"status"`
	CurrentJobID *int64          `json:"current_job_id,omitempty"`
	LastSeenAt   time.Time       `json:"last_seen_at"`
	RegisteredAt time.Time       `json:"registered_at"`
}

func (w *wireWorker) toWorker() *registry.Worker {
	return &registry.Worker{
		ID:           w.ID,
		Host:         w.Host,
		Slot:         w.Slot,
		Status:       w.Status,
		CurrentJobID: w.CurrentJobID,
		LastSeenAt:   w.LastSeenAt,
		RegisteredAt: w.RegisteredAt,
	}
}

type wireRun struct {
	RunID      string     `json:"run_id"`
	JobID      int64      `json:"job_id"`
	Name       string     `json:"name"`
	Status     job.Status `json:"status"`
	Tags       []string   `json:"tags,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (w *wireRun) toRunIndex() *whirr.RunIndex {
	return &whirr.RunIndex{
		RunID:      w.RunID,
		JobID:      w.JobID,
		Name:       w.Name,
		Status:     w.Status,
		Tags:       w.Tags,
		StartedAt:  w.StartedAt,
		FinishedAt: w.FinishedAt,
	}
}
