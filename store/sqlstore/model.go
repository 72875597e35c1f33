package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"whirr/job"
	"whirr/registry"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`
	ID            int64  `bun:"id,pk,autoincrement"`
	RunID         string `bun:"run_id,notnull,unique"`

	Name        string         `bun:"name,notnull"`
	CommandArgv []string       `bun:"command_argv,notnull"`
	Workdir     string         `bun:"workdir,notnull"`
	Tags        []string       `bun:"tags"`
	Config      map[string]any `bun:"config"`

	Status   job.Status `bun:"status,notnull,default:0"`
	WorkerID *string    `bun:"worker_id"`

	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	StartedAt  *time.Time `bun:"started_at"`
	FinishedAt *time.Time `bun:"finished_at"`

	HeartbeatAt       *time.Time `bun:"heartbeat_at"`
	LeaseExpiresAt    *time.Time `bun:"lease_expires_at"`
	CancelRequestedAt *time.Time `bun:"cancel_requested_at"`

	ExitCode *int   `bun:"exit_code"`
	Attempt  uint32 `bun:"attempt,notnull,default:1"`

	ParentJobID *int64 `bun:"parent_job_id"`
}

func (jm *jobModel) toJob() *job.Job {
	return &job.Job{
		Spec: job.Spec{
			Name:        jm.Name,
			CommandArgv: jm.CommandArgv,
			Workdir:     jm.Workdir,
			Tags:        jm.Tags,
			Config:      jm.Config,
		},
		ID:                jm.ID,
		RunID:             jm.RunID,
		Status:            jm.Status,
		WorkerID:          jm.WorkerID,
		CreatedAt:         jm.CreatedAt,
		StartedAt:         jm.StartedAt,
		FinishedAt:        jm.FinishedAt,
		HeartbeatAt:       jm.HeartbeatAt,
		LeaseExpiresAt:    jm.LeaseExpiresAt,
		CancelRequestedAt: jm.CancelRequestedAt,
		ExitCode:          jm.ExitCode,
		Attempt:           jm.Attempt,
		ParentJobID:       jm.ParentJobID,
	}
}

func fromSpec(spec *job.Spec, runID string) *jobModel {
	return &jobModel{
		RunID:       runID,
		Name:        spec.Name,
		CommandArgv: spec.CommandArgv,
		Workdir:     spec.Workdir,
		Tags:        spec.Tags,
		Config:      spec.Config,
		Status:      job.Queued,
		CreatedAt:   time.Now(),
		Attempt:     1,
	}
}

type workerModel struct {
	bun.BaseModel `bun:"table:workers"`
	ID            string          `bun:"id,pk"`
	Host          string          `bun:"host,notnull"`
	Slot          string          `bun:"slot"`
	Status        registry.Status `bun:"status,notnull,default:0"`
	CurrentJobID  *int64          `bun:"current_job_id"`
	LastSeenAt    time.Time       `bun:"last_seen_at,nullzero,notnull,default:current_timestamp"`
	RegisteredAt  time.Time       `bun:"registered_at,nullzero,notnull,default:current_timestamp"`
}

func (wm *workerModel) toWorker() *registry.Worker {
	return &registry.Worker{
		ID:           wm.ID,
		Host:         wm.Host,
		Slot:         wm.Slot,
		Status:       wm.Status,
		CurrentJobID: wm.CurrentJobID,
		LastSeenAt:   wm.LastSeenAt,
		RegisteredAt: wm.RegisteredAt,
	}
}
