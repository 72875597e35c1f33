package httpapi

import (
	"time"

	"whirr"
	"whirr/job"
	"whirr/registry"
	"whirr/rundir"
)

// jobDTO is the JSON representation of a job row (spec §3.1, §6.2).
type jobDTO struct {
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

func toJobDTO(j *job.Job) jobDTO {
	return jobDTO{
		ID:                j.ID,
		RunID:             j.RunID,
		Name:              j.Name,
		CommandArgv:       j.CommandArgv,
		Workdir:           j.Workdir,
		Tags:              j.Tags,
		Config:            j.Config,
		Status:            j.Status,
		WorkerID:          j.WorkerID,
		CreatedAt:         j.CreatedAt,
		StartedAt:         j.StartedAt,
		FinishedAt:        j.FinishedAt,
		HeartbeatAt:       j.HeartbeatAt,
		LeaseExpiresAt:    j.LeaseExpiresAt,
		CancelRequestedAt: j.CancelRequestedAt,
		ExitCode:          j.ExitCode,
		Attempt:           j.Attempt,
		ParentJobID:       j.ParentJobID,
	}
}

// workerDTO is the JSON representation of a worker row (spec §3.2).
type workerDTO struct {
	ID           string         `json:"id"`
	Host         string         `json:"host"`
	Slot         string         `json:"slot"`
	Status       registry.Status `json:"status"`
	CurrentJobID *int64         `json:"current_job_id,omitempty"`
	LastSeenAt   time.Time      `json:"last_seen_at"`
	RegisteredAt time.Time      `json:"registered_at"`
}

func toWorkerDTO(w *registry.Worker) workerDTO {
	return workerDTO{
		ID:           w.ID,
		Host:         w.Host,
		Slot:         w.Slot,
		Status:       w.Status,
		CurrentJobID: w.CurrentJobID,
		LastSeenAt:   w.LastSeenAt,
		RegisteredAt: w.RegisteredAt,
	}
}

// runDTO is the JSON representation of a run-index row (spec §3.3).
type runDTO struct {
	RunID      string     `json:"run_id"`
	JobID      int64      `json:"job_id"`
	Name       string     `json:"name"`
	Status     job.Status `json:"status"`
	Tags       []string   `json:"tags,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func toRunDTO(r *whirr.RunIndex) runDTO {
	return runDTO{
		RunID:      r.RunID,
		JobID:      r.JobID,
		Name:       r.Name,
		Status:     r.Status,
		Tags:       r.Tags,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// runDetailDTO is the response of GET /runs/{run_id}: the index row plus
// its parsed run-directory meta.json (spec §6.2 "run index + parsed
// meta").
type runDetailDTO struct {
	runDTO
	Meta rundir.Meta `json:"meta"`
}

type artifactDTO struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

type submitRequest struct {
	CommandArgv []string       `json:"command_argv"`
	Workdir     string         `json:"workdir"`
	Name        string         `json:"name,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

type submitResponse struct {
	JobID   int64  `json:"job_id"`
	RunID   string `json:"run_id"`
	RunDir  string `json:"run_dir"`
	Message string `json:"message"`
}

type cancelResponse struct {
	Status job.Status `json:"status"`
}

type retryResponse struct {
	JobID int64 `json:"job_id"`
}

type claimRequest struct {
	WorkerID     string `json:"worker_id"`
	LeaseSeconds int64  `json:"lease_seconds"`
}

type heartbeatRequest struct {
	WorkerID string `json:"worker_id"`
}

type heartbeatResponse struct {
	LeaseExpiresAt  time.Time `json:"lease_expires_at"`
	CancelRequested bool      `json:"cancel_requested"`
}

type completeRequest struct {
	WorkerID string     `json:"worker_id"`
	ExitCode int        `json:"exit_code"`
	Status   job.Status `json:"status"`
}

type registerRequest struct {
	WorkerID string `json:"worker_id"`
	Host     string `json:"host"`
	Slot     string `json:"slot"`
}

type statusResponse struct {
	Queued      int64 `json:"queued"`
	Running     int64 `json:"running"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	Cancelled   int64 `json:"cancelled"`
	WorkersIdle int64 `json:"workers_idle"`
	WorkersBusy int64 `json:"workers_busy"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type cancelAllResponse struct {
	Count int64 `json:"count"`
}

type reapResponse struct {
	JobIDs []int64 `json:"job_ids"`
}
