package whirr

import (
	"context"

	"whirr/registry"
)

// Registrar manages worker presence rows (spec §3.2, §4.3 step 3).
//
// A worker upserts its row with RegisterWorker at startup and refreshes
// it with Heartbeat; SetStopped marks a clean shutdown. A worker that
// crashes leaves its row Busy with a stale LastSeenAt — Registrar makes
// no attempt to detect this itself; that is ReapWorker/WorkerLoop's job,
// driven off the Job lease rather than the worker row.
type Registrar interface {

	// RegisterWorker upserts a worker row in status idle.
	RegisterWorker(ctx context.Context, id, host, slot string) error

	// Heartbeat refreshes LastSeenAt for id and, when jobID is non-nil,
	// marks the worker busy with that job; a nil jobID marks it idle.
	Heartbeat(ctx context.Context, id string, jobID *int64) error

	// SetStopped transitions a worker row to stopped. Best-effort: it is
	// not called on a crash.
	SetStopped(ctx context.Context, id string) error

	// ListWorkers returns every known worker row.
	ListWorkers(ctx context.Context) ([]*registry.Worker, error)
}
