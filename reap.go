package whirr

import (
	"context"
	"log/slog"
	"time"

	"whirr/internal"
)

// ReapConfig defines the scheduling parameters for a ReapWorker (spec
// §4.4, the Orphan Reaper).
type ReapConfig struct {
	Interval time.Duration
}

// ReapWorker periodically requeues jobs whose lease has expired without
// a renewal: jobs whose worker crashed, lost its network connection to
// a networked store, or otherwise stopped calling Renew in time.
//
// In embedded mode no ReapWorker runs: whirr-worker calls
// Puller.ReapExpired once at startup instead, since a single process is
// the only writer and any expired lease it finds was abandoned by a
// now-dead run of itself (spec §4.4). In networked mode whirr-server
// runs a ReapWorker continuously, since a lease can expire at any time
// relative to any other worker.
//
// ReapWorker has a strict lifecycle:
//   - Start may only be called once.
//   - Stop must be called to terminate the worker.
//   - Stop waits for the internal task to finish or until the timeout
//     expires.
type ReapWorker struct {
	lcBase
	puller   Puller
	task     internal.TimerTask
	log      *slog.Logger
	interval time.Duration
}

// NewReapWorker creates a new ReapWorker using the provided Puller
// implementation and configuration.
//
// The worker is not started automatically. Call Start, or call Once
// directly for a single pass.
func NewReapWorker(puller Puller, config *ReapConfig, log *slog.Logger) *ReapWorker {
	return &ReapWorker{
		puller:   puller,
		log:      log,
		interval: config.Interval,
	}
}

// Once runs a single reap pass immediately, returning the ids of jobs
// that were found expired and requeued. It may be called whether or
// not the worker has been Start-ed.
func (rw *ReapWorker) Once(ctx context.Context) ([]int64, error) {
	return rw.puller.ReapExpired(ctx, time.Now())
}

func (rw *ReapWorker) reap(ctx context.Context) {
	ids, err := rw.puller.ReapExpired(ctx, time.Now())
	if err != nil {
		rw.log.Error("error while reaping expired leases", "error", err)
		return
	}
	if len(ids) > 0 {
		rw.log.Warn("reaped jobs with expired leases", "count", len(ids), "job_ids", ids)
	}
}

// Start begins periodic execution of the reap task.
//
// Start returns ErrDoubleStarted if the worker has already been started.
func (rw *ReapWorker) Start(ctx context.Context) error {
	if err := rw.tryStart(); err != nil {
		return err
	}
	rw.task.Start(ctx, rw.reap, rw.interval)
	return nil
}

// Stop terminates the background reap task.
//
// Stop waits until the task finishes or the specified timeout expires.
// If shutdown does not complete within the timeout, ErrStopTimeout is
// returned.
//
// Stop returns ErrDoubleStopped if the worker is not running.
func (rw *ReapWorker) Stop(timeout time.Duration) error {
	return rw.tryStop(timeout, rw.task.Stop)
}
