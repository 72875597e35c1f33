package whirr

import (
	"context"
	"log/slog"
	"time"

	"whirr/internal"
	"whirr/job"
)

// CleanConfig defines the scheduling and filtering parameters for a
// CleanWorker (spec §6.1's run retention).
//
// Status restricts cleaning to runs in this terminal status; Cleaner
// implementations reject non-terminal statuses with ErrBadStatus.
//
// Interval defines how often the cleaner runs.
//
// If Before is true, deletion is restricted to runs whose FinishedAt
// is older than now - Delta.
type CleanConfig struct {
	Status   job.Status
	Interval time.Duration
	Before   bool
	Delta    time.Duration
}

// CleanWorker periodically invokes a Cleaner implementation to purge
// old terminal runs, keeping a long-lived embedded store or a shared
// networked store from growing without bound.
//
// CleanWorker does not participate in job dispatch and never touches a
// run still in progress — only jobs already in a terminal status are
// eligible.
//
// CleanWorker has a strict lifecycle:
//   - Start may only be called once.
//   - Stop must be called to terminate the worker.
//   - Stop waits for the internal task to finish or until the timeout
//     expires.
type CleanWorker struct {
	lcBase
	cleaner  Cleaner
	task     internal.TimerTask
	log      *slog.Logger
	status   job.Status
	interval time.Duration
	before   bool
	delta    time.Duration
}

// NewCleanWorker creates a new CleanWorker using the provided Cleaner
// implementation and configuration.
//
// The worker is not started automatically. Call Start to begin
// periodic cleaning.
func NewCleanWorker(cleaner Cleaner, config *CleanConfig, log *slog.Logger) *CleanWorker {
	return &CleanWorker{
		cleaner:  cleaner,
		log:      log,
		status:   config.Status,
		interval: config.Interval,
		before:   config.Before,
		delta:    config.Delta,
	}
}

func (cw *CleanWorker) beforeStamp() *time.Time {
	if !cw.before {
		return nil
	}
	ret := time.Now()
	if cw.delta != 0 {
		ret = ret.Add(-cw.delta)
	}
	return &ret
}

func (cw *CleanWorker) clean(ctx context.Context) {
	before := cw.beforeStamp()
	count, err := cw.cleaner.Clean(ctx, cw.status, before)
	if err != nil {
		cw.log.Error("error while cleaning runs", "status", cw.status, "error", err)
		return
	}
	cw.log.Info("cleaned runs", "status", cw.status, "count", count)
}

// Start begins periodic execution of the cleaning task.
//
// Start returns ErrDoubleStarted if the worker has already been started.
func (cw *CleanWorker) Start(ctx context.Context) error {
	if err := cw.tryStart(); err != nil {
		return err
	}
	cw.task.Start(ctx, cw.clean, cw.interval)
	return nil
}

// Stop terminates the background cleaning task.
//
// Stop waits until the task finishes or the specified timeout expires.
// If shutdown does not complete within the timeout, ErrStopTimeout is
// returned.
//
// Stop returns ErrDoubleStopped if the worker is not running.
func (cw *CleanWorker) Stop(timeout time.Duration) error {
	return cw.tryStop(timeout, cw.task.Stop)
}
