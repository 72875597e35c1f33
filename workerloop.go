package whirr

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"whirr/internal"
	"whirr/job"
	"whirr/rundir"
)

// WorkerLoopConfig defines runtime behavior of a WorkerLoop.
//
// Concurrency specifies the number of jobs a single worker process may
// run at once; Queue specifies the internal buffering capacity between
// claiming jobs from the store and dispatching them to a free slot.
//
// PullInterval defines how often the worker polls the store for a
// queued job. LeaseDuration is the visibility timeout assigned at
// claim time; HeartbeatInterval is how often the Supervisor renews it
// while a job's child process runs, and must be well under
// LeaseDuration (spec §4.1 recommends a third or less).
//
// KillGrace is the cooperative-termination grace period passed to
// every Supervisor.Run call (spec §4.2).
//
// AcceleratorEnvVar and AcceleratorValues implement the advisory
// per-slot accelerator-visibility assignment of spec §4.3: slot i of a
// concurrent worker gets AcceleratorEnvVar=AcceleratorValues[i] in its
// child's environment. Leave AcceleratorEnvVar empty to disable.
//
// Backoff governs retries of Pull and Renew against ErrStoreUnavailable
// (spec §7); it does not apply to Complete or any other call.
type WorkerLoopConfig struct {
	WorkerID          string
	Host              string
	DataDir           string
	Concurrency       int
	Queue             int
	PullInterval      time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
	KillGrace         time.Duration
	Backoff           BackoffConfig

	AcceleratorEnvVar string
	AcceleratorValues []string
}

// WorkerLoop coordinates claiming, running and completing jobs.
//
// WorkerLoop implements whirr's worker-side lifecycle in full:
//
//  1. Periodically claim a queued job from the store (Pull).
//  2. Create its run directory and dispatch it to a free slot.
//  3. Hand the job to a Supervisor, which runs the command and renews
//     its lease on a fixed cadence.
//  4. Record the terminal run state and report it to the store
//     (Complete) — unless the lease was lost mid-run, in which case the
//     job is abandoned without a final write (spec §7).
//
// WorkerLoop has a two-stage shutdown, mirroring spec §9's drain/force
// escalation:
//   - Stop drains: it stops claiming new jobs and waits for in-flight
//     jobs to finish naturally, up to its timeout.
//   - Force immediately cancels every in-flight job's supervision,
//     triggering cooperative-then-forceful termination of each child
//     process group. It may be called before or after Stop.
type WorkerLoop struct {
	lcBase
	puller     Puller
	registrar  Registrar
	supervisor *Supervisor
	pool       *internal.WorkerPool[*job.Job]
	pullTask   internal.TimerTask
	hbTask     internal.TimerTask
	log        *slog.Logger

	workerID string
	host     string
	dataDir  string

	lease     time.Duration
	pullEvery time.Duration
	hbEvery   time.Duration
	grace     time.Duration
	backoff  backoffCounter
	accelVar string
	accel    []string

	slots       chan int
	currentJob  atomic.Int64 // 0 when idle; job ids are always > 0
	forceCtx    context.Context
	forceCancel context.CancelFunc
}

// NewWorkerLoop creates a new WorkerLoop. The loop is not started
// automatically; call Start to begin claiming and running jobs.
func NewWorkerLoop(puller Puller, registrar Registrar, supervisor *Supervisor, config *WorkerLoopConfig, log *slog.Logger) *WorkerLoop {
	pullEvery := config.PullInterval
	if pullEvery <= 0 {
		pullEvery = config.LeaseDuration/3 + 1
	}
	return &WorkerLoop{
		puller:     puller,
		registrar:  registrar,
		supervisor: supervisor,
		pool:       internal.NewWorkerPool[*job.Job](config.Concurrency, config.Queue, log),
		log:        log,
		workerID:   config.WorkerID,
		host:       config.Host,
		dataDir:    config.DataDir,
		lease:      config.LeaseDuration,
		pullEvery:  pullEvery,
		hbEvery:    config.HeartbeatInterval,
		grace:      config.KillGrace,
		backoff:    backoffCounter{config.Backoff},
		accelVar:   config.AcceleratorEnvVar,
		accel:      config.AcceleratorValues,
		slots:      make(chan int, config.Concurrency),
	}
}

// pullWithBackoff retries Pull against ErrStoreUnavailable with the
// configured backoff policy. ErrNotFound (no queued job) is returned
// immediately, not retried.
func (wl *WorkerLoop) pullWithBackoff(ctx context.Context) (*job.Job, error) {
	var attempt uint32
	for {
		j, err := wl.puller.Pull(ctx, wl.workerID, wl.lease)
		if err == nil || !errors.Is(err, ErrStoreUnavailable) {
			return j, err
		}
		attempt++
		wait, ok := wl.backoff.next(attempt)
		if !ok {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// renewWithBackoff retries Renew against ErrStoreUnavailable. ErrNotOwner
// is returned immediately: the Supervisor interprets it as a signal to
// abandon the job rather than something to retry past.
func (wl *WorkerLoop) renewWithBackoff(ctx context.Context, jobID int64) (bool, error) {
	var attempt uint32
	for {
		cancelRequested, err := wl.puller.Renew(ctx, jobID, wl.workerID, wl.lease)
		if err == nil || !errors.Is(err, ErrStoreUnavailable) {
			return cancelRequested, err
		}
		attempt++
		wait, ok := wl.backoff.next(attempt)
		if !ok {
			return false, err
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (wl *WorkerLoop) pull(ctx context.Context) {
	j, err := wl.pullWithBackoff(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return
		}
		wl.log.Error("pull failed", "err", err)
		return
	}
	if j == nil {
		return
	}
	if !wl.pool.Push(j) {
		wl.log.Debug("job push interrupted via shutdown", "job_id", j.ID)
	}
}

// buildEnv assembles the fixed and advisory environment variables
// injected into a job's child process (spec §4.2, §4.3).
func (wl *WorkerLoop) buildEnv(j *job.Job, runDir string, slot int) map[string]string {
	env := map[string]string{
		"WHIRR_JOB_ID":  strconv.FormatInt(j.ID, 10),
		"WHIRR_RUN_ID":  j.RunID,
		"WHIRR_RUN_DIR": runDir,
	}
	if wl.accelVar != "" && slot < len(wl.accel) {
		env[wl.accelVar] = wl.accel[slot]
	}
	return env
}

func (wl *WorkerLoop) handle(ctx context.Context, j *job.Job) {
	slot := <-wl.slots
	defer func() { wl.slots <- slot }()

	wl.currentJob.Store(j.ID)
	defer wl.currentJob.Store(0)

	dir := rundir.Open(wl.dataDir, j.RunID)
	if err := dir.Create(); err != nil {
		wl.log.Error("cannot create run directory", "job_id", j.ID, "run_id", j.RunID, "err", err)
		return
	}
	var configFile string
	if err := dir.WriteConfig(j.Config); err != nil {
		wl.log.Error("cannot write run config", "job_id", j.ID, "run_id", j.RunID, "err", err)
	} else {
		configFile = "config.json"
	}

	startedAt := time.Now()
	meta := rundir.Meta{
		RunID:      j.RunID,
		JobID:      j.ID,
		Name:       j.Name,
		Tags:       j.Tags,
		Status:     job.Running,
		WorkerID:   &wl.workerID,
		CreatedAt:  j.CreatedAt,
		StartedAt:  &startedAt,
		ConfigFile: configFile,
	}
	if err := dir.WriteMeta(meta); err != nil {
		wl.log.Error("cannot write run meta", "job_id", j.ID, "run_id", j.RunID, "err", err)
	}

	req := RunRequest{
		JobID:       j.ID,
		RunID:       j.RunID,
		RunDir:      dir.Path(),
		CommandArgv: j.CommandArgv,
		Workdir:     j.Workdir,
		Env:         wl.buildEnv(j, dir.Path(), slot),
		Renew: func(rctx context.Context) (bool, error) {
			return wl.renewWithBackoff(rctx, j.ID)
		},
		HeartbeatInterval: wl.hbEvery,
		KillGrace:         wl.grace,
	}

	res, err := wl.supervisor.Run(wl.forceCtx, req)
	if err != nil {
		wl.log.Error("supervisor run failed", "job_id", j.ID, "run_id", j.RunID, "err", err)
		return
	}

	if res.Abandoned {
		wl.log.Warn("job abandoned: lease lost mid-run", "job_id", j.ID, "run_id", j.RunID)
		return
	}

	finishedAt := time.Now()
	duration := finishedAt.Sub(startedAt).Seconds()
	meta.Status = res.Status
	meta.FinishedAt = &finishedAt
	meta.DurationSeconds = &duration
	meta.ExitCode = &res.ExitCode
	if err := dir.WriteMeta(meta); err != nil {
		wl.log.Error("cannot write final run meta", "job_id", j.ID, "run_id", j.RunID, "err", err)
	}

	if err := wl.puller.Complete(context.WithoutCancel(ctx), j.ID, wl.workerID, res.ExitCode, res.Status); err != nil {
		wl.log.Error("cannot complete job", "job_id", j.ID, "err", err)
	}
}

func (wl *WorkerLoop) heartbeat(ctx context.Context) {
	var current *int64
	if id := wl.currentJob.Load(); id != 0 {
		current = &id
	}
	if err := wl.registrar.Heartbeat(ctx, wl.workerID, current); err != nil {
		wl.log.Error("worker heartbeat failed", "worker_id", wl.workerID, "err", err)
	}
}

// Start begins background pulling and processing of jobs.
//
// Start returns ErrDoubleStarted if the loop has already been started.
func (wl *WorkerLoop) Start(ctx context.Context) error {
	if err := wl.tryStart(); err != nil {
		return err
	}
	wl.forceCtx, wl.forceCancel = context.WithCancel(context.Background())
	for i := 0; i < cap(wl.slots); i++ {
		wl.slots <- i
	}
	if err := wl.registrar.RegisterWorker(ctx, wl.workerID, wl.host, ""); err != nil {
		wl.log.Error("worker registration failed", "worker_id", wl.workerID, "err", err)
	}
	wl.pool.Start(ctx, wl.handle)
	wl.pullTask.Start(ctx, wl.pull, wl.pullEvery)
	wl.hbTask.Start(ctx, wl.heartbeat, wl.hbEvery)
	return nil
}

// Force immediately cancels supervision of every in-flight job,
// triggering cooperative-then-forceful termination of each child
// process group (spec §9's second Ctrl-C / force-stop signal). Force
// may be called independently of Stop.
func (wl *WorkerLoop) Force() {
	if wl.forceCancel != nil {
		wl.forceCancel()
	}
}

func (wl *WorkerLoop) doStop() internal.DoneChan {
	first := wl.pullTask.Stop()
	second := wl.hbTask.Stop()
	third := wl.pool.Stop()
	done := internal.Combine(internal.Combine(first, second), third)
	if err := wl.registrar.SetStopped(context.Background(), wl.workerID); err != nil {
		wl.log.Error("cannot mark worker stopped", "worker_id", wl.workerID, "err", err)
	}
	return done
}

// Stop initiates graceful shutdown: it stops claiming new jobs and
// waits for in-flight jobs to finish naturally, up to timeout. It does
// not interrupt running children — call Force for that.
//
// Stop returns ErrStopTimeout if shutdown does not complete within
// timeout, and ErrDoubleStopped if the loop is not running.
func (wl *WorkerLoop) Stop(timeout time.Duration) error {
	return wl.tryStop(timeout, wl.doStop)
}

