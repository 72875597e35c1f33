package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"whirr"
	"whirr/internal/wconfig"
	"whirr/store/httpclient"
	"whirr/store/sqlstore"
)

// drainTimeout bounds how long runWorker waits for an in-flight job to
// finish naturally before a second signal forces it (spec §9).
const drainTimeout = 30 * time.Second

// workerStore is the subset of whirr.Store a WorkerLoop depends on. Both
// *sqlstore.Store (embedded) and *httpclient.Client (networked) satisfy
// it, letting runWorker pick a backend without the rest of the command
// caring which one it got (spec §2: "two realizations of the same
// scheduling contract").
type workerStore interface {
	whirr.Puller
	whirr.Registrar
}

func backoffFrom(cfg wconfig.Backoff) whirr.BackoffConfig {
	return whirr.BackoffConfig{
		MaxRetries:          cfg.MaxRetries,
		InitialInterval:     wconfig.Duration(cfg.InitialInterval),
		MaxInterval:         wconfig.Duration(cfg.MaxInterval),
		Multiplier:          cfg.Multiplier,
		RandomizationFactor: cfg.RandomizationFactor,
	}
}

// buildStore opens the embedded SQLite store or builds an HTTP client
// against server_url, and reaps any jobs left running with an expired
// lease by a previous crashed instance of this same embedded worker
// (spec §4.4: in embedded mode the reaper runs only at worker startup).
func buildStore(cfg *wconfig.Config, log *slog.Logger) (workerStore, func(), error) {
	if cfg.ServerURL != "" {
		client := httpclient.New(cfg.ServerURL, backoffFrom(cfg.Worker.Backoff))
		return client, func() {}, nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sqlstore.NewSQLiteDB(cfg.DataDir + "/whirr.db")
	if err != nil {
		return nil, nil, fmt.Errorf("open embedded store: %w", err)
	}
	if err := sqlstore.InitDB(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init embedded store: %w", err)
	}
	store := sqlstore.New(db)

	if ids, err := store.ReapExpired(context.Background(), time.Now()); err != nil {
		log.Error("startup reap failed", "err", err)
	} else if len(ids) > 0 {
		log.Warn("reaped jobs with expired leases on startup", "job_ids", ids)
	}

	return store, func() { db.Close() }, nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}
	return h
}

// runWorker builds a WorkerLoop from the loaded config and runs it
// until a first SIGINT/SIGTERM begins a graceful drain and a second
// forces immediate termination of any in-flight job (spec §4.3 step 4,
// §9's drain/force escalation).
func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if slot, _ := cmd.Flags().GetString("slot"); slot != "" {
		cfg.Worker.Slot = slot
	}
	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
		cfg.Worker.Concurrency = concurrency
	}

	log := slog.Default()
	store, closeStore, err := buildStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	host := hostname()
	workerID := host + ":" + cfg.Worker.Slot

	supervisor := whirr.NewSupervisor(log)
	loop := whirr.NewWorkerLoop(store, store, supervisor, &whirr.WorkerLoopConfig{
		WorkerID:          workerID,
		Host:              host,
		DataDir:           cfg.DataDir,
		Concurrency:       cfg.Worker.Concurrency,
		Queue:             cfg.Worker.Queue,
		PullInterval:      wconfig.OptionalDuration(cfg.Worker.PullInterval),
		LeaseDuration:     wconfig.Duration(cfg.Worker.LeaseDuration),
		HeartbeatInterval: wconfig.Duration(cfg.Worker.HeartbeatInterval),
		KillGrace:         wconfig.Duration(cfg.Worker.KillGrace),
		Backoff:           backoffFrom(cfg.Worker.Backoff),
		AcceleratorEnvVar: cfg.Worker.AcceleratorEnvVar,
		AcceleratorValues: cfg.Worker.AcceleratorValues,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("start worker loop: %w", err)
	}
	log.Info("worker started", "worker_id", workerID, "data_dir", cfg.DataDir)

	<-ctx.Done()
	log.Info("drain signal received, finishing in-flight job")

	forceCh := make(chan os.Signal, 1)
	signal.Notify(forceCh, syscall.SIGINT, syscall.SIGTERM)

	drainDone := make(chan error, 1)
	go func() { drainDone <- loop.Stop(drainTimeout) }()

	select {
	case err := <-drainDone:
		if err != nil {
			log.Warn("drain did not complete cleanly", "err", err)
		}
	case <-forceCh:
		log.Warn("second signal received, forcing termination")
		loop.Force()
		<-drainDone
	}
	return nil
}
