package whirr_test

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"

	"whirr"
	"whirr/job"
	"whirr/store/sqlstore"
)

func newWorkerLoopTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", "file::memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := sqlstore.InitDB(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestWorkerLoopRunsJobToCompletion(t *testing.T) {
	db := newWorkerLoopTestDB(t)
	ctx := context.Background()

	pusher := sqlstore.NewPusher(db)
	puller := sqlstore.NewPuller(db)
	observer := sqlstore.NewObserver(db)
	registrar := sqlstore.NewRegistrar(db)
	logger := slog.Default()

	dataDir := t.TempDir()
	workdir := t.TempDir()

	loop := whirr.NewWorkerLoop(puller, registrar, whirr.NewSupervisor(logger), &whirr.WorkerLoopConfig{
		WorkerID:          "worker-1",
		Host:              "localhost",
		DataDir:           dataDir,
		Concurrency:       1,
		Queue:             4,
		LeaseDuration:     time.Second,
		HeartbeatInterval: 50 * time.Millisecond,
		KillGrace:         time.Second,
	}, logger)

	loopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := loop.Start(loopCtx); err != nil {
		t.Fatal(err)
	}

	submitted, err := pusher.Push(ctx, &job.Spec{
		Name:        "ok",
		CommandArgv: []string{"/bin/sh", "-c", "exit 0"},
		Workdir:     workdir,
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		got, err := observer.GetJob(ctx, submitted.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status == job.Completed {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	final, err := observer.GetJob(ctx, submitted.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != job.Completed {
		t.Fatalf("expected Completed, got %v", final.Status)
	}
	if final.ExitCode == nil || *final.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", final.ExitCode)
	}

	if err := loop.Stop(2 * time.Second); err != nil {
		t.Fatal(err)
	}
}

func TestWorkerLoopRecordsNonZeroExit(t *testing.T) {
	db := newWorkerLoopTestDB(t)
	ctx := context.Background()

	pusher := sqlstore.NewPusher(db)
	puller := sqlstore.NewPuller(db)
	observer := sqlstore.NewObserver(db)
	registrar := sqlstore.NewRegistrar(db)
	logger := slog.Default()

	dataDir := t.TempDir()
	workdir := t.TempDir()

	loop := whirr.NewWorkerLoop(puller, registrar, whirr.NewSupervisor(logger), &whirr.WorkerLoopConfig{
		WorkerID:          "worker-1",
		Host:              "localhost",
		DataDir:           dataDir,
		Concurrency:       1,
		Queue:             4,
		LeaseDuration:     time.Second,
		HeartbeatInterval: 50 * time.Millisecond,
		KillGrace:         time.Second,
	}, logger)

	loopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := loop.Start(loopCtx); err != nil {
		t.Fatal(err)
	}

	submitted, err := pusher.Push(ctx, &job.Spec{
		Name:        "fail",
		CommandArgv: []string{"/bin/sh", "-c", "exit 7"},
		Workdir:     workdir,
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	var final *job.Job
	for time.Now().Before(deadline) {
		final, err = observer.GetJob(ctx, submitted.ID)
		if err != nil {
			t.Fatal(err)
		}
		if final.Status.Terminal() {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if final.Status != job.Failed {
		t.Fatalf("expected Failed, got %v", final.Status)
	}
	if final.ExitCode == nil || *final.ExitCode != 7 {
		t.Fatalf("expected exit code 7, got %v", final.ExitCode)
	}

	if err := loop.Stop(2 * time.Second); err != nil {
		t.Fatal(err)
	}
}
