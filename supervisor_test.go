package whirr_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"whirr"
	"whirr/job"
)

func TestSupervisorRunCompletes(t *testing.T) {
	s := whirr.NewSupervisor(slog.Default())
	dir := t.TempDir()

	res, err := s.Run(context.Background(), whirr.RunRequest{
		JobID:             1,
		RunID:             "job-1",
		RunDir:            dir,
		CommandArgv:       []string{"/bin/sh", "-c", "echo hi && exit 0"},
		Workdir:           dir,
		HeartbeatInterval: 50 * time.Millisecond,
		KillGrace:         time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != job.Completed {
		t.Fatalf("expected Completed, got %v", res.Status)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", res.ExitCode)
	}

	out, err := os.ReadFile(dir + "/output.log")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "hi") {
		t.Fatalf("expected output log to contain child output, got %q", out)
	}
}

func TestSupervisorRunRecordsNonZeroExit(t *testing.T) {
	s := whirr.NewSupervisor(slog.Default())
	dir := t.TempDir()

	res, err := s.Run(context.Background(), whirr.RunRequest{
		JobID:             2,
		RunID:             "job-2",
		RunDir:            dir,
		CommandArgv:       []string{"/bin/sh", "-c", "exit 3"},
		Workdir:           dir,
		HeartbeatInterval: 50 * time.Millisecond,
		KillGrace:         time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != job.Failed {
		t.Fatalf("expected Failed, got %v", res.Status)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
}

func TestSupervisorRunMissingWorkdirIsStartupFailure(t *testing.T) {
	s := whirr.NewSupervisor(slog.Default())
	dir := t.TempDir()

	res, err := s.Run(context.Background(), whirr.RunRequest{
		JobID:             3,
		RunID:             "job-3",
		RunDir:            dir,
		CommandArgv:       []string{"/bin/sh", "-c", "exit 0"},
		Workdir:           dir + "/does-not-exist",
		HeartbeatInterval: 50 * time.Millisecond,
		KillGrace:         time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != job.Failed {
		t.Fatalf("expected Failed, got %v", res.Status)
	}
	if res.ExitCode != -1 {
		t.Fatalf("expected startup exit code -1, got %d", res.ExitCode)
	}
}

func TestSupervisorRunObservesContextCancellation(t *testing.T) {
	s := whirr.NewSupervisor(slog.Default())
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res, err := s.Run(ctx, whirr.RunRequest{
		JobID:             4,
		RunID:             "job-4",
		RunDir:            dir,
		CommandArgv:       []string{"/bin/sh", "-c", "trap '' TERM; sleep 5"},
		Workdir:           dir,
		HeartbeatInterval: 50 * time.Millisecond,
		KillGrace:         100 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != job.Cancelled {
		t.Fatalf("expected Cancelled, got %v", res.Status)
	}
}

func TestSupervisorRunObservesCancellationFromRenew(t *testing.T) {
	s := whirr.NewSupervisor(slog.Default())
	dir := t.TempDir()

	var calls int
	renew := func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 2, nil
	}

	res, err := s.Run(context.Background(), whirr.RunRequest{
		JobID:             5,
		RunID:             "job-5",
		RunDir:            dir,
		CommandArgv:       []string{"/bin/sh", "-c", "sleep 5"},
		Workdir:           dir,
		Renew:             renew,
		HeartbeatInterval: 30 * time.Millisecond,
		KillGrace:         100 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != job.Cancelled {
		t.Fatalf("expected Cancelled, got %v", res.Status)
	}
}

func TestSupervisorRunAbandonsOnLeaseLoss(t *testing.T) {
	s := whirr.NewSupervisor(slog.Default())
	dir := t.TempDir()

	renew := func(ctx context.Context) (bool, error) {
		return false, whirr.ErrNotOwner
	}

	res, err := s.Run(context.Background(), whirr.RunRequest{
		JobID:             6,
		RunID:             "job-6",
		RunDir:            dir,
		CommandArgv:       []string{"/bin/sh", "-c", "sleep 0.2 && exit 0"},
		Workdir:           dir,
		Renew:             renew,
		HeartbeatInterval: 30 * time.Millisecond,
		KillGrace:         time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Abandoned {
		t.Fatal("expected run to be marked Abandoned after ErrNotOwner from Renew")
	}
}
