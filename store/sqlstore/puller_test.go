package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"whirr"
	"whirr/job"
	gsqlstore "whirr/store/sqlstore"
)

func pushOne(t *testing.T, pusher *gsqlstore.Pusher) *job.Job {
	t.Helper()
	j, err := pusher.Push(context.Background(), &job.Spec{
		Name:        "train",
		CommandArgv: []string{"/bin/sh", "-c", "true"},
		Workdir:     "/tmp",
	})
	if err != nil {
		t.Fatal(err)
	}
	return j
}

func TestPullClaimsQueuedJob(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	pushOne(t, pusher)

	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if claimed.Status != job.Running {
		t.Fatalf("expected Running, got %v", claimed.Status)
	}
	if claimed.WorkerID == nil || *claimed.WorkerID != "worker-1" {
		t.Fatalf("expected worker-1 owner, got %v", claimed.WorkerID)
	}

	if _, err := puller.Pull(ctx, "worker-2", time.Second); !errors.Is(err, whirr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenewAndComplete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	pushOne(t, pusher)
	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}

	cancelRequested, err := puller.Renew(ctx, claimed.ID, "worker-1", 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if cancelRequested {
		t.Fatal("expected no cancellation requested")
	}

	if err := puller.Complete(ctx, claimed.ID, "worker-1", 0, job.Completed); err != nil {
		t.Fatal(err)
	}

	if _, err := puller.Renew(ctx, claimed.ID, "worker-1", time.Second); !errors.Is(err, whirr.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner after completion, got %v", err)
	}
}

func TestRenewWrongWorkerIsNotOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	pushOne(t, pusher)
	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := puller.Renew(ctx, claimed.ID, "worker-2", time.Second); !errors.Is(err, whirr.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestRequestCancelQueuedIsSynchronous(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	j := pushOne(t, pusher)

	status, err := puller.RequestCancel(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status != job.Cancelled {
		t.Fatalf("expected Cancelled, got %v", status)
	}
}

func TestRequestCancelRunningIsAsync(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	pushOne(t, pusher)
	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}

	status, err := puller.RequestCancel(ctx, claimed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status != job.Running {
		t.Fatalf("expected job to still be Running, got %v", status)
	}

	cancelRequested, err := puller.Renew(ctx, claimed.ID, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !cancelRequested {
		t.Fatal("expected cancellation to be observed on renew")
	}
}

func TestCancelAllQueued(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	pushOne(t, pusher)
	pushOne(t, pusher)
	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	_ = claimed // leave one job Running, untouched by CancelAllQueued

	n, err := puller.CancelAllQueued(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 queued job cancelled, got %d", n)
	}
}

func TestRetryRequiresTerminalStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	j := pushOne(t, pusher)

	if _, err := puller.Retry(ctx, j.ID); !errors.Is(err, whirr.ErrNotRetryable) {
		t.Fatalf("expected ErrNotRetryable for queued job, got %v", err)
	}

	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := puller.Complete(ctx, claimed.ID, "worker-1", 1, job.Failed); err != nil {
		t.Fatal(err)
	}

	retried, err := puller.Retry(ctx, claimed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if retried.Attempt != 2 {
		t.Fatalf("expected attempt 2, got %d", retried.Attempt)
	}
	if retried.ParentJobID == nil || *retried.ParentJobID != claimed.ID {
		t.Fatalf("expected parent job id %d, got %v", claimed.ID, retried.ParentJobID)
	}
}

func TestReapExpiredRequeuesWithIncrementedAttempt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)

	pushOne(t, pusher)
	claimed, err := puller.Pull(ctx, "worker-1", 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(30 * time.Millisecond)

	ids, err := puller.ReapExpired(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != claimed.ID {
		t.Fatalf("expected job %d reaped, got %v", claimed.ID, ids)
	}

	reclaimed, err := puller.Pull(ctx, "worker-2", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if reclaimed.Attempt != 2 {
		t.Fatalf("expected attempt 2 after reap, got %d", reclaimed.Attempt)
	}
}
