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

func TestObserverGetJobNotFound(t *testing.T) {
	db := newTestDB(t)
	observer := gsqlstore.NewObserver(db)

	if _, err := observer.GetJob(context.Background(), 999); !errors.Is(err, whirr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestObserverListActiveAndRuns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)
	observer := gsqlstore.NewObserver(db)

	j := pushOne(t, pusher)

	active, err := observer.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active job, got %d", len(active))
	}

	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := puller.Complete(ctx, claimed.ID, "worker-1", 0, job.Completed); err != nil {
		t.Fatal(err)
	}

	active, err = observer.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expected 0 active jobs after completion, got %d", len(active))
	}

	run, err := observer.GetRun(ctx, j.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != job.Completed {
		t.Fatalf("expected Completed, got %v", run.Status)
	}

	runs, err := observer.ListRuns(ctx, whirr.RunFilter{Status: job.Completed})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 completed run, got %d", len(runs))
	}
}

func TestObserverStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)
	observer := gsqlstore.NewObserver(db)

	pushOne(t, pusher)
	pushOne(t, pusher)
	if _, err := puller.Pull(ctx, "worker-1", time.Second); err != nil {
		t.Fatal(err)
	}

	counts, err := observer.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Queued != 1 || counts.Running != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
