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

func TestCleanRejectsNonTerminalStatus(t *testing.T) {
	db := newTestDB(t)
	cleaner := gsqlstore.NewCleaner(db)

	if _, err := cleaner.Clean(context.Background(), job.Running, nil); !errors.Is(err, whirr.ErrBadStatus) {
		t.Fatalf("expected ErrBadStatus, got %v", err)
	}
}

func TestCleanDeletesTerminalJobs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)
	puller := gsqlstore.NewPuller(db)
	cleaner := gsqlstore.NewCleaner(db)
	observer := gsqlstore.NewObserver(db)

	j := pushOne(t, pusher)
	claimed, err := puller.Pull(ctx, "worker-1", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := puller.Complete(ctx, claimed.ID, "worker-1", 0, job.Completed); err != nil {
		t.Fatal(err)
	}

	n, err := cleaner.Clean(ctx, job.Completed, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row deleted, got %d", n)
	}

	if _, err := observer.GetJob(ctx, j.ID); !errors.Is(err, whirr.ErrNotFound) {
		t.Fatalf("expected job to be gone, got %v", err)
	}
}
