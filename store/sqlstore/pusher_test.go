package sqlstore_test

import (
	"context"
	"strconv"
	"testing"

	"whirr/job"
	gsqlstore "whirr/store/sqlstore"
)

func TestPushAssignsRunID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pusher := gsqlstore.NewPusher(db)

	spec := &job.Spec{
		Name:        "train",
		CommandArgv: []string{"/bin/sh", "-c", "true"},
		Workdir:     "/tmp",
		Tags:        []string{"gpu"},
	}

	j, err := pusher.Push(ctx, spec)
	if err != nil {
		t.Fatal(err)
	}
	if j.ID == 0 {
		t.Fatal("expected non-zero job id")
	}
	want := "job-" + strconv.FormatInt(j.ID, 10)
	if j.RunID != want {
		t.Fatalf("expected run id %q, got %q", want, j.RunID)
	}
	if j.Status != job.Queued {
		t.Fatalf("expected Queued, got %v", j.Status)
	}
}
