package httpclient_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"

	"whirr"
	"whirr/httpapi"
	"whirr/job"
	"whirr/store/httpclient"
	"whirr/store/sqlstore"
)

func newTestServer(t *testing.T) *httptest.Server {
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
	store := sqlstore.New(db)
	return httptest.NewServer(httpapi.New(store, t.TempDir(), slog.Default()))
}

func TestClientPushPullRenewComplete(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	ctx := context.Background()

	client := httpclient.New(srv.URL, whirr.BackoffConfig{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     100 * time.Millisecond,
		Multiplier:      2,
	})

	pushed, err := client.Push(ctx, &job.Spec{
		Name:        "demo",
		CommandArgv: []string{"/bin/sh", "-c", "true"},
		Workdir:     "/tmp",
	})
	if err != nil {
		t.Fatal(err)
	}
	if pushed.Status != job.Queued {
		t.Fatalf("expected Queued, got %v", pushed.Status)
	}

	claimed, err := client.Pull(ctx, "worker-1", 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if claimed == nil || claimed.ID != pushed.ID {
		t.Fatalf("expected to claim job %d, got %+v", pushed.ID, claimed)
	}
	if claimed.Status != job.Running {
		t.Fatalf("expected Running, got %v", claimed.Status)
	}

	cancelRequested, err := client.Renew(ctx, claimed.ID, "worker-1", 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if cancelRequested {
		t.Fatal("expected no cancellation requested")
	}

	if err := client.Complete(ctx, claimed.ID, "worker-1", 0, job.Completed); err != nil {
		t.Fatal(err)
	}

	final, err := client.GetJob(ctx, claimed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != job.Completed {
		t.Fatalf("expected Completed, got %v", final.Status)
	}
}

func TestClientPullEmptyQueueReturnsNil(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	ctx := context.Background()

	client := httpclient.New(srv.URL, whirr.BackoffConfig{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     100 * time.Millisecond,
		Multiplier:      2,
	})

	j, err := client.Pull(ctx, "worker-1", 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if j != nil {
		t.Fatalf("expected nil job on empty queue, got %+v", j)
	}
}

func TestClientGetJobNotFoundReturnsErrNotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	ctx := context.Background()

	client := httpclient.New(srv.URL, whirr.BackoffConfig{})
	_, err := client.GetJob(ctx, 999)
	if !errors.Is(err, whirr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientCancelAndRetry(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	ctx := context.Background()

	client := httpclient.New(srv.URL, whirr.BackoffConfig{})

	pushed, err := client.Push(ctx, &job.Spec{
		Name:        "demo",
		CommandArgv: []string{"/bin/sh", "-c", "exit 1"},
		Workdir:     "/tmp",
	})
	if err != nil {
		t.Fatal(err)
	}

	status, err := client.RequestCancel(ctx, pushed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status != job.Cancelled {
		t.Fatalf("expected Cancelled, got %v", status)
	}

	retried, err := client.Retry(ctx, pushed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if retried.Attempt != 2 {
		t.Fatalf("expected attempt 2, got %d", retried.Attempt)
	}
}

func TestClientRegisterAndListWorkers(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	ctx := context.Background()

	client := httpclient.New(srv.URL, whirr.BackoffConfig{})
	if err := client.RegisterWorker(ctx, "host-a:default", "host-a", "default"); err != nil {
		t.Fatal(err)
	}

	workers, err := client.ListWorkers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(workers) != 1 || workers[0].ID != "host-a:default" {
		t.Fatalf("unexpected workers: %+v", workers)
	}
}
