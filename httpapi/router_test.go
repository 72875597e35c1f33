package httpapi_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"

	"whirr/httpapi"
	"whirr/store/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
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
	return sqlstore.New(db)
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatal(err)
	}
}

func TestHealthAndStatus(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(httpapi.New(store, t.TempDir(), slog.Default()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSubmitClaimHeartbeatComplete(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(httpapi.New(store, t.TempDir(), slog.Default()))
	defer srv.Close()

	resp := postJSON(t, srv, "/api/v1/jobs", map[string]any{
		"command_argv": []string{"/bin/sh", "-c", "true"},
		"workdir":      "/tmp",
		"name":         "demo",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var submitted struct {
		JobID int64  `json:"job_id"`
		RunID string `json:"run_id"`
	}
	decodeBody(t, resp, &submitted)
	if submitted.RunID != fmt.Sprintf("job-%d", submitted.JobID) {
		t.Fatalf("unexpected run id %q for job %d", submitted.RunID, submitted.JobID)
	}

	resp = postJSON(t, srv, "/api/v1/jobs/claim", map[string]any{
		"worker_id":     "worker-1",
		"lease_seconds": 30,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var claimed struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, resp, &claimed)
	if claimed.ID != submitted.JobID {
		t.Fatalf("expected to claim job %d, got %d", submitted.JobID, claimed.ID)
	}

	resp = postJSON(t, srv, fmt.Sprintf("/api/v1/jobs/%d/heartbeat", claimed.ID), map[string]any{
		"worker_id": "worker-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var hb struct {
		CancelRequested bool `json:"cancel_requested"`
	}
	decodeBody(t, resp, &hb)
	if hb.CancelRequested {
		t.Fatal("expected no cancellation requested")
	}

	resp = postJSON(t, srv, fmt.Sprintf("/api/v1/jobs/%d/complete", claimed.ID), map[string]any{
		"worker_id": "worker-1",
		"exit_code": 0,
		"status":    "completed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/jobs/%d", srv.URL, claimed.ID))
	if err != nil {
		t.Fatal(err)
	}
	var final struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &final)
	if final.Status != "completed" {
		t.Fatalf("expected completed, got %q", final.Status)
	}
}

func TestClaimEmptyQueueReturns204(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(httpapi.New(store, t.TempDir(), slog.Default()))
	defer srv.Close()

	resp := postJSON(t, srv, "/api/v1/jobs/claim", map[string]any{
		"worker_id":     "worker-1",
		"lease_seconds": 30,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestGetJobNotFoundReturns404(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(httpapi.New(store, t.TempDir(), slog.Default()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/jobs/999")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	if body.Error != "not_found" {
		t.Fatalf("expected not_found kind, got %q", body.Error)
	}
}

func TestCancelQueuedJobIsSynchronous(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(httpapi.New(store, t.TempDir(), slog.Default()))
	defer srv.Close()

	resp := postJSON(t, srv, "/api/v1/jobs", map[string]any{
		"command_argv": []string{"/bin/sh", "-c", "true"},
		"workdir":      "/tmp",
	})
	var submitted struct {
		JobID int64 `json:"job_id"`
	}
	decodeBody(t, resp, &submitted)

	resp = postJSON(t, srv, fmt.Sprintf("/api/v1/jobs/%d/cancel", submitted.JobID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var cancelled struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &cancelled)
	if cancelled.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}
}

func TestRegisterAndListWorkers(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(httpapi.New(store, t.TempDir(), slog.Default()))
	defer srv.Close()

	resp := postJSON(t, srv, "/api/v1/workers/register", map[string]any{
		"worker_id": "host-a:default",
		"host":      "host-a",
		"slot":      "default",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/v1/workers")
	if err != nil {
		t.Fatal(err)
	}
	var workers []struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &workers)
	if len(workers) != 1 || workers[0].ID != "host-a:default" {
		t.Fatalf("unexpected workers response: %+v", workers)
	}
}
