package whirr_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"whirr"
	"whirr/job"
)

type mockReapPuller struct {
	calls atomic.Int64
	ids   []int64
}

func (m *mockReapPuller) Pull(ctx context.Context, workerID string, lease time.Duration) (*job.Job, error) {
	return nil, whirr.ErrNotFound
}
func (m *mockReapPuller) Renew(ctx context.Context, jobID int64, workerID string, lease time.Duration) (bool, error) {
	return false, nil
}
func (m *mockReapPuller) Complete(ctx context.Context, jobID int64, workerID string, exitCode int, status job.Status) error {
	return nil
}
func (m *mockReapPuller) RequestCancel(ctx context.Context, jobID int64) (job.Status, error) {
	return job.Unknown, whirr.ErrNotFound
}
func (m *mockReapPuller) CancelAllQueued(ctx context.Context) (int64, error) {
	return 0, nil
}
func (m *mockReapPuller) Retry(ctx context.Context, jobID int64) (*job.Job, error) {
	return nil, whirr.ErrNotFound
}
func (m *mockReapPuller) ReapExpired(ctx context.Context, now time.Time) ([]int64, error) {
	m.calls.Add(1)
	return m.ids, nil
}

func TestReapWorkerBasic(t *testing.T) {
	puller := &mockReapPuller{ids: []int64{1, 2}}
	logger := slog.Default()

	w := whirr.NewReapWorker(puller, &whirr.ReapConfig{Interval: 50 * time.Millisecond}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if err := w.Stop(time.Second); err != nil {
		t.Fatal(err)
	}

	if puller.calls.Load() == 0 {
		t.Fatal("expected reap to run at least once")
	}
}

func TestReapWorkerOnce(t *testing.T) {
	puller := &mockReapPuller{ids: []int64{5}}
	w := whirr.NewReapWorker(puller, &whirr.ReapConfig{Interval: time.Hour}, slog.Default())

	ids, err := w.Once(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 5 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestReapWorkerLifecycleErrors(t *testing.T) {
	puller := &mockReapPuller{}
	w := whirr.NewReapWorker(puller, &whirr.ReapConfig{Interval: time.Second}, slog.Default())

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(ctx); err == nil {
		t.Fatal("expected ErrDoubleStarted")
	}
	if err := w.Stop(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(time.Second); err == nil {
		t.Fatal("expected ErrDoubleStopped")
	}
}
