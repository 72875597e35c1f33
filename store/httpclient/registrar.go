package httpclient

import (
	"context"
	"net/http"

	"whirr"
	"whirr/registry"
)

// RegisterWorker implements whirr.Registrar.RegisterWorker via POST
// /api/v1/workers/register.
func (c *Client) RegisterWorker(ctx context.Context, id, host, slot string) error {
	req := map[string]any{"worker_id": id, "host": host, "slot": slot}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/workers/register", req, nil)
	return err
}

// Heartbeat is not exposed as a standalone endpoint in spec §6.2. When
// jobID is non-nil, Heartbeat sends nothing: the job heartbeat (Renew)
// extends only the job's lease and does not touch the worker row, so
// the row is neither marked busy nor given a fresh LastSeenAt. When
// jobID is nil (the worker is idle between jobs), Heartbeat posts a
// worker registration with an empty host and slot.
func (c *Client) Heartbeat(ctx context.Context, id string, jobID *int64) error {
	if jobID != nil {
		return nil
	}
	req := map[string]any{"worker_id": id, "host": "", "slot": ""}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/workers/register", req, nil)
	return err
}

// SetStopped has no dedicated remote endpoint (spec §6.2 lists none)
// and is a no-op: nothing marks the worker row stopped in networked
// mode, so it keeps its last status and LastSeenAt.
func (c *Client) SetStopped(ctx context.Context, id string) error {
	return nil
}

// ListWorkers implements whirr.Registrar.ListWorkers via GET
// /api/v1/workers.
func (c *Client) ListWorkers(ctx context.Context) ([]*registry.Worker, error) {
	var wires []wireWorker
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/workers", nil, &wires); err != nil {
		return nil, err
	}
	workers := make([]*registry.Worker, len(wires))
	for i := range wires {
		workers[i] = wires[i].toWorker()
	}
	return workers, nil
}

var _ whirr.Registrar = (*Client)(nil)
