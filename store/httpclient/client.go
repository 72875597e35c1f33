package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"whirr"
)

// Client is a whirr.Store-shaped HTTP client for a remote httpapi.Router
// (spec §6.2). It does not implement whirr.Cleaner: retention cleanup is
// an administrative operation performed directly against the server's
// store, not exposed to remote workers.
type Client struct {
	baseURL string
	http    *http.Client
	backoff backoffCounter
}

// New creates a Client targeting baseURL (e.g. "http://host:8080"),
// retrying Pull and Renew against backoff (spec §7).
func New(baseURL string, backoff whirr.BackoffConfig) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		backoff: backoffCounter{backoff},
	}
}

type apiError struct {
	Kind   string `json:"error"`
	Detail string `json:"detail"`
}

// classifyRemote maps an httpapi error body/status back to the sentinel
// error a local whirr.Store call would have returned.
func classifyRemote(status int, body apiError) error {
	switch body.Kind {
	case "not_found":
		return whirr.ErrNotFound
	case "not_owner":
		return whirr.ErrNotOwner
	case "not_retryable":
		return whirr.ErrNotRetryable
	case "bad_status":
		return whirr.ErrBadStatus
	case "invalid_workdir":
		return whirr.ErrInvalidWorkdir
	case "store_unavailable":
		return whirr.ErrStoreUnavailable
	}
	if status >= 500 {
		return whirr.ErrStoreUnavailable
	}
	return fmt.Errorf("whirr: server error: %s", body.Detail)
}

// do performs one HTTP round trip, decoding a JSON response into out
// (nil to discard the body). A 204 response leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, reqBody, out any) (int, error) {
	var body io.Reader
	if reqBody != nil {
		buf, err := json.Marshal(reqBody)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// chi's middleware.RequestID (httpapi/router.go) adopts an incoming
	// X-Request-Id verbatim instead of minting its own, so a caller can
	// correlate a client-side log line with the server's for the same
	// call.
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", whirr.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, classifyRemote(resp.StatusCode, apiErr)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// doWithBackoff retries do against whirr.ErrStoreUnavailable using the
// client's backoff policy, respecting ctx cancellation between
// attempts. Used only by Pull and Renew (spec §7).
func (c *Client) doWithBackoff(ctx context.Context, method, path string, reqBody, out any) (int, error) {
	var attempt uint32
	for {
		attempt++
		status, err := c.do(ctx, method, path, reqBody, out)
		if err == nil || !errors.Is(err, whirr.ErrStoreUnavailable) {
			return status, err
		}
		wait, ok := c.backoff.next(attempt)
		if !ok {
			return status, err
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(wait):
		}
	}
}
