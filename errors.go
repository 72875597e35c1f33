package whirr

import "errors"

// Error kinds returned by Store implementations, per spec §7. These are
// sentinel values, not types: callers compare with errors.Is.
var (
	// ErrNotInitialized indicates the store's data root is absent or has
	// not been prepared. User-facing and actionable.
	ErrNotInitialized = errors.New("whirr: not initialized")

	// ErrNotFound indicates a job, run or artifact id is unknown to the
	// store.
	ErrNotFound = errors.New("whirr: not found")

	// ErrNotOwner indicates a Renew or Complete call came from a worker
	// that no longer owns the job — typically because its lease expired
	// and the job was reaped out from under it. The caller must abandon
	// the job without writing further state.
	ErrNotOwner = errors.New("whirr: not owner")

	// ErrNotRetryable indicates Retry was called on a job that is not in
	// a terminal failure state (failed or cancelled).
	ErrNotRetryable = errors.New("whirr: not retryable")

	// ErrStoreUnavailable indicates a transient transport or lock-timeout
	// error. WorkerLoop retries Pull and Renew calls that fail with
	// this error using a bounded exponential backoff; it does not retry
	// any other operation.
	ErrStoreUnavailable = errors.New("whirr: store unavailable")

	// ErrBadStatus indicates Clean was called with a non-terminal status.
	// Cleaner implementations must restrict deletion to terminal states.
	ErrBadStatus = errors.New("whirr: bad job status")

	// ErrInvalidWorkdir indicates Push was called with a Spec.Workdir
	// that is not an absolute path.
	ErrInvalidWorkdir = errors.New("whirr: workdir must be absolute")
)
