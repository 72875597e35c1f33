package httpapi

import (
	"errors"
	"net/http"

	"whirr"
)

// errKind names the "error" field of a JSON error body (spec §6.2:
// `{"error":"<kind>","detail":"<message>"}`).
type errKind string

const (
	kindNotFound         errKind = "not_found"
	kindNotOwner         errKind = "not_owner"
	kindNotRetryable     errKind = "not_retryable"
	kindBadStatus        errKind = "bad_status"
	kindStoreUnavailable errKind = "store_unavailable"
	kindInvalidWorkdir   errKind = "invalid_workdir"
	kindBadRequest       errKind = "bad_request"
	kindInternal         errKind = "internal"
)

// classify maps a whirr sentinel error to its HTTP status and kind.
func classify(err error) (int, errKind) {
	switch {
	case errors.Is(err, whirr.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, whirr.ErrNotOwner):
		return http.StatusConflict, kindNotOwner
	case errors.Is(err, whirr.ErrNotRetryable):
		return http.StatusConflict, kindNotRetryable
	case errors.Is(err, whirr.ErrBadStatus):
		return http.StatusBadRequest, kindBadStatus
	case errors.Is(err, whirr.ErrInvalidWorkdir):
		return http.StatusBadRequest, kindInvalidWorkdir
	case errors.Is(err, whirr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, kindStoreUnavailable
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	writeJSON(w, status, errorBody{Error: string(kind), Detail: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: string(kindBadRequest), Detail: detail})
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
