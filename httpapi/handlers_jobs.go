package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"whirr"
	"whirr/job"
	"whirr/rundir"
)

func pathJobID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *Router) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if len(req.CommandArgv) == 0 {
		writeBadRequest(w, "command_argv must not be empty")
		return
	}

	j, err := h.store.Push(r.Context(), &job.Spec{
		Name:        req.Name,
		CommandArgv: req.CommandArgv,
		Workdir:     req.Workdir,
		Tags:        req.Tags,
		Config:      req.Config,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	runDir := rundir.Open(h.dataDir, j.RunID).Path()
	writeJSON(w, http.StatusCreated, submitResponse{
		JobID:   j.ID,
		RunID:   j.RunID,
		RunDir:  runDir,
		Message: "job queued",
	})
}

func (h *Router) getJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathJobID(r)
	if !ok {
		writeBadRequest(w, "invalid job id")
		return
	}
	j, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(j))
}

func (h *Router) cancelJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathJobID(r)
	if !ok {
		writeBadRequest(w, "invalid job id")
		return
	}
	status, err := h.store.RequestCancel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelResponse{Status: status})
}

func (h *Router) retryJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathJobID(r)
	if !ok {
		writeBadRequest(w, "invalid job id")
		return
	}
	retried, err := h.store.Retry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, retryResponse{JobID: retried.ID})
}

func (h *Router) claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.WorkerID == "" || req.LeaseSeconds <= 0 {
		writeBadRequest(w, "worker_id and lease_seconds are required")
		return
	}

	j, err := h.store.Pull(r.Context(), req.WorkerID, time.Duration(req.LeaseSeconds)*time.Second)
	if errors.Is(err, whirr.ErrNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if j == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(j))
}

func (h *Router) heartbeat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathJobID(r)
	if !ok {
		writeBadRequest(w, "invalid job id")
		return
	}
	var req heartbeatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	// The HTTP transport does not negotiate a lease duration per renewal;
	// the server reuses the job's already-recorded lease window so a
	// remote worker's heartbeat behaves identically to the embedded path.
	j, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	lease := time.Minute
	if j.LeaseExpiresAt != nil && j.HeartbeatAt != nil {
		if d := j.LeaseExpiresAt.Sub(*j.HeartbeatAt); d > 0 {
			lease = d
		}
	}

	cancelRequested, err := h.store.Renew(r.Context(), id, req.WorkerID, lease)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heartbeatResponse{
		LeaseExpiresAt:  time.Now().Add(lease),
		CancelRequested: cancelRequested,
	})
}

func (h *Router) cancelAllQueued(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.CancelAllQueued(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelAllResponse{Count: n})
}

func (h *Router) reapExpired(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ReapExpired(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reapResponse{JobIDs: ids})
}

func (h *Router) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathJobID(r)
	if !ok {
		writeBadRequest(w, "invalid job id")
		return
	}
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if !req.Status.Terminal() {
		writeBadRequest(w, "status must be a terminal job status")
		return
	}

	if err := h.store.Complete(r.Context(), id, req.WorkerID, req.ExitCode, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
