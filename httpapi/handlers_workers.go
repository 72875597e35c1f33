package httpapi

import "net/http"

func (h *Router) registerWorker(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.WorkerID == "" || req.Host == "" {
		writeBadRequest(w, "worker_id and host are required")
		return
	}
	if err := h.store.RegisterWorker(r.Context(), req.WorkerID, req.Host, req.Slot); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Router) listWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.store.ListWorkers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]workerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}
