package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"whirr"
)

// Router exposes whirr's Submission API over HTTP (spec §6.2). It wraps
// a whirr.Store rather than the individual Pusher/Puller/Observer/
// Cleaner/Registrar interfaces, since every networked-mode deployment
// has all five behind one backend.
type Router struct {
	store   whirr.Store
	dataDir string
	log     *slog.Logger
}

// New builds the chi.Router serving spec §6.2's endpoints. dataDir is
// used only to resolve run directories (the submit response's run_dir
// and the run detail, metrics and artifact endpoints); it is not
// otherwise part of the Store contract.
func New(store whirr.Store, dataDir string, log *slog.Logger) chi.Router {
	h := &Router{store: store, dataDir: dataDir, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.status)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.submit)
			r.Post("/claim", h.claim)
			// cancel-queued and reap are supplemental: spec §6.2's table
			// covers per-job operations only, but §4.5 also lists
			// cancel_all_queued and the reaper needs a remote path for a
			// server-less administrative client.
			r.Post("/cancel-queued", h.cancelAllQueued)
			r.Post("/reap", h.reapExpired)
			r.Get("/{id}", h.getJob)
			r.Post("/{id}/cancel", h.cancelJob)
			r.Post("/{id}/retry", h.retryJob)
			r.Post("/{id}/heartbeat", h.heartbeat)
			r.Post("/{id}/complete", h.complete)
		})

		r.Route("/workers", func(r chi.Router) {
			r.Post("/register", h.registerWorker)
			r.Get("/", h.listWorkers)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.listRuns)
			r.Get("/{runID}", h.getRun)
			r.Get("/{runID}/metrics", h.getRunMetrics)
			r.Get("/{runID}/artifacts", h.listArtifacts)
			r.Get("/{runID}/artifacts/*", h.getArtifact)
		})
	})

	return r
}

func (h *Router) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

func (h *Router) status(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Queued:      counts.Queued,
		Running:     counts.Running,
		Completed:   counts.Completed,
		Failed:      counts.Failed,
		Cancelled:   counts.Cancelled,
		WorkersIdle: counts.WorkersIdle,
		WorkersBusy: counts.WorkersBusy,
	})
}
