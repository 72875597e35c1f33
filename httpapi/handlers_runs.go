package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"whirr"
	"whirr/job"
	"whirr/rundir"
)

func (h *Router) listRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := whirr.RunFilter{Tag: q.Get("tag")}
	if s := q.Get("status"); s != "" {
		status, err := job.ParseStatus(s)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter.Status = status
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil {
			writeBadRequest(w, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]runDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Router) getRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run, err := h.store.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}

	meta, err := rundir.Open(h.dataDir, runID).ReadMeta()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, runDetailDTO{runDTO: toRunDTO(run), Meta: meta})
}

// metricLine is the generic shape of a metrics.jsonl / system.jsonl
// record: the fixed _idx/_timestamp/step envelope plus arbitrary user
// keys (spec §6.1).
type metricLine map[string]any

func (h *Router) getRunMetrics(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	path := rundir.Open(h.dataDir, runID).MetricsPath()

	records, err := rundir.ReadRecords[metricLine](path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Router) listArtifacts(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	dir := rundir.Open(h.dataDir, runID)

	names, err := dir.ListArtifacts()
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]artifactDTO, 0, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir.ArtifactsDir(), name))
		if err != nil {
			continue
		}
		dtos = append(dtos, artifactDTO{Path: name, Size: info.Size(), Modified: info.ModTime()})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Router) getArtifact(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	relPath := chi.URLParam(r, "*")
	if relPath == "" || strings.Contains(relPath, "..") {
		writeBadRequest(w, "invalid artifact path")
		return
	}

	dir := rundir.Open(h.dataDir, runID)
	full := filepath.Join(dir.ArtifactsDir(), filepath.FromSlash(relPath))
	if !strings.HasPrefix(full, dir.ArtifactsDir()) {
		writeBadRequest(w, "invalid artifact path")
		return
	}

	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, whirr.ErrNotFound)
			return
		}
		writeError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, err)
		return
	}
	http.ServeContent(w, r, filepath.Base(full), info.ModTime(), f)
}
