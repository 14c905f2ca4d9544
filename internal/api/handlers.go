package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"specdash/internal/discovery"
	"specdash/internal/domain"
	"specdash/internal/execution"
	"specdash/internal/registry"
)

type errorResponse struct {
	Error string `json:"error"`
}

type runResponse struct {
	RunID  string        `json:"runId"`
	Status domain.Status `json:"status"`
}

type healthResponse struct {
	Status string                `json:"status"`
	Runs   map[domain.Status]int `json:"runs"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}

// ListSuites handles GET /api/suites
func (h *Handler) ListSuites(w http.ResponseWriter, r *http.Request) {
	suites, err := h.suites.ListSuites()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list test suites")
		writeError(w, http.StatusInternalServerError, "failed to fetch test suites")
		return
	}
	writeJSON(w, http.StatusOK, suites)
}

// StartRun handles POST /api/tests/run
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req execution.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	runID, err := h.runs.StartRun(r.Context(), req)
	if err != nil {
		if errors.Is(err, discovery.ErrUnknownSuite) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to start test run")
		writeError(w, http.StatusInternalServerError, "failed to start test run")
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: runID, Status: domain.StatusRunning})
}

// RunStatus handles GET /api/tests/status/{runId}
func (h *Handler) RunStatus(w http.ResponseWriter, r *http.Request) {
	run, ok := h.store.Get(mux.Vars(r)["runId"])
	if !ok {
		writeError(w, http.StatusNotFound, "test run not found")
		return
	}
	writeJSON(w, http.StatusOK, run.StatusView())
}

// RunResults handles GET /api/tests/results/{runId}
func (h *Handler) RunResults(w http.ResponseWriter, r *http.Request) {
	run, ok := h.store.Get(mux.Vars(r)["runId"])
	if !ok {
		writeError(w, http.StatusNotFound, "test run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// RecentRuns handles GET /api/tests/recent
func (h *Handler) RecentRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = registry.DefaultRecentLimit
	}

	runs := h.store.ListRecent(limit)
	out := make([]domain.TestRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.WithoutDetail())
	}
	writeJSON(w, http.StatusOK, out)
}

// CancelRun handles POST /api/tests/cancel/{runId}
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runId"]
	run, err := h.runs.Cancel(runID)
	switch {
	case errors.Is(err, execution.ErrRunNotFound):
		writeError(w, http.StatusNotFound, "test run not found")
	case errors.Is(err, execution.ErrRunFinished):
		writeError(w, http.StatusConflict, "test run already finished")
	case err != nil:
		h.log.Error().Err(err).Str("run_id", runID).Msg("failed to cancel test run")
		writeError(w, http.StatusInternalServerError, "failed to cancel test run")
	default:
		writeJSON(w, http.StatusAccepted, runResponse{RunID: run.ID, Status: run.Status})
	}
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Runs: h.store.Counts()})
}
