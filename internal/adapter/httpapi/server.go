// Package httpapi exposes the wizard over HTTP: workflow snapshot and
// action dispatch, gated navigation, workflow file save/load, calibration
// runs, and export operations, alongside health, readiness, and metrics
// endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/calibrate-workbench/internal/adapter/core"
	"github.com/couchcryptid/calibrate-workbench/internal/domain"
	"github.com/couchcryptid/calibrate-workbench/internal/observability"
	"github.com/couchcryptid/calibrate-workbench/internal/store"
	"github.com/couchcryptid/calibrate-workbench/internal/workfile"
)

const maxBodyBytes = 1 << 20

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// MetadataSource answers predictor listing and metadata lookups.
type MetadataSource interface {
	Predictors(ctx context.Context, path string) ([]string, error)
	PredictorMetadata(ctx context.Context, path string) (core.Metadata, error)
	Warmup(ctx context.Context, base string) error
}

// CoreGateway drives calibration runs and export operations on the core.
type CoreGateway interface {
	StartComputation(ctx context.Context, s domain.State) error
	ComputationStatus(ctx context.Context) (core.RunStatus, error)
	SaveOperation(ctx context.Context, req core.SaveRequest) error
	ObservationsMetadata(ctx context.Context, path string) (core.ObsMetadata, error)
}

// Server exposes the wizard HTTP surface.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	meta       MetadataSource
	gateway    CoreGateway
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates the server and registers all routes.
func NewServer(
	addr string,
	st *store.Store,
	meta MetadataSource,
	gateway CoreGateway,
	ready ReadinessChecker,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:   st,
		meta:    meta,
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/workflow", s.handleWorkflow)
	mux.HandleFunc("POST /api/workflow/actions", s.handleAction)
	mux.HandleFunc("POST /api/workflow/next", s.handleNext)
	mux.HandleFunc("POST /api/workflow/back", s.handleBack)
	mux.HandleFunc("POST /api/workflow/undo", s.handleUndo)
	mux.HandleFunc("POST /api/workflow/save", s.handleSave)
	mux.HandleFunc("POST /api/workflow/load", s.handleLoad)

	mux.HandleFunc("GET /api/predictors", s.handlePredictors)
	mux.HandleFunc("GET /api/predictors/metadata", s.handlePredictorMetadata)
	mux.HandleFunc("POST /api/predictors/warmup", s.handleWarmup)
	mux.HandleFunc("POST /api/observations/inspect", s.handleObservationsInspect)

	mux.HandleFunc("POST /api/computations/start", s.handleComputationStart)
	mux.HandleFunc("GET /api/computations/status", s.handleComputationStatus)
	mux.HandleFunc("POST /api/operations/{kind}", s.handleOperation)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// workflowView is the snapshot shape returned by workflow endpoints.
type workflowView struct {
	Workflow   domain.State `json:"workflow"`
	Epoch      uint64       `json:"epoch"`
	CanAdvance bool         `json:"canAdvance"`
	Blockers   []string     `json:"blockers,omitempty"`
}

func viewOf(state domain.State, epoch uint64) workflowView {
	return workflowView{
		Workflow:   state,
		Epoch:      epoch,
		CanAdvance: domain.CanAdvance(state),
		Blockers:   domain.AdvanceBlockers(state),
	}
}

func (s *Server) handleWorkflow(w http.ResponseWriter, _ *http.Request) {
	state, epoch := s.store.View()
	writeJSON(w, http.StatusOK, viewOf(state, epoch))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	action, err := decodeAction(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	state := s.store.Dispatch(action)
	writeJSON(w, http.StatusOK, viewOf(state, s.store.Epoch()))
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	state, ok := s.store.Advance()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "page is not complete",
			"blockers": domain.AdvanceBlockers(state),
		})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state, s.store.Epoch()))
}

func (s *Server) handleBack(w http.ResponseWriter, _ *http.Request) {
	state := s.store.Back()
	writeJSON(w, http.StatusOK, viewOf(state, s.store.Epoch()))
}

func (s *Server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	state, ok := s.store.Undo()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "nothing to undo"})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state, s.store.Epoch()))
}

type pathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	if err := workfile.Save(req.Path, s.store.Snapshot()); err != nil {
		s.metrics.WorkfileOps.WithLabelValues("save", "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, workfile.ErrNoPath) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	s.metrics.WorkfileOps.WithLabelValues("save", "success").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"path": req.Path})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	state, err := workfile.Load(req.Path)
	if err != nil {
		s.metrics.WorkfileOps.WithLabelValues("load", "error").Inc()
		status := http.StatusUnprocessableEntity
		if errors.Is(err, workfile.ErrNoPath) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	s.metrics.WorkfileOps.WithLabelValues("load", "success").Inc()

	next := s.store.Dispatch(domain.ReplaceState{State: state})
	writeJSON(w, http.StatusOK, viewOf(next, s.store.Epoch()))
}

func (s *Server) handlePredictors(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing path parameter"))
		return
	}

	codes, err := s.meta.Predictors(r.Context(), path)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"predictors": codes})
}

func (s *Server) handlePredictorMetadata(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing path parameter"))
		return
	}

	meta, err := s.meta.PredictorMetadata(r.Context(), path)
	if errors.Is(err, core.ErrMetadataUnavailable) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleWarmup primes the metadata cache for every predictor under the
// given base path. The walk happens in the background; the request only
// confirms it started.
func (s *Server) handleWarmup(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.meta.Warmup(ctx, req.Path); err != nil {
			s.logger.Warn("metadata warmup failed", "path", req.Path, "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "warming"})
}

// handleObservationsInspect asks the core for the units of an observation
// dataset and folds the answer into the workflow. The fold carries the
// epoch observed at request time, so an answer arriving after the user
// navigated away is dropped.
func (s *Server) handleObservationsInspect(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	_, epoch := s.store.View()
	meta, err := s.gateway.ObservationsMetadata(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	_, applied := s.store.DispatchAt(epoch, domain.SetObservations{
		Observations: domain.Observations{Path: req.Path, Units: meta.Units},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"units":   meta.Units,
		"applied": applied,
	})
}

func (s *Server) handleComputationStart(w http.ResponseWriter, r *http.Request) {
	if err := s.gateway.StartComputation(r.Context(), s.store.Snapshot()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleComputationStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.gateway.ComputationStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")

	if kind == domain.OpBreakpointsUpload {
		var req struct {
			CSV string `json:"csv"`
		}
		if !s.readJSON(w, r, &req) {
			return
		}
		state := s.store.Dispatch(domain.SetBreakpoints{CSV: req.CSV})
		writeJSON(w, http.StatusOK, viewOf(state, s.store.Epoch()))
		return
	}

	state := s.store.Snapshot()
	if !domain.CanExport(kind, state) {
		writeError(w, http.StatusConflict, errors.New("operation not available for current workflow"))
		return
	}

	req, err := core.BuildSaveRequest(kind, state)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.gateway.SaveOperation(r.Context(), req); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "mode": kind})
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil {
		err = json.Unmarshal(body, v)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
