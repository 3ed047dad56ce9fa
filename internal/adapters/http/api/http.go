// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/bioage/internal/app"
	"github.com/okian/bioage/internal/domain/baa"
	"github.com/okian/bioage/internal/domain/phenoage"
	"github.com/okian/bioage/pkg/metrics"
)

// maxBodyBytes bounds request bodies; a full BAA panel is well under 4 KiB.
const maxBodyBytes = 1 << 16

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EvaluateBAA(ctx context.Context, rec baa.Record) (service.Evaluation, error)
	EvaluatePhenoAge(ctx context.Context, in phenoage.Input) (service.Evaluation, error)
}

// Server wires HTTP routes for the estimator API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	baaHandler      *BAAHandler
	phenoAgeHandler *PhenoAgeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		baaHandler:      NewBAAHandler(deps),
		phenoAgeHandler: NewPhenoAgeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/baa", MetricsMiddleware(s.baaHandler.HandlePostBAA, "baa"))
	mux.HandleFunc("/phenoage", MetricsMiddleware(s.phenoAgeHandler.HandlePostPhenoAge, "phenoage"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

func writeBadRequest(w http.ResponseWriter, op string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
}

// writeEvaluationError maps an estimator failure onto a status code.
func writeEvaluationError(w http.ResponseWriter, op string, err error) {
	switch kind := service.ErrorKind(err); kind {
	case service.KindDomain:
		writeError(w, http.StatusUnprocessableEntity, kind, WrapKind(op, ErrEvaluation, err))
	case service.KindConfiguration:
		writeError(w, http.StatusInternalServerError, kind, WrapKind(op, ErrEvaluation, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrEvaluation, err))
	}
}
