package api

import (
	"context"
	"net/http"
	"time"

	service "github.com/okian/bioage/internal/app"
	"github.com/okian/bioage/internal/domain/phenoage"
	"github.com/okian/bioage/internal/domain/units"
)

// PhenoAgeDependencies is the subset of Dependencies used by PhenoAgeHandler.
type PhenoAgeDependencies interface {
	EvaluatePhenoAge(ctx context.Context, in phenoage.Input) (service.Evaluation, error)
}

// PhenoAgeHandler handles phenotypic age requests.
type PhenoAgeHandler struct {
	deps PhenoAgeDependencies
}

// NewPhenoAgeHandler creates a new PhenoAge handler.
func NewPhenoAgeHandler(deps PhenoAgeDependencies) *PhenoAgeHandler {
	return &PhenoAgeHandler{deps: deps}
}

type phenoAgeResponse struct {
	ID              string `json:"id"`
	Estimator       string `json:"estimator"`
	Value           number `json:"value"`
	Unit            string `json:"unit"`
	LinearPredictor number `json:"linear_predictor"`
	Mortality       number `json:"mortality"`
	ComputedAt      string `json:"computed_at"`
}

// HandlePostPhenoAge handles POST /phenoage requests.
func (h *PhenoAgeHandler) HandlePostPhenoAge(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_phenoage"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	values, err := decodeValues(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeBadRequest(w, op, err)
		return
	}
	in, err := phenoage.InputFromFields(values)
	if err != nil {
		writeBadRequest(w, op, err)
		return
	}

	ev, err := h.deps.EvaluatePhenoAge(r.Context(), in)
	if err != nil {
		writeEvaluationError(w, op, err)
		return
	}

	resp := phenoAgeResponse{
		ID:         ev.ID,
		Estimator:  ev.Estimator,
		Value:      number(ev.Value),
		Unit:       units.Years(0).Unit(),
		ComputedAt: ev.ComputedAt.Format(time.RFC3339Nano),
	}
	if ev.PhenoAge != nil {
		resp.LinearPredictor = number(ev.PhenoAge.LinearPredictor)
		resp.Mortality = number(ev.PhenoAge.Mortality)
	}
	writeJSON(w, http.StatusOK, resp)
}
