package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	service "github.com/okian/bioage/internal/app"
	"github.com/okian/bioage/internal/domain/baa"
	"github.com/okian/bioage/internal/domain/units"
)

// BAADependencies is the subset of Dependencies used by BAAHandler.
type BAADependencies interface {
	EvaluateBAA(ctx context.Context, rec baa.Record) (service.Evaluation, error)
}

// BAAHandler handles biological age acceleration requests.
type BAAHandler struct {
	deps BAADependencies
}

// NewBAAHandler creates a new BAA handler.
func NewBAAHandler(deps BAADependencies) *BAAHandler {
	return &BAAHandler{deps: deps}
}

type contributionResponse struct {
	Feature   string `json:"feature"`
	Value     number `json:"value"`
	Deviation number `json:"deviation"`
	Delta     number `json:"delta"`
	Years     number `json:"years"`
}

type baaResponse struct {
	ID            string                 `json:"id"`
	Estimator     string                 `json:"estimator"`
	Value         number                 `json:"value"`
	Unit          string                 `json:"unit"`
	SexTerm       bool                   `json:"sex_term"`
	ComputedAt    string                 `json:"computed_at"`
	Contributions []contributionResponse `json:"contributions,omitempty"`
}

// HandlePostBAA handles POST /baa requests. The body is a flat object with
// every record feature; ?explain=true adds per-feature contributions.
func (h *BAAHandler) HandlePostBAA(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_baa"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	explain, err := explainParam(r)
	if err != nil {
		writeBadRequest(w, op, err)
		return
	}
	values, err := decodeValues(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeBadRequest(w, op, err)
		return
	}
	rec, err := baa.RecordFromFeatures(values)
	if err != nil {
		writeBadRequest(w, op, err)
		return
	}

	ev, err := h.deps.EvaluateBAA(r.Context(), rec)
	if err != nil {
		writeEvaluationError(w, op, err)
		return
	}

	resp := baaResponse{
		ID:         ev.ID,
		Estimator:  ev.Estimator,
		Value:      number(ev.Value),
		Unit:       units.Years(0).Unit(),
		SexTerm:    ev.SexTerm,
		ComputedAt: ev.ComputedAt.Format(time.RFC3339Nano),
	}
	if explain {
		resp.Contributions = make([]contributionResponse, len(ev.Contributions))
		for i, c := range ev.Contributions {
			resp.Contributions[i] = contributionResponse{
				Feature:   c.Feature,
				Value:     number(c.Value),
				Deviation: number(c.Deviation),
				Delta:     number(c.Delta),
				Years:     number(c.Years),
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func explainParam(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("explain")
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
