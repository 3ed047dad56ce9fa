package loadcheck

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/okian/bioage/internal/domain/baa"
	"github.com/okian/bioage/internal/domain/phenoage"
	"github.com/okian/bioage/pkg/logger"
)

// evaluationResponse is the subset of an estimator response that is checked.
type evaluationResponse struct {
	Value   json.RawMessage `json:"value"`
	SexTerm bool            `json:"sex_term"`
	Code    string          `json:"code"`
}

// verifier recomputes estimates locally.
type verifier struct {
	baa     *baa.Estimator
	sexTerm bool
}

func newVerifier(sexTerm bool) *verifier {
	return &verifier{
		baa:     baa.NewEstimator(baa.WithSexTerm(sexTerm)),
		sexTerm: sexTerm,
	}
}

// expected returns the local estimate for s.
func (v *verifier) expected(s Subject) (float64, error) {
	switch s.Estimator {
	case "baa":
		rec, err := baa.RecordFromFeatures(s.Values)
		if err != nil {
			return 0, err
		}
		return v.baa.Estimate(rec)
	case "phenoage":
		in, err := phenoage.InputFromFields(s.Values)
		if err != nil {
			return 0, err
		}
		return phenoage.Estimate(in)
	default:
		return 0, errors.New("unknown estimator " + s.Estimator)
	}
}

// check compares one server response with the local estimate. Values must
// agree bit for bit; a 422 must coincide with a local domain error.
func (v *verifier) check(ctx context.Context, s Subject, status int, body []byte) string {
	want, wantErr := v.expected(s)

	var resp evaluationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.Get().Warn(ctx, "undecodable response", logger.String("id", s.ID), logger.Error(err))
		return outcomeFailed
	}

	switch status {
	case http.StatusOK:
		if s.Estimator == "baa" && resp.SexTerm != v.sexTerm {
			logger.Get().Warn(ctx, "server runs a different BAA sex policy",
				logger.Bool("server", resp.SexTerm), logger.Bool("expected", v.sexTerm))
			return outcomeMismatch
		}
		var got float64
		if err := json.Unmarshal(resp.Value, &got); err != nil || wantErr != nil {
			return mismatch(ctx, s, string(resp.Value), want, wantErr)
		}
		if math.Float64bits(got) != math.Float64bits(want) {
			return mismatch(ctx, s, string(resp.Value), want, nil)
		}
		return outcomeMatch
	case http.StatusUnprocessableEntity:
		if errors.Is(wantErr, phenoage.ErrDomain) {
			return outcomeRejected
		}
		return mismatch(ctx, s, resp.Code, want, wantErr)
	default:
		logger.Get().Warn(ctx, "unexpected status",
			logger.String("id", s.ID), logger.Int("status", status), logger.String("code", resp.Code))
		return outcomeFailed
	}
}

func mismatch(ctx context.Context, s Subject, got string, want float64, wantErr error) string {
	fields := []logger.Field{
		logger.String("id", s.ID),
		logger.String("estimator", s.Estimator),
		logger.String("got", got),
		logger.Float64("want", want),
	}
	if wantErr != nil {
		fields = append(fields, logger.Error(wantErr))
	}
	logger.Get().Error(ctx, "estimate mismatch", fields...)
	return outcomeMismatch
}
