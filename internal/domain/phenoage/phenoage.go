// Package phenoage computes Levine et al. (2018) phenotypic age from nine
// clinical biomarkers and chronological age.
//
// The coefficients, intercept, Gompertz parameters and inverse-transform
// constants are the published literals. They are written out verbatim and
// evaluated in the published order; do not fold or rearrange them.
package phenoage

import (
	"fmt"
	"math"

	"github.com/okian/bioage/internal/domain/units"
)

// Gompertz mortality model parameters.
const (
	gamma   = 0.0076927
	horizon = 120
)

// Input is one subject's PhenoAge panel. Each field must already be in the
// unit its type names; no conversion or inference is done except for CRP.
type Input struct {
	Age                 units.Years              `json:"age"`
	Albumin             units.GramsPerLiter      `json:"albumin"`
	Creatinine          units.MicromolesPerLiter `json:"creatinine"`
	Glucose             units.MillimolesPerLiter `json:"glucose"`
	CRP                 units.MilligramsPerLiter `json:"crp"`
	LymphocytePct       units.Percent            `json:"lymphocyte_pct"`
	MCV                 units.Femtoliters        `json:"mcv"`
	RDW                 units.Percent            `json:"rdw"`
	AlkalinePhosphatase units.UnitsPerLiter      `json:"alkaline_phosphatase"`
	WBC                 units.CellsE9PerLiter    `json:"wbc"`
}

// Result exposes the intermediate quantities of an evaluation.
type Result struct {
	// LinearPredictor is xb, the Gompertz linear risk score.
	LinearPredictor float64 `json:"linear_predictor"`
	// Mortality is the 120-month mortality score M.
	Mortality float64 `json:"mortality"`
	// Age is the phenotypic age in years.
	Age float64 `json:"age"`
}

// Estimate returns the phenotypic age of in, in years.
func Estimate(in Input) (float64, error) {
	res, err := Evaluate(in)
	if err != nil {
		return 0, err
	}
	return res.Age, nil
}

// Evaluate runs the full model and returns every intermediate value.
// NaN inputs propagate to the result; only non-positive logarithm
// arguments are reported, as errors wrapping ErrDomain.
func Evaluate(in Input) (Result, error) {
	xb, err := LinearPredictor(in)
	if err != nil {
		return Result{}, err
	}

	m := Mortality(xb)
	if m >= 1 {
		return Result{}, &DomainError{Term: TermMortality, Value: m}
	}

	hazard := -0.00553 * math.Log(1-m)
	if hazard <= 0 {
		return Result{}, &DomainError{Term: TermHazard, Value: hazard}
	}

	return Result{
		LinearPredictor: xb,
		Mortality:       m,
		Age:             141.50225 + math.Log(hazard)/0.090165,
	}, nil
}

// LinearPredictor computes xb. CRP must be strictly positive.
func LinearPredictor(in Input) (float64, error) {
	if in.CRP <= 0 {
		return 0, &DomainError{Term: TermCRP, Value: float64(in.CRP)}
	}
	// Each product is converted explicitly so the compiler cannot fuse it
	// with the following addition.
	xb := -19.907 -
		float64(0.0336*float64(in.Albumin)) +
		float64(0.0095*float64(in.Creatinine)) +
		float64(0.1953*float64(in.Glucose)) +
		float64(0.0954*math.Log(float64(in.CRP.MilligramsPerDeciliter()))) -
		float64(0.0120*float64(in.LymphocytePct)) +
		float64(0.0268*float64(in.MCV)) +
		float64(0.3306*float64(in.RDW)) +
		float64(0.0019*float64(in.AlkalinePhosphatase)) +
		float64(0.0554*float64(in.WBC)) +
		float64(0.0804*float64(in.Age))
	return xb, nil
}

// Mortality maps xb to the Gompertz mortality score over the model horizon.
func Mortality(xb float64) float64 {
	// g keeps horizon*gamma a run-time float64 product rather than an
	// exact constant expression.
	g := float64(gamma)
	return 1 - math.Exp(-math.Exp(xb)*(math.Exp(horizon*g)-1)/g)
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return fmt.Sprintf("xb=%g M=%g age=%g", r.LinearPredictor, r.Mortality, r.Age)
}
