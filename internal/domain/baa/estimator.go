package baa

import "fmt"

// yearsScale converts the summed coefficient deltas to years.
const yearsScale = 10

// Contribution is one feature's share of an estimate, already scaled to years.
type Contribution struct {
	Feature   string  `json:"feature"`
	Value     float64 `json:"value"`
	Deviation float64 `json:"deviation"`
	Delta     float64 `json:"delta"`
	Years     float64 `json:"years"`
}

// Estimator computes BAA against a fixed coefficient table. It holds no
// mutable state and is safe for concurrent use.
type Estimator struct {
	table      Table
	includeSex bool
	// tableErr caches the table integrity check done at construction.
	tableErr error
}

var defaultEstimator = NewEstimator()

// NewEstimator creates an estimator over the published table, excluding the
// sex term unless WithSexTerm(true) is given.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		table: literalTable,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	e.tableErr = e.table.Validate()
	return e
}

// Estimate computes BAA with the default estimator.
func Estimate(rec Record) (float64, error) {
	return defaultEstimator.Estimate(rec)
}

// IncludesSexTerm reports whether the sex indicator contributes to estimates.
func (e *Estimator) IncludesSexTerm() bool {
	return e.includeSex
}

// Estimate returns the biological age acceleration for rec in years.
// Non-finite inputs propagate to the result.
func (e *Estimator) Estimate(rec Record) (float64, error) {
	if e.tableErr != nil {
		return 0, e.tableErr
	}

	var sum float64
	for _, f := range rec.Features() {
		if f.Name == SexFeature && !e.includeSex {
			continue
		}
		c, ok := e.table[f.Name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, f.Name)
		}
		sum += float64((f.Value - c.Mean) * (c.ENet - c.Baseline))
	}
	return sum * yearsScale, nil
}

// Contributions breaks an estimate down per feature, in canonical order.
// The sum of the Years fields matches Estimate up to rounding.
func (e *Estimator) Contributions(rec Record) ([]Contribution, error) {
	if e.tableErr != nil {
		return nil, e.tableErr
	}

	out := make([]Contribution, 0, len(featureAccessors))
	for _, f := range rec.Features() {
		if f.Name == SexFeature && !e.includeSex {
			continue
		}
		c, ok := e.table[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, f.Name)
		}
		dev := f.Value - c.Mean
		delta := c.ENet - c.Baseline
		out = append(out, Contribution{
			Feature:   f.Name,
			Value:     f.Value,
			Deviation: dev,
			Delta:     delta,
			Years:     dev * delta * yearsScale,
		})
	}
	return out, nil
}
