package baa

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithSexTerm controls whether the sex indicator contributes to the sum.
// The published scoring code drops it even though its coefficient delta is
// non-zero; false (the default) reproduces that behaviour.
func WithSexTerm(include bool) Option {
	return func(e *Estimator) {
		e.includeSex = include
	}
}

// WithTable replaces the published coefficients. The table is copied.
func WithTable(t Table) Option {
	return func(e *Estimator) {
		if t != nil {
			e.table = t.Clone()
		}
	}
}
