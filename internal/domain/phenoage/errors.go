package phenoage

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain reports a logarithm evaluated outside its domain.
	ErrDomain = errors.New("phenoage domain error")
	// ErrInvalidInput reports named values that do not form a complete Input.
	ErrInvalidInput = errors.New("invalid phenoage input")
)

// Terms whose logarithm can leave its domain.
const (
	TermCRP       = "crp"
	TermMortality = "mortality"
	TermHazard    = "hazard"
)

// DomainError carries the offending term and value.
type DomainError struct {
	Term  string
	Value float64
}

func (e *DomainError) Error() string {
	switch e.Term {
	case TermCRP:
		return fmt.Sprintf("%v: crp must be > 0 mg/L, got %v", ErrDomain, e.Value)
	case TermMortality:
		return fmt.Sprintf("%v: mortality score must be < 1, got %v", ErrDomain, e.Value)
	default:
		return fmt.Sprintf("%v: %s must be > 0, got %v", ErrDomain, e.Term, e.Value)
	}
}

// Unwrap allows errors.Is(err, ErrDomain).
func (e *DomainError) Unwrap() error { return ErrDomain }
