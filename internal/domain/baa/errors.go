package baa

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnknownFeature reports a record feature without a coefficient entry, or the reverse.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrInvalidTable reports a coefficient table that breaks a model invariant.
	ErrInvalidTable = errors.New("invalid coefficient table")
	// ErrInvalidRecord reports named values that do not form a complete Record.
	ErrInvalidRecord = errors.New("invalid record")
)
