package fainder

import "errors"

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .fainder.yaml is found.
	ErrConfigNotFound = errors.New("fainder: no .fainder.yaml found")

	// ErrUnknownComparison is returned for a comparison other than gt, ge, lt or le.
	ErrUnknownComparison = errors.New("fainder: unknown comparison")

	// ErrUnknownTermKind is returned when decoding a term with an unknown type.
	ErrUnknownTermKind = errors.New("fainder: unknown term kind")

	// ErrUnknownIndexType is returned when an unknown index type is configured.
	ErrUnknownIndexType = errors.New("fainder: unknown index type")
)
