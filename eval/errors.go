package eval

import "errors"

// Evaluation errors.
var (
	ErrPercentileRange = errors.New("eval: percentile outside [0, 1]")
	ErrUnknownTerm     = errors.New("eval: unknown term")
	ErrNoProfiles      = errors.New("eval: no column profiles")
	ErrNullColumn      = errors.New("eval: null column entry")
)
