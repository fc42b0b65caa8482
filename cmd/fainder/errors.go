package main

import "errors"

// Command errors.
var (
	ErrNoQuery      = errors.New("no query given")
	ErrNoQueryFiles = errors.New("no .fq files found")
	ErrNoProfiles   = errors.New("no profile file (use --profiles or eval.profiles in .fainder.yaml)")
)
