package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across repositories and services
var (
	// ErrNotFound is returned when a catalog entry, opportunity, quota or
	// other record does not exist or is not visible to the tenant
	ErrNotFound = goerr.New("not found")

	// ErrAmbiguous is returned when two ponderation overrides of equal
	// specificity and overlapping validity windows conflict
	ErrAmbiguous = goerr.New("ambiguous ponderation override")

	// ErrConcurrentModification is returned when an optimistic concurrency
	// check fails on an opportunity update
	ErrConcurrentModification = goerr.New("concurrent modification")

	// ErrCycleDetected is returned when a quota parent chain forms a cycle
	ErrCycleDetected = goerr.New("quota hierarchy cycle detected")

	// ErrZeroTarget is returned when attainment is requested against a
	// quota with a zero target amount
	ErrZeroTarget = goerr.New("quota target amount is zero")
)
