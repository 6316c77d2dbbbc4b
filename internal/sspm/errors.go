package sspm

import "errors"

// Configuration errors. All are detected before any computation starts;
// a run either returns a complete sequence or nothing.
var (
	// ErrSteps indicates a non-positive timestep count.
	ErrSteps = errors.New("sspm: timestep count must be positive")

	// ErrCapacity indicates a non-positive carrying capacity.
	ErrCapacity = errors.New("sspm: carrying capacity must be positive")

	// ErrInitial indicates a non-finite or negative initial biomass.
	ErrInitial = errors.New("sspm: initial biomass must be finite and non-negative")

	// ErrSeriesLength indicates a parameter series whose length does not
	// match the number of transitions.
	ErrSeriesLength = errors.New("sspm: parameter series length mismatch")

	// ErrShape indicates grids with mismatched dimensions.
	ErrShape = errors.New("sspm: grid dimensions mismatch")

	// ErrSource indicates a missing rate source.
	ErrSource = errors.New("sspm: rate source is required")
)
