package sspm

import (
	"fmt"
	"math"
)

// ScalarConfig drives a single-value run. Steps is the number of values
// in the output, so a run makes Steps-1 transitions. Rate applies at
// every transition unless RateSeries is set, in which case RateSeries[t-1]
// drives the transition into index t; Removals follows the same
// convention. Both series must have length Steps-1. A nil Removals means
// no removal at any step.
type ScalarConfig struct {
	Initial    float64
	Rate       float64
	RateSeries []float64
	Capacity   float64
	Removals   []float64
	Steps      int
}

func (cfg ScalarConfig) validate() error {
	if cfg.Steps < 1 {
		return fmt.Errorf("%w: got %d", ErrSteps, cfg.Steps)
	}
	if cfg.Capacity <= 0 || math.IsNaN(cfg.Capacity) || math.IsInf(cfg.Capacity, 0) {
		return fmt.Errorf("%w: got %v", ErrCapacity, cfg.Capacity)
	}
	if cfg.Initial < 0 || math.IsNaN(cfg.Initial) || math.IsInf(cfg.Initial, 0) {
		return fmt.Errorf("%w: got %v", ErrInitial, cfg.Initial)
	}
	if cfg.RateSeries != nil && len(cfg.RateSeries) != cfg.Steps-1 {
		return fmt.Errorf("%w: rate series has %d entries, want %d", ErrSeriesLength, len(cfg.RateSeries), cfg.Steps-1)
	}
	if cfg.Removals != nil && len(cfg.Removals) != cfg.Steps-1 {
		return fmt.Errorf("%w: removal series has %d entries, want %d", ErrSeriesLength, len(cfg.Removals), cfg.Steps-1)
	}
	return nil
}

// RunScalar iterates the recurrence for a single biomass value and
// returns exactly cfg.Steps values, index 0 being the initial biomass.
// The run is a pure function of its inputs.
func RunScalar(cfg ScalarConfig) (Series, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	out := make(Series, cfg.Steps)
	out[0] = cfg.Initial

	for t := 1; t < cfg.Steps; t++ {
		r := cfg.Rate
		if cfg.RateSeries != nil {
			r = cfg.RateSeries[t-1]
		}
		c := 0.0
		if cfg.Removals != nil {
			c = cfg.Removals[t-1]
		}
		out[t] = Step(out[t-1], r, cfg.Capacity, c)
	}

	return out, nil
}

// PulseRemovals builds a removal series of length steps-1 that removes
// the given amount at every period-th timestep (12, 24, ... for
// period 12) and nothing otherwise. Timesteps are 0-based, matching the
// output indexing of RunScalar, and the seed step never carries a
// removal.
func PulseRemovals(steps, period int, amount float64) []float64 {
	if steps < 1 {
		return nil
	}
	out := make([]float64, steps-1)
	if period < 1 {
		return out
	}
	for t := 1; t < steps; t++ {
		if t%period == 0 {
			out[t-1] = amount
		}
	}
	return out
}
