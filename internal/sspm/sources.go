package sspm

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"benthosim/internal/field"
)

// A RateSource yields the growth rate for the transition into timestep
// t. The grid engine resolves it once per timestep and shares the value
// across every cell.
type RateSource interface {
	Rate(step int) float64
}

// ConstantRate applies the same growth rate at every transition.
type ConstantRate float64

func (c ConstantRate) Rate(int) float64 { return float64(c) }

// RateSeries replays pre-drawn rates: entry t-1 drives the transition
// into timestep t. The grid engine checks its length up front.
type RateSeries []float64

func (s RateSeries) Rate(step int) float64 { return s[step-1] }

// UniformRate draws a fresh rate per timestep from a uniform
// distribution over [Min, Max), deterministically for a given seed.
type UniformRate struct {
	dist distuv.Uniform
}

func NewUniformRate(min, max float64, seed uint64) *UniformRate {
	return &UniformRate{
		dist: distuv.Uniform{
			Min: min,
			Max: max,
			Src: rand.NewSource(seed),
		},
	}
}

func (u *UniformRate) Rate(int) float64 { return u.dist.Rand() }

// A RemovalRule yields the removal applied at the transition into
// timestep t, given the biomass grid of timestep t-1. A nil result
// means no removal this step. The returned grid must share the biomass
// grid's dimensions; rules derive it from the biomass grid itself, so
// the engine does not re-check.
type RemovalRule interface {
	Removal(step int, biomass *field.Grid) *field.Grid
}

// NoRemoval leaves the system undisturbed.
type NoRemoval struct{}

func (NoRemoval) Removal(int, *field.Grid) *field.Grid { return nil }

// PeriodicFraction removes Fraction of each cell's standing biomass at
// every Every-th step (step%Every == 0, step > 0) and nothing in
// between. The fraction is uniform over the grid.
type PeriodicFraction struct {
	Every    int
	Fraction float64
}

func (p PeriodicFraction) Removal(step int, biomass *field.Grid) *field.Grid {
	if p.Every < 1 || step < 1 || step%p.Every != 0 {
		return nil
	}
	out := biomass.Clone()
	vals := out.Values()
	for i, v := range vals {
		vals[i] = v * p.Fraction
	}
	return out
}

// PeriodicWeighted removes Weights[i,j] of cell (i,j)'s standing
// biomass at every Every-th step: a spatially decaying disturbance such
// as a Gaussian footprint around a dredging site. Weights stay fixed
// across the run.
type PeriodicWeighted struct {
	Every   int
	Weights *field.Grid
}

func (p PeriodicWeighted) Removal(step int, biomass *field.Grid) *field.Grid {
	if p.Every < 1 || step < 1 || step%p.Every != 0 {
		return nil
	}
	out := biomass.Clone()
	vals := out.Values()
	w := p.Weights.Values()
	for i, v := range vals {
		vals[i] = v * w[i]
	}
	return out
}
