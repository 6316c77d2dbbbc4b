// Package ensemble runs seeded replicates of a grid scenario in
// parallel, for stochastic-growth experiments where a single trajectory
// says little.
package ensemble

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"

	"benthosim/internal/field"
	"benthosim/internal/sspm"
)

// A Factory builds the grid configuration for one replicate. Each
// replicate gets its own seed, so any stateful rate source must be
// constructed fresh inside the factory.
type Factory func(seed uint64) sspm.GridConfig

type Ensemble struct {
	factory   Factory
	runs      int
	seedStart uint64
}

func New(factory Factory, runs int, seedStart uint64) *Ensemble {
	return &Ensemble{factory: factory, runs: runs, seedStart: seedStart}
}

// Run computes all replicates concurrently and returns their stacks in
// seed order. The first replicate error aborts the whole ensemble.
func (e *Ensemble) Run(ctx context.Context) ([]*field.Stack, error) {
	if e.runs < 1 {
		return nil, fmt.Errorf("ensemble: need at least one replicate")
	}

	stacks := make([]*field.Stack, e.runs)
	errs := make([]error, e.runs)

	var wg sync.WaitGroup
	for i := 0; i < e.runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cfg := e.factory(e.seedStart + uint64(idx))
			stacks[idx], errs[idx] = sspm.RunGrid(ctx, cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return stacks, nil
}

// Band summarizes an ensemble per timestep: the mean of the replicate
// grid means, and the lowest and highest replicate mean.
type Band struct {
	Mean []float64
	Min  []float64
	Max  []float64
}

func Aggregate(stacks []*field.Stack) (*Band, error) {
	if len(stacks) == 0 {
		return nil, fmt.Errorf("ensemble: nothing to aggregate")
	}
	steps := stacks[0].Len()
	for i, st := range stacks {
		if st.Len() != steps {
			return nil, fmt.Errorf("ensemble: replicate %d has %d layers, want %d", i, st.Len(), steps)
		}
	}

	band := &Band{
		Mean: make([]float64, steps),
		Min:  make([]float64, steps),
		Max:  make([]float64, steps),
	}

	means := make([]float64, len(stacks))
	for t := 0; t < steps; t++ {
		for i, st := range stacks {
			means[i] = st.Layer(t).Mean()
		}
		band.Mean[t] = stat.Mean(means, nil)
		band.Min[t] = means[0]
		band.Max[t] = means[0]
		for _, m := range means[1:] {
			if m < band.Min[t] {
				band.Min[t] = m
			}
			if m > band.Max[t] {
				band.Max[t] = m
			}
		}
	}

	return band, nil
}
