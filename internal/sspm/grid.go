package sspm

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"benthosim/internal/field"
)

// serialCellThreshold is the grid size below which the per-timestep
// update runs on the calling goroutine. Small rasters are not worth the
// goroutine handoff.
const serialCellThreshold = 1024

// An Observer is notified after each computed layer. Layer 0 (the seed)
// is reported as step 0 before any transition runs.
type Observer interface {
	OnStep(step int, g *field.Grid)
}

// GridConfig drives a raster run. The engine produces Steps+1 layers:
// layer 0 is Initial verbatim, never grown or removed from. A nil
// Capacity means the initial grid itself is the carrying capacity (a
// community starting at equilibrium). A nil Removal means no removal.
// Workers caps the per-timestep parallelism; zero means one worker per
// CPU. Parallelism never changes the output.
type GridConfig struct {
	Initial  *field.Grid
	Capacity *field.Grid
	Rates    RateSource
	Removal  RemovalRule
	Steps    int
	Workers  int
}

func (cfg GridConfig) validate() error {
	if cfg.Steps < 1 {
		return fmt.Errorf("%w: got %d", ErrSteps, cfg.Steps)
	}
	if cfg.Initial == nil {
		return fmt.Errorf("%w: initial grid is required", ErrInitial)
	}
	if !cfg.Initial.IsFinite() {
		return fmt.Errorf("%w: initial grid has non-finite cells", ErrInitial)
	}
	if cfg.Capacity != nil && !cfg.Initial.SameShape(cfg.Capacity) {
		ir, ic := cfg.Initial.Dims()
		kr, kc := cfg.Capacity.Dims()
		return fmt.Errorf("%w: initial %dx%d vs capacity %dx%d", ErrShape, ir, ic, kr, kc)
	}
	capacity := cfg.Capacity
	if capacity == nil {
		capacity = cfg.Initial
	}
	for _, k := range capacity.Values() {
		if k <= 0 {
			return fmt.Errorf("%w: capacity grid has a non-positive cell", ErrCapacity)
		}
	}
	if cfg.Rates == nil {
		return ErrSource
	}
	if s, ok := cfg.Rates.(RateSeries); ok && len(s) != cfg.Steps {
		return fmt.Errorf("%w: rate series has %d entries, want %d", ErrSeriesLength, len(s), cfg.Steps)
	}
	if w, ok := cfg.Removal.(PeriodicWeighted); ok {
		if w.Weights == nil || !cfg.Initial.SameShape(w.Weights) {
			return fmt.Errorf("%w: removal weight grid does not match the initial grid", ErrShape)
		}
	}
	return nil
}

// RunGrid applies the recurrence independently to every cell of the
// initial grid across cfg.Steps transitions and returns the full stack
// of Steps+1 layers. The growth rate is resolved once per timestep and
// shared by all cells; the removal rule sees the previous layer and may
// return a per-cell grid or nothing.
//
// Timesteps are strictly sequential; the context is only checked at
// timestep boundaries, where the partial state is a consistent
// snapshot. On cancellation no stack is returned.
func RunGrid(ctx context.Context, cfg GridConfig, observers ...Observer) (*field.Stack, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	capacity := cfg.Capacity
	if capacity == nil {
		capacity = cfg.Initial
	}
	rule := cfg.Removal
	if rule == nil {
		rule = NoRemoval{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	layers := make([]*field.Grid, cfg.Steps+1)
	layers[0] = cfg.Initial.Clone()
	for _, obs := range observers {
		obs.OnStep(0, layers[0])
	}

	rows, cols := cfg.Initial.Dims()
	for t := 1; t <= cfg.Steps; t++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		prev := layers[t-1]
		rate := cfg.Rates.Rate(t)
		removal := rule.Removal(t, prev)

		next := field.NewGrid(rows, cols)
		updateCells(next.Values(), prev.Values(), capacity.Values(), removalValues(removal), rate, workers)

		layers[t] = next
		for _, obs := range observers {
			obs.OnStep(t, next)
		}
	}

	return field.NewStack(layers)
}

func removalValues(g *field.Grid) []float64 {
	if g == nil {
		return nil
	}
	return g.Values()
}

// updateCells computes one full transition. Cells never read each
// other, so the slice is split into contiguous chunks, one goroutine
// per worker, with no synchronization beyond the final wait.
func updateCells(dst, prev, capacity, removal []float64, rate float64, workers int) {
	n := len(dst)
	if workers < 2 || n < serialCellThreshold {
		updateRange(dst, prev, capacity, removal, rate, 0, n)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			updateRange(dst, prev, capacity, removal, rate, start, end)
		}(start, end)
	}
	wg.Wait()
}

func updateRange(dst, prev, capacity, removal []float64, rate float64, start, end int) {
	for i := start; i < end; i++ {
		c := 0.0
		if removal != nil {
			c = removal[i]
		}
		dst[i] = Step(prev[i], rate, capacity[i], c)
	}
}
