// Package metrics provides run-level summaries collected through the
// grid engine's observer hook.
package metrics

import (
	"math"

	"benthosim/internal/field"
	"benthosim/internal/sspm"
)

// A Metric observes every computed layer and reduces the run to a
// single number.
type Metric interface {
	sspm.Observer
	Name() string
	Value() float64
	Reset()
}

// MeanBiomass reports the time-average of the per-layer mean biomass.
type MeanBiomass struct {
	sum     float64
	samples int
}

func NewMeanBiomass() *MeanBiomass { return &MeanBiomass{} }

func (m *MeanBiomass) Name() string { return "mean_biomass" }

func (m *MeanBiomass) OnStep(step int, g *field.Grid) {
	m.sum += g.Mean()
	m.samples++
}

func (m *MeanBiomass) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanBiomass) Reset() {
	m.sum = 0
	m.samples = 0
}

// MinimumBiomass reports the lowest cell value seen anywhere in the
// run. A negative value here is the degeneracy hazard the engines let
// through.
type MinimumBiomass struct {
	min     float64
	samples int
}

func NewMinimumBiomass() *MinimumBiomass { return &MinimumBiomass{} }

func (m *MinimumBiomass) Name() string { return "min_biomass" }

func (m *MinimumBiomass) OnStep(step int, g *field.Grid) {
	v := g.Min()
	if m.samples == 0 || v < m.min {
		m.min = v
	}
	m.samples++
}

func (m *MinimumBiomass) Value() float64 { return m.min }

func (m *MinimumBiomass) Reset() {
	m.min = 0
	m.samples = 0
}

// Depletion reports the worst depression of mean biomass below the mean
// carrying capacity, as a fraction in [0, 1] for well-behaved runs.
type Depletion struct {
	meanCapacity float64
	worst        float64
}

func NewDepletion(capacity *field.Grid) *Depletion {
	return &Depletion{meanCapacity: capacity.Mean()}
}

func (d *Depletion) Name() string { return "depletion" }

func (d *Depletion) OnStep(step int, g *field.Grid) {
	dep := 1 - g.Mean()/d.meanCapacity
	if dep > d.worst {
		d.worst = dep
	}
}

func (d *Depletion) Value() float64 { return d.worst }

func (d *Depletion) Reset() { d.worst = 0 }

// RecoverySteps reports how many steps the mean biomass spent below a
// threshold fraction of mean carrying capacity after last falling under
// it. A run that ends still depressed reports the open interval up to
// the final step; a run that never dips reports 0.
type RecoverySteps struct {
	meanCapacity float64
	threshold    float64
	dipStep      int
	recoverStep  int
	lastStep     int
	below        bool
}

func NewRecoverySteps(capacity *field.Grid, threshold float64) *RecoverySteps {
	return &RecoverySteps{
		meanCapacity: capacity.Mean(),
		threshold:    threshold,
		dipStep:      -1,
		recoverStep:  -1,
	}
}

func (r *RecoverySteps) Name() string { return "recovery_steps" }

func (r *RecoverySteps) OnStep(step int, g *field.Grid) {
	r.lastStep = step
	depressed := g.Mean() < r.threshold*r.meanCapacity
	switch {
	case depressed && !r.below:
		r.dipStep = step
		r.recoverStep = -1
		r.below = true
	case !depressed && r.below:
		r.recoverStep = step
		r.below = false
	}
}

func (r *RecoverySteps) Value() float64 {
	if r.dipStep < 0 {
		return 0
	}
	if r.recoverStep < 0 {
		return float64(r.lastStep - r.dipStep)
	}
	return float64(r.recoverStep - r.dipStep)
}

func (r *RecoverySteps) Reset() {
	r.dipStep = -1
	r.recoverStep = -1
	r.lastStep = 0
	r.below = false
}

// Collect replays a finished stack through the given metrics and
// returns their values by name. Useful when the stack was loaded from
// storage rather than freshly computed.
func Collect(st *field.Stack, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for t := 0; t < st.Len(); t++ {
		g := st.Layer(t)
		for _, m := range ms {
			m.OnStep(t, g)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		v := m.Value()
		if math.IsNaN(v) {
			v = 0
		}
		out[m.Name()] = v
	}
	return out
}
