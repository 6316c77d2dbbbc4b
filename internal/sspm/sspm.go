// Package sspm implements the Schaefer surplus production model, a
// discrete-time recurrence for biomass recovering logistically toward a
// carrying capacity between removal events:
//
//	B[t] = B[t-1] + r*B[t-1]*(1 - B[t-1]/K) - C[t]
//
// The recurrence is applied exactly as stated. There is no clamping:
// if removal exceeds standing biomass plus growth, the biomass goes
// negative and keeps evolving from there. Callers that care can scan a
// finished run with Degenerate.
//
// Both engines are pure: any randomness must arrive as a pre-drawn
// series or a seeded source, never generated internally.
package sspm

import (
	"math"

	"benthosim/internal/field"
)

// Step applies one transition of the recurrence to a single biomass
// value.
func Step(biomass, rate, capacity, removal float64) float64 {
	return biomass + rate*biomass*(1-biomass/capacity) - removal
}

// Series is a scalar biomass trajectory, one value per timestep.
// Index 0 is the initial condition.
type Series []float64

// Degenerate returns the index of the first negative or non-finite
// value, or -1 if the whole series stays well-behaved. This is the
// opt-in post-hoc check; the engines themselves never reject such
// values.
func (s Series) Degenerate() int {
	for i, v := range s {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// DegenerateLayer returns the index of the first layer containing a
// negative or non-finite cell, or -1 if none does.
func DegenerateLayer(st *field.Stack) int {
	for t := 0; t < st.Len(); t++ {
		l := st.Layer(t)
		for _, v := range l.Values() {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return t
			}
		}
	}
	return -1
}
