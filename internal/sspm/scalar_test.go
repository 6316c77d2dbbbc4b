package sspm

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestStepFixedPoint(t *testing.T) {
	// At carrying capacity with no removal the system stays put,
	// whatever the rate.
	for _, r := range []float64{0, 0.1, 0.75, 1.0} {
		if got := Step(1000, r, 1000, 0); got != 1000 {
			t.Errorf("Step(1000, %v, 1000, 0) = %v, want 1000", r, got)
		}
	}
}

func TestStepMonotonicApproach(t *testing.T) {
	// Below capacity with no removal, biomass strictly grows and never
	// overshoots K for r <= 1.
	for _, r := range []float64{0.1, 0.5, 1.0} {
		for _, b := range []float64{1, 250, 500, 999} {
			next := Step(b, r, 1000, 0)
			if next <= b {
				t.Errorf("Step(%v, %v, 1000, 0) = %v, not strictly increasing", b, r, next)
			}
			if next > 1000 {
				t.Errorf("Step(%v, %v, 1000, 0) = %v, exceeded capacity", b, r, next)
			}
		}
	}
}

func TestRunScalarLength(t *testing.T) {
	for _, steps := range []int{1, 2, 13, 120} {
		series, err := RunScalar(ScalarConfig{
			Initial:  500,
			Rate:     0.5,
			Capacity: 1000,
			Steps:    steps,
		})
		if err != nil {
			t.Fatalf("steps=%d: %v", steps, err)
		}
		if len(series) != steps {
			t.Errorf("steps=%d: got %d values", steps, len(series))
		}
		if series[0] != 500 {
			t.Errorf("steps=%d: seed value %v, want 500", steps, series[0])
		}
	}
}

func TestRunScalarPulseScenario(t *testing.T) {
	// The reference scenario: a system at capacity, one 450-unit
	// removal at the transition into step 12.
	series, err := RunScalar(ScalarConfig{
		Initial:  1000,
		Rate:     0.75,
		Capacity: 1000,
		Removals: PulseRemovals(13, 12, 450),
		Steps:    13,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i <= 11; i++ {
		if series[i] != 1000 {
			t.Errorf("series[%d] = %v, want 1000", i, series[i])
		}
	}
	if series[12] != 550 {
		t.Errorf("series[12] = %v, want 550", series[12])
	}
}

func TestRunScalarRecoveryAfterPulse(t *testing.T) {
	// After the removal the stock climbs back toward K and stays below
	// it until the next event.
	series, err := RunScalar(ScalarConfig{
		Initial:  1000,
		Rate:     0.75,
		Capacity: 1000,
		Removals: PulseRemovals(24, 12, 450),
		Steps:    24,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 13; i < 24; i++ {
		if series[i] <= series[i-1] {
			t.Errorf("series[%d] = %v, not recovering (prev %v)", i, series[i], series[i-1])
		}
		if series[i] > 1000 {
			t.Errorf("series[%d] = %v, exceeded capacity during recovery", i, series[i])
		}
	}
}

func TestRunScalarDeterminism(t *testing.T) {
	cfg := ScalarConfig{
		Initial:    800,
		RateSeries: []float64{0.7, 0.6, 0.8, 0.75, 0.9},
		Capacity:   1000,
		Removals:   []float64{0, 100, 0, 250, 0},
		Steps:      6,
	}

	a, err := RunScalar(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunScalar(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated runs differ: %v vs %v", a, b)
	}
}

func TestRunScalarRateSeries(t *testing.T) {
	// Per-transition rates must be consumed in order.
	series, err := RunScalar(ScalarConfig{
		Initial:    500,
		RateSeries: []float64{0.2, 0.8},
		Capacity:   1000,
		Steps:      3,
	})
	if err != nil {
		t.Fatal(err)
	}

	want1 := Step(500, 0.2, 1000, 0)
	want2 := Step(want1, 0.8, 1000, 0)
	if series[1] != want1 || series[2] != want2 {
		t.Errorf("got %v, want [500 %v %v]", series, want1, want2)
	}
}

func TestRunScalarInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  ScalarConfig
		want error
	}{
		{"zero steps", ScalarConfig{Initial: 1, Capacity: 1, Steps: 0}, ErrSteps},
		{"negative steps", ScalarConfig{Initial: 1, Capacity: 1, Steps: -3}, ErrSteps},
		{"zero capacity", ScalarConfig{Initial: 1, Capacity: 0, Steps: 5}, ErrCapacity},
		{"negative capacity", ScalarConfig{Initial: 1, Capacity: -10, Steps: 5}, ErrCapacity},
		{"negative initial", ScalarConfig{Initial: -1, Capacity: 10, Steps: 5}, ErrInitial},
		{"nan initial", ScalarConfig{Initial: math.NaN(), Capacity: 10, Steps: 5}, ErrInitial},
		{"short removals", ScalarConfig{Initial: 1, Capacity: 10, Removals: []float64{0}, Steps: 5}, ErrSeriesLength},
		{"long rates", ScalarConfig{Initial: 1, Capacity: 10, RateSeries: []float64{1, 1, 1, 1, 1}, Steps: 5}, ErrSeriesLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := RunScalar(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("got err %v, want %v", err, tt.want)
			}
			if series != nil {
				t.Error("got a partial series on invalid config")
			}
		})
	}
}

func TestSeriesDegenerate(t *testing.T) {
	// Removal beyond the stock drives biomass negative; the engine
	// lets that through and the scan reports it.
	series, err := RunScalar(ScalarConfig{
		Initial:  100,
		Rate:     0.5,
		Capacity: 1000,
		Removals: []float64{0, 500, 0},
		Steps:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if i := series.Degenerate(); i != 2 {
		t.Errorf("Degenerate() = %d, want 2 (series %v)", i, series)
	}

	clean := Series{1000, 900, 950}
	if i := clean.Degenerate(); i != -1 {
		t.Errorf("Degenerate() = %d on a clean series", i)
	}
}

func TestPulseRemovals(t *testing.T) {
	// Events at 0-based steps 12, 24, ... and nowhere else.
	rem := PulseRemovals(30, 12, 450)
	if len(rem) != 29 {
		t.Fatalf("got %d entries, want 29", len(rem))
	}
	for t2 := 1; t2 < 30; t2++ {
		want := 0.0
		if t2%12 == 0 {
			want = 450
		}
		if rem[t2-1] != want {
			t.Errorf("removal into step %d = %v, want %v", t2, rem[t2-1], want)
		}
	}
}
