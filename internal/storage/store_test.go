package storage

import (
	"math"
	"testing"

	"benthosim/internal/field"
	"benthosim/internal/sspm"
)

func TestSaveLoadSeries(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	series := sspm.Series{1000, 1000, 550, 718.75}
	runID, err := st.SaveSeries("scalar", 7, series)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load meta failed: %v", err)
	}
	if meta.Kind != "scalar" || meta.Steps != 4 || meta.Seed != 7 {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	loaded, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(loaded) != len(series) {
		t.Fatalf("got %d values, want %d", len(loaded), len(series))
	}
	for i := range series {
		if math.Abs(loaded[i]-series[i]) > 1e-5 {
			t.Errorf("value %d: %v != %v", i, loaded[i], series[i])
		}
	}
}

func TestSaveLoadStack(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	layers := []*field.Grid{
		field.Uniform(3, 4, 0, 1000, 1),
		field.Uniform(3, 4, 0, 1000, 2),
		field.Uniform(3, 4, 0, 1000, 3),
	}
	stack, err := field.NewStack(layers)
	if err != nil {
		t.Fatal(err)
	}

	runID, err := st.SaveStack("pulse", 9, "fraction", 12, stack, map[string]float64{"depletion": 0.45})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load meta failed: %v", err)
	}
	if meta.Kind != "grid" || meta.Rows != 3 || meta.Cols != 4 || meta.Steps != 3 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Rule != "fraction" || meta.Every != 12 {
		t.Errorf("removal regime lost: %+v", meta)
	}
	if meta.Metrics["depletion"] != 0.45 {
		t.Errorf("metrics lost: %+v", meta.Metrics)
	}

	loaded, err := st.LoadStack(runID)
	if err != nil {
		t.Fatalf("load stack failed: %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("got %d layers, want 3", loaded.Len())
	}
	for tt := 0; tt < 3; tt++ {
		for r := 0; r < 3; r++ {
			for c := 0; c < 4; c++ {
				if math.Abs(loaded.Layer(tt).At(r, c)-stack.Layer(tt).At(r, c)) > 1e-5 {
					t.Errorf("layer %d cell (%d,%d) mismatch", tt, r, c)
				}
			}
		}
	}
}

func TestLoadStackRejectsScalarRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, err := st.SaveSeries("scalar", 0, sspm.Series{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadStack(runID); err == nil {
		t.Error("expected error loading a scalar run as a stack")
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := st.SaveSeries("a", 0, sspm.Series{1}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.SaveSeries("b", 0, sspm.Series{2}); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("/nonexistent/benthosim-test")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
