// Package storage persists finished runs under a data directory: one
// subdirectory per run with a metadata.json plus the biomass data as
// CSV. Grid runs store the stack in long form (step,row,col,biomass),
// the "simple stack of 2D numeric grids" and nothing fancier.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"benthosim/internal/field"
	"benthosim/internal/sspm"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Kind      string             `json:"kind"` // "scalar" or "grid"
	Timestamp time.Time          `json:"timestamp"`
	Seed      uint64             `json:"seed"`
	Steps     int                `json:"steps"`
	Rows      int                `json:"rows,omitempty"`
	Cols      int                `json:"cols,omitempty"`
	Rule      string             `json:"rule,omitempty"`
	Every     int                `json:"every,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func (s *Store) runDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *Store) writeMeta(meta RunMetadata) error {
	f, err := os.Create(filepath.Join(s.runDir(meta.ID), "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// SaveSeries stores a scalar run.
func (s *Store) SaveSeries(scenario string, seed uint64, series sspm.Series) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().UnixNano())
	if err := os.MkdirAll(s.runDir(runID), 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  scenario,
		Kind:      "scalar",
		Timestamp: time.Now(),
		Seed:      seed,
		Steps:     len(series),
	}
	if err := s.writeMeta(meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.runDir(runID), "series.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"step", "biomass"}); err != nil {
		return "", err
	}
	for t, v := range series {
		row := []string{
			strconv.Itoa(t),
			strconv.FormatFloat(v, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// SaveStack stores a grid run along with its collected metrics. Rule
// and every record the removal regime so playback can mark event steps.
func (s *Store) SaveStack(scenario string, seed uint64, rule string, every int, st *field.Stack, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().UnixNano())
	if err := os.MkdirAll(s.runDir(runID), 0755); err != nil {
		return "", err
	}

	rows, cols := st.Dims()
	meta := RunMetadata{
		ID:        runID,
		Scenario:  scenario,
		Kind:      "grid",
		Timestamp: time.Now(),
		Seed:      seed,
		Steps:     st.Len(),
		Rows:      rows,
		Cols:      cols,
		Rule:      rule,
		Every:     every,
		Metrics:   metrics,
	}
	if err := s.writeMeta(meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.runDir(runID), "stack.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"step", "row", "col", "biomass"}); err != nil {
		return "", err
	}
	for t := 0; t < st.Len(); t++ {
		g := st.Layer(t)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				rec := []string{
					strconv.Itoa(t),
					strconv.Itoa(r),
					strconv.Itoa(c),
					strconv.FormatFloat(g.At(r, c), 'f', 6, 64),
				}
				if err := w.Write(rec); err != nil {
					return "", err
				}
			}
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads back a scalar run.
func (s *Store) LoadSeries(runID string) (sspm.Series, error) {
	records, err := readCSV(filepath.Join(s.runDir(runID), "series.csv"))
	if err != nil {
		return nil, err
	}

	series := make(sspm.Series, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: bad biomass value %q in %s", rec[1], runID)
		}
		series = append(series, v)
	}
	return series, nil
}

// LoadStack reads back a grid run. Dimensions come from the metadata.
func (s *Store) LoadStack(runID string) (*field.Stack, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Kind != "grid" {
		return nil, fmt.Errorf("storage: run %s is not a grid run", runID)
	}

	records, err := readCSV(filepath.Join(s.runDir(runID), "stack.csv"))
	if err != nil {
		return nil, err
	}

	layers := make([]*field.Grid, meta.Steps)
	for i := range layers {
		layers[i] = field.NewGrid(meta.Rows, meta.Cols)
	}
	for _, rec := range records {
		if len(rec) < 4 {
			continue
		}
		t, err1 := strconv.Atoi(rec[0])
		r, err2 := strconv.Atoi(rec[1])
		c, err3 := strconv.Atoi(rec[2])
		v, err4 := strconv.ParseFloat(rec[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("storage: malformed stack record %v in %s", rec, runID)
		}
		if t < 0 || t >= len(layers) || r < 0 || r >= meta.Rows || c < 0 || c >= meta.Cols {
			return nil, fmt.Errorf("storage: out-of-range stack record %v in %s", rec, runID)
		}
		layers[t].Set(r, c, v)
	}

	return field.NewStack(layers)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, nil
	}
	return records[1:], nil // drop header
}
