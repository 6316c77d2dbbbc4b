package config

import "sort"

// Presets are the built-in scenarios. Removal periods follow the
// reference disturbance regime of one event per 12 steps.
var Presets = map[string]*Config{
	"baseline": {
		Scenario: "baseline",
		Rows:     10, Cols: 10, Steps: 120, Seed: 1,
		Init:    InitConfig{Low: 0, High: 1000},
		Growth:  GrowthConfig{Rate: 0.75},
		Removal: RemovalConfig{Rule: "none"},
	},
	"pulse": {
		Scenario: "pulse",
		Rows:     10, Cols: 10, Steps: 120, Seed: 1,
		Init:    InitConfig{Low: 0, High: 1000},
		Growth:  GrowthConfig{Rate: 0.75},
		Removal: RemovalConfig{Rule: "fraction", Every: 12, Fraction: 0.45},
	},
	"dredge": {
		Scenario: "dredge",
		Rows:     10, Cols: 10, Steps: 120, Seed: 1,
		Init:    InitConfig{Low: 0, High: 1000},
		Growth:  GrowthConfig{Rate: 0.75},
		Removal: RemovalConfig{
			Rule: "gaussian", Every: 12,
			CenterRow: 5, CenterCol: 5, Sigma: 2.0, Peak: 0.9,
		},
	},
	"stochastic": {
		Scenario: "stochastic",
		Rows:     10, Cols: 10, Steps: 120, Seed: 1,
		Init:    InitConfig{Low: 0, High: 1000},
		Growth:  GrowthConfig{Stochastic: true, Low: 0.5, High: 1.0},
		Removal: RemovalConfig{Rule: "fraction", Every: 12, Fraction: 0.45},
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
// Callers may mutate the copy freely.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
