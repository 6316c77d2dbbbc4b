package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRows     = 10
	DefaultCols     = 10
	DefaultSteps    = 120
	DefaultRate     = 0.75
	DefaultInitLow  = 0.0
	DefaultInitHigh = 1000.0
	DefaultEvery    = 12
	DefaultFraction = 0.45
)

// Config describes one simulation scenario: grid shape, initial
// condition distribution, growth regime and removal regime. It is the
// yaml surface; turning it into engine inputs happens in the CLI.
type Config struct {
	Scenario string        `yaml:"scenario"`
	Rows     int           `yaml:"rows"`
	Cols     int           `yaml:"cols"`
	Steps    int           `yaml:"steps"`
	Seed     uint64        `yaml:"seed"`
	Init     InitConfig    `yaml:"init"`
	Growth   GrowthConfig  `yaml:"growth"`
	Removal  RemovalConfig `yaml:"removal"`
}

// InitConfig bounds the uniform draw for the initial grid. The initial
// grid doubles as the carrying capacity grid: the community starts at
// equilibrium.
type InitConfig struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// GrowthConfig selects a fixed rate or a fresh uniform draw per
// timestep (shared by all cells within a step).
type GrowthConfig struct {
	Rate       float64 `yaml:"rate"`
	Stochastic bool    `yaml:"stochastic"`
	Low        float64 `yaml:"low"`
	High       float64 `yaml:"high"`
}

// RemovalConfig selects the removal rule: "none", "fraction" (uniform
// fraction of standing biomass every Every steps) or "gaussian"
// (spatially decaying fraction around a disturbance center).
type RemovalConfig struct {
	Rule      string  `yaml:"rule"`
	Every     int     `yaml:"every"`
	Fraction  float64 `yaml:"fraction"`
	CenterRow int     `yaml:"center_row"`
	CenterCol int     `yaml:"center_col"`
	Sigma     float64 `yaml:"sigma"`
	Peak      float64 `yaml:"peak"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: "baseline",
		Rows:     DefaultRows,
		Cols:     DefaultCols,
		Steps:    DefaultSteps,
		Init:     InitConfig{Low: DefaultInitLow, High: DefaultInitHigh},
		Growth:   GrowthConfig{Rate: DefaultRate},
		Removal:  RemovalConfig{Rule: "none", Every: DefaultEvery, Fraction: DefaultFraction},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Check rejects scenario files the engines would refuse anyway, with
// friendlier messages.
func (c *Config) Check() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("config: grid must be at least 1x1, got %dx%d", c.Rows, c.Cols)
	}
	if c.Steps < 1 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	if c.Init.High <= c.Init.Low {
		return fmt.Errorf("config: init bounds [%v, %v) are empty", c.Init.Low, c.Init.High)
	}
	switch c.Removal.Rule {
	case "", "none", "fraction", "gaussian":
	default:
		return fmt.Errorf("config: unknown removal rule %q", c.Removal.Rule)
	}
	if c.Growth.Stochastic && c.Growth.High <= c.Growth.Low {
		return fmt.Errorf("config: growth bounds [%v, %v) are empty", c.Growth.Low, c.Growth.High)
	}
	return nil
}
