package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Tuning constants for the solver and front end. These are not correctness
// parameters; grid size and physics coefficients live in Config.
const (
	windowScale = 2

	// OpenCL dispatch uses 8x8 workgroups; the launch range is rounded up
	// to workgroup multiples and guarded in-kernel.
	workgroupDim = 8

	// Disturbances keep this many cells away from the fixed border.
	disturbMargin = 5

	simMultiplierStep = 5
	minSimMultiplier  = 1
	maxSimMultiplier  = 500

	mouseImpulseStrength = 40.0
)

// GridConfig fixes the simulation grid dimensions for the run.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SolverConfig holds the finite-difference coefficients and backend choice.
type SolverConfig struct {
	// Propagation is the stencil weighting R; explicit schemes on a
	// unit-spaced grid are stable for R <= 0.5.
	Propagation float64 `yaml:"propagation"`
	// Damping multiplies every updated cell once per tick. 1.0 disables it.
	Damping float64 `yaml:"damping"`
	// Backend selects the compute device: "auto", "opencl" or "cpu".
	Backend string `yaml:"backend"`
}

// DisturbanceConfig controls the random forcing applied to the field.
type DisturbanceConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Probability float64 `yaml:"probability"` // chance per tick
	Magnitude   float64 `yaml:"magnitude"`
	Seed        int64   `yaml:"seed"` // 0 seeds from the clock
}

// InitialConfig selects the field all three grid slots start from.
type InitialConfig struct {
	// Preset is one of "zero", "constant", "pulse" or "noise".
	Preset string  `yaml:"preset"`
	Value  float64 `yaml:"value"`       // constant preset / pulse amplitude
	Scale  float64 `yaml:"noise_scale"` // noise preset feature size in cells
}

// ExportConfig controls image and telemetry output.
type ExportConfig struct {
	Dir   string `yaml:"dir"`
	Every int    `yaml:"every"` // headless: write a frame every N ticks, 0 = off
	Color bool   `yaml:"color"` // palette PNG instead of grayscale
	// Min and Max define the amplitude range mapped onto [0,255];
	// values outside are clamped.
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config is the root configuration document.
type Config struct {
	Grid        GridConfig        `yaml:"grid"`
	Solver      SolverConfig      `yaml:"solver"`
	Disturbance DisturbanceConfig `yaml:"disturbance"`
	Initial     InitialConfig     `yaml:"initial"`
	Export      ExportConfig      `yaml:"export"`
}

// loadConfig parses the embedded defaults and then, if path is non-empty,
// overlays the YAML document found there. The result is validated; an
// invalid configuration never produces partial solver state.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configurations the solver cannot run: grids with no
// interior cells, unstable propagation coefficients and nonsensical rates.
func (c *Config) validate() error {
	if c.Grid.Width < 3 || c.Grid.Height < 3 {
		return fmt.Errorf("grid %dx%d leaves no interior cells; both dimensions must be >= 3",
			c.Grid.Width, c.Grid.Height)
	}
	if c.Solver.Propagation <= 0 || c.Solver.Propagation > 0.5 {
		return fmt.Errorf("propagation coefficient %g outside stable range (0, 0.5]",
			c.Solver.Propagation)
	}
	if c.Solver.Damping <= 0 || c.Solver.Damping > 1 {
		return fmt.Errorf("damping factor %g outside (0, 1]", c.Solver.Damping)
	}
	switch c.Solver.Backend {
	case "auto", "opencl", "cpu":
	default:
		return fmt.Errorf("unknown solver backend %q", c.Solver.Backend)
	}
	if c.Disturbance.Probability < 0 || c.Disturbance.Probability > 1 {
		return fmt.Errorf("disturbance probability %g outside [0, 1]",
			c.Disturbance.Probability)
	}
	switch c.Initial.Preset {
	case "zero", "constant", "pulse", "noise":
	default:
		return fmt.Errorf("unknown initial field preset %q", c.Initial.Preset)
	}
	if c.Export.Max <= c.Export.Min {
		return fmt.Errorf("export range [%g, %g] is empty", c.Export.Min, c.Export.Max)
	}
	return nil
}
