package main

// testConfig returns a minimal valid configuration running on the CPU
// backend with forcing disabled.
func testConfig(w, h int) *Config {
	return &Config{
		Grid:    GridConfig{Width: w, Height: h},
		Solver:  SolverConfig{Propagation: 0.35, Damping: 1, Backend: "cpu"},
		Initial: InitialConfig{Preset: "zero"},
		Export:  ExportConfig{Dir: "scratch", Min: -1, Max: 1},
	}
}

// pulseField builds a w x h field that is zero everywhere except a single
// cell.
func pulseField(w, h, x, y int, amplitude float32) []float32 {
	field := make([]float32, w*h)
	field[y*w+x] = amplitude
	return field
}
