package main

import "log"

// stepParams carries the per-dispatch values the update kernel needs. The
// logical timestep selects the three slot indices; r weights the stencil and
// damp is applied multiplicatively to every updated cell (1.0 disables it).
type stepParams struct {
	t    uint64
	r    float32
	damp float32
}

// impulse is a localized perturbation added to the field at slot(t).
type impulse struct {
	x, y      int
	magnitude float32
}

// waveSolver is one compute backend for the finite-difference update. Cell
// updates within a dispatch are independent: the kernel reads only the two
// older slots and writes exactly one cell of the newest, so invocations may
// run in any order or fully in parallel.
//
// Advance and Inject may complete asynchronously on the device; ReadSlot is
// the consumption boundary and returns only after every previously issued
// dispatch is ordered before the copy.
type waveSolver interface {
	// Advance dispatches one stencil update: slot(p.t) is computed from
	// slot(p.t-1) and slot(p.t-2) over the interior region.
	Advance(p stepParams) error

	// Inject adds a radially decaying bump centered on the impulse site to
	// slot(t), emulating external forcing.
	Inject(imp impulse, t uint64) error

	// ReadSlot copies the full contents of a physical slot into dst
	// (row-major, width*height values).
	ReadSlot(slot int, dst []float32) error

	// Name identifies the backing device for logging.
	Name() string

	Close()
}

// buildSolver constructs the configured backend. With "auto" it prefers the
// OpenCL device and falls back to the CPU solver when no device is usable.
func buildSolver(cfg *Config, initial []float32) (waveSolver, error) {
	w, h := cfg.Grid.Width, cfg.Grid.Height
	switch cfg.Solver.Backend {
	case "cpu":
		return newCPUSolver(w, h, initial)
	case "opencl":
		return newOpenCLSolver(w, h, initial)
	default:
		solver, err := newOpenCLSolver(w, h, initial)
		if err != nil {
			log.Printf("OpenCL unavailable, using CPU solver: %v", err)
			return newCPUSolver(w, h, initial)
		}
		return solver, nil
	}
}
