package main

import (
	"fmt"
	"sync"
)

// driverState tracks the simulation lifecycle.
type driverState int

const (
	stateUninitialized driverState = iota
	stateReady
	stateRunning
	statePaused
	stateStopped
)

func (s driverState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateReady:
		return "ready"
	case stateRunning:
		return "running"
	case statePaused:
		return "paused"
	case stateStopped:
		return "stopped"
	}
	return "unknown"
}

// driver owns the timestep counter and the grid's compute backend. It issues
// dispatches sequentially and publishes slot(t) after each tick; consumers
// observe the field only through Snapshot/SnapshotInto, whose device read is
// ordered after every dispatch on the backend's in-order queue.
//
// A dispatch failure is fatal to the run: the error is surfaced, the driver
// transitions to stopped and the step is never retried, since the PDE state
// is order-dependent and a skipped or doubled step corrupts every later one.
type driver struct {
	mu     sync.Mutex
	state  driverState
	t      uint64
	params stepParams
	solver waveSolver
	dist   *disturber
	width  int
	height int
}

// newDriver allocates and initializes the grid and compute backend, leaving
// the driver ready. A validation or device failure creates no partial state.
func newDriver(cfg *Config) (*driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	solver, err := buildSolver(cfg, initialField(cfg))
	if err != nil {
		return nil, err
	}
	return &driver{
		state: stateReady,
		params: stepParams{
			r:    float32(cfg.Solver.Propagation),
			damp: float32(cfg.Solver.Damping),
		},
		solver: solver,
		dist:   newDisturber(cfg),
		width:  cfg.Grid.Width,
		height: cfg.Grid.Height,
	}, nil
}

// Start begins the run. Ticks advance through Advance calls from the
// front-end loop while the driver is running.
func (d *driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateReady {
		return fmt.Errorf("cannot start from state %s", d.state)
	}
	d.state = stateRunning
	return nil
}

// Pause freezes the timestep counter at the next tick boundary; grid state
// stays valid and inspectable.
func (d *driver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateRunning {
		return fmt.Errorf("cannot pause from state %s", d.state)
	}
	d.state = statePaused
	return nil
}

// Resume continues a paused run from the frozen counter value.
func (d *driver) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != statePaused {
		return fmt.Errorf("cannot resume from state %s", d.state)
	}
	d.state = stateRunning
	return nil
}

// Step advances exactly n ticks while the driver is ready or paused,
// regardless of real time elapsed. Step(0) leaves the grid untouched.
func (d *driver) Step(n int) error {
	if n < 0 {
		return fmt.Errorf("cannot step %d ticks", n)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateReady && d.state != statePaused {
		return fmt.Errorf("cannot step from state %s", d.state)
	}
	return d.ticks(n)
}

// Advance runs up to n ticks of a running simulation. It is a no-op outside
// the running state, which is what makes pausing cooperative: a pause
// requested mid-frame takes effect at the next tick boundary.
func (d *driver) Advance(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateRunning {
		return nil
	}
	return d.ticks(n)
}

// ticks issues n sequential dispatches. Caller holds d.mu.
func (d *driver) ticks(n int) error {
	for i := 0; i < n; i++ {
		if err := d.tick(); err != nil {
			d.fail()
			return err
		}
	}
	return nil
}

// tick advances the counter by one, dispatches the stencil update over the
// interior and applies any random disturbance to the freshly written slot.
func (d *driver) tick() error {
	t := d.t + 1
	p := d.params
	p.t = t
	if err := d.solver.Advance(p); err != nil {
		return fmt.Errorf("dispatch at timestep %d: %w", t, err)
	}
	if imp, ok := d.dist.next(); ok {
		if err := d.solver.Inject(imp, t); err != nil {
			return fmt.Errorf("disturbance at timestep %d: %w", t, err)
		}
	}
	d.t = t
	return nil
}

// fail releases resources after a fatal device error. Caller holds d.mu.
func (d *driver) fail() {
	if d.state != stateStopped {
		d.state = stateStopped
		d.solver.Close()
	}
}

// Stop releases the grid and device resources. Safe from any state.
func (d *driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == stateStopped {
		return
	}
	d.state = stateStopped
	d.solver.Close()
}

// Poke injects a manual impulse at the given cell into the current slot. The
// site is clamped to the interior. Works while paused.
func (d *driver) Poke(x, y int, magnitude float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == stateStopped {
		return fmt.Errorf("cannot inject into a stopped simulation")
	}
	imp := impulse{
		x:         clampCoord(x, 1, d.width-2),
		y:         clampCoord(y, 1, d.height-2),
		magnitude: magnitude,
	}
	return d.solver.Inject(imp, d.t)
}

// SnapshotInto copies the published slot into dst and returns the timestep it
// holds. Valid from initialization onward: before the first tick it yields
// the initial (not yet evolved) field.
func (d *driver) SnapshotInto(dst []float32) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == stateStopped {
		return 0, fmt.Errorf("cannot read from a stopped simulation")
	}
	if err := d.solver.ReadSlot(slotFor(d.t), dst); err != nil {
		return 0, err
	}
	return d.t, nil
}

// Snapshot is SnapshotInto with a freshly allocated buffer.
func (d *driver) Snapshot() ([]float32, uint64, error) {
	dst := make([]float32, d.width*d.height)
	t, err := d.SnapshotInto(dst)
	if err != nil {
		return nil, 0, err
	}
	return dst, t, nil
}

// Published reports the current timestep and the physical slot (t mod 3)
// holding its field, for consumers that address the slots directly.
func (d *driver) Published() (uint64, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.t, slotFor(d.t)
}

// State reports the current lifecycle state.
func (d *driver) State() driverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Timestep reports the logical timestep counter.
func (d *driver) Timestep() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.t
}
