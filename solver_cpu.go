package main

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// cpuSolver runs the stencil update on the host using a pool of persistent
// worker goroutines, each owning a fixed band of rows. It is the reference
// backend: the OpenCL kernel computes the identical float32 arithmetic.
type cpuSolver struct {
	grid *gridState

	mu      sync.Mutex
	cond    *sync.Cond
	step    int
	pending int
	params  stepParams
	closed  bool

	bands [][2]int // [start, end) row ranges, one per worker
}

// newCPUSolver allocates the slot arena and starts the worker pool.
func newCPUSolver(width, height int, initial []float32) (*cpuSolver, error) {
	grid, err := newGridState(width, height, initial)
	if err != nil {
		return nil, err
	}
	s := &cpuSolver{grid: grid}
	s.cond = sync.NewCond(&s.mu)

	workers := runtime.NumCPU()
	if workers > height {
		workers = height
	}
	if workers < 1 {
		workers = 1
	}
	rowsPer := (height + workers - 1) / workers
	for i := 0; i < workers; i++ {
		start := i * rowsPer
		if start >= height {
			break
		}
		end := start + rowsPer
		if end > height {
			end = height
		}
		s.bands = append(s.bands, [2]int{start, end})
	}
	for i := range s.bands {
		go s.workerLoop(i)
	}
	return s, nil
}

// Advance wakes the workers for one dispatch and blocks until every band has
// been updated. Each worker writes a disjoint set of cells, so the dispatch
// needs no further synchronization.
func (s *cpuSolver) Advance(p stepParams) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("solver is closed")
	}
	s.params = p
	s.pending = len(s.bands)
	s.step++
	s.cond.Broadcast()
	for s.pending > 0 && !s.closed {
		s.cond.Wait()
	}
	s.mu.Unlock()
	return nil
}

// workerLoop executes stencil updates for the rows assigned to one worker.
func (s *cpuSolver) workerLoop(index int) {
	lastStep := 0
	s.mu.Lock()
	for {
		for s.step == lastStep && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		lastStep = s.step
		params := s.params
		band := s.bands[index]
		s.mu.Unlock()

		s.processBand(band[0], band[1], params)

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.cond.Broadcast()
		}
	}
}

// processBand applies the finite-difference recurrence to the interior cells
// of rows [y0, y1). Boundary rows and columns are skipped; their slot values
// were written at initialization and never change.
func (s *cpuSolver) processBand(y0, y1 int, p stepParams) {
	width := s.grid.width
	height := s.grid.height
	curr := s.grid.slot(prevSlot(p.t))
	before := s.grid.slot(beforeSlot(p.t))
	next := s.grid.slot(slotFor(p.t))

	for y := y0; y < y1; y++ {
		if y == 0 || y == height-1 {
			continue
		}
		rowBase := y * width
		center := curr[rowBase : rowBase+width]
		top := curr[rowBase-width : rowBase]
		bottom := curr[rowBase+width : rowBase+2*width]
		prev2 := before[rowBase : rowBase+width]
		nextRow := next[rowBase : rowBase+width]

		for x := 1; x < width-1; x++ {
			c := center[x]
			lap := center[x-1] + center[x+1] + top[x] + bottom[x] - 4*c
			nextRow[x] = (p.r*lap + 2*c - prev2[x]) * p.damp
		}
	}
}

// Inject adds a bump decaying like 1/r^3 around the impulse site, keeping
// disturbMargin cells away from the fixed border.
func (s *cpuSolver) Inject(imp impulse, t uint64) error {
	width := s.grid.width
	height := s.grid.height
	buf := s.grid.slot(slotFor(t))
	for y := disturbMargin; y < height-disturbMargin; y++ {
		for x := disturbMargin; x < width-disturbMargin; x++ {
			dx := float64(x - imp.x)
			dy := float64(y - imp.y)
			dist := math.Pow(dx*dx+dy*dy, 1.5)
			if dist < 2 {
				dist = 2
			}
			buf[y*width+x] += imp.magnitude / float32(dist)
		}
	}
	return nil
}

// ReadSlot copies one physical slot into dst.
func (s *cpuSolver) ReadSlot(slot int, dst []float32) error {
	src := s.grid.slot(slot)
	if len(dst) != len(src) {
		return fmt.Errorf("destination has %d cells, want %d", len(dst), len(src))
	}
	copy(dst, src)
	return nil
}

func (s *cpuSolver) Name() string {
	return fmt.Sprintf("CPU (%d workers)", len(s.bands))
}

// Close stops the worker pool. The slot arena stays readable.
func (s *cpuSolver) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}
