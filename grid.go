package main

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// slotCount is the number of physical timestep slots held by the grid: the
// step being written, the previous step and the one before it.
const slotCount = 3

// slotFor maps a logical timestep onto its physical storage slot.
func slotFor(t uint64) int { return int(t % slotCount) }

// prevSlot returns the slot holding timestep t-1.
func prevSlot(t uint64) int { return int((t + 2) % slotCount) }

// beforeSlot returns the slot holding timestep t-2.
func beforeSlot(t uint64) int { return int((t + 1) % slotCount) }

// gridState owns the scalar field at three consecutive timesteps. Slots are
// reused in rotation, indexed by t mod 3; the stencil only ever reads the two
// older slots while writing the newest, so no in-place update occurs. Boundary
// cells are never written after initialization, so every slot carries the same
// border values for the lifetime of the grid.
type gridState struct {
	width, height int
	slots         [slotCount][]float32
}

// newGridState allocates a W x H x 3 arena and fills every slot with the
// initial field, giving the first stencil evaluation valid "previous" and
// "before-previous" readings (a zero-initial-velocity condition). The
// dimensions are fixed; resizing requires a new gridState.
func newGridState(width, height int, initial []float32) (*gridState, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("grid %dx%d leaves no interior cells", width, height)
	}
	size := width * height
	if len(initial) != size {
		return nil, fmt.Errorf("initial field has %d cells, want %d", len(initial), size)
	}
	g := &gridState{width: width, height: height}
	for i := range g.slots {
		g.slots[i] = make([]float32, size)
		copy(g.slots[i], initial)
	}
	return g, nil
}

// slot exposes the buffer for one physical slot index.
func (g *gridState) slot(i int) []float32 {
	return g.slots[i]
}

// at reads a single cell from the given slot.
func (g *gridState) at(slot, x, y int) float32 {
	return g.slots[slot][y*g.width+x]
}

// initialField samples the configured preset into a freshly allocated
// row-major buffer.
func initialField(cfg *Config) []float32 {
	w, h := cfg.Grid.Width, cfg.Grid.Height
	switch cfg.Initial.Preset {
	case "constant":
		return sampleField(w, h, func(x, y int) float32 {
			return float32(cfg.Initial.Value)
		})
	case "pulse":
		// Centered plateau covering the middle half of each axis.
		amp := float32(cfg.Initial.Value)
		return sampleField(w, h, func(x, y int) float32 {
			if x >= w/4 && x < w*3/4 && y >= h/4 && y < h*3/4 {
				return amp
			}
			return 0
		})
	case "noise":
		scale := cfg.Initial.Scale
		if scale <= 0 {
			scale = 1
		}
		noise := opensimplex.NewNormalized(cfg.Disturbance.Seed)
		amp := cfg.Initial.Value
		return sampleField(w, h, func(x, y int) float32 {
			v := noise.Eval2(float64(x)/scale, float64(y)/scale)
			return float32((v*2 - 1) * amp)
		})
	default: // zero
		return make([]float32, w*h)
	}
}

// sampleField evaluates fn over every cell except the fixed one-cell border,
// which is held at zero so the Dirichlet edge condition starts clean.
func sampleField(width, height int, fn func(x, y int) float32) []float32 {
	field := make([]float32, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			field[y*width+x] = fn(x, y)
		}
	}
	return field
}

// clamp01 restricts v to [0, 1].
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
