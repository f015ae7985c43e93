package main

import (
	"math/rand"
	"time"
)

// disturber decides, once per tick, whether to add a random perturbation to
// the field. Site and magnitude come from a seedable pseudo-random source so
// runs can be reproduced exactly.
type disturber struct {
	rng         *rand.Rand
	probability float64
	magnitude   float32
	width       int
	height      int
}

// newDisturber builds the injector from configuration. Returns nil when
// forcing is disabled; a nil disturber injects nothing.
func newDisturber(cfg *Config) *disturber {
	if !cfg.Disturbance.Enabled || cfg.Disturbance.Probability <= 0 {
		return nil
	}
	seed := cfg.Disturbance.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &disturber{
		rng:         rand.New(rand.NewSource(seed)),
		probability: cfg.Disturbance.Probability,
		magnitude:   float32(cfg.Disturbance.Magnitude),
		width:       cfg.Grid.Width,
		height:      cfg.Grid.Height,
	}
}

// next rolls the per-tick dice and, on a hit, picks a random interior site
// away from the border margin. The rng is consumed in a fixed order so the
// same seed always yields the same impulse sequence.
func (d *disturber) next() (impulse, bool) {
	if d == nil {
		return impulse{}, false
	}
	if d.rng.Float64() >= d.probability {
		return impulse{}, false
	}
	spanX := d.width - 2*disturbMargin
	spanY := d.height - 2*disturbMargin
	if spanX <= 0 || spanY <= 0 {
		return impulse{}, false
	}
	return impulse{
		x:         disturbMargin + d.rng.Intn(spanX),
		y:         disturbMargin + d.rng.Intn(spanY),
		magnitude: d.magnitude,
	}, true
}
