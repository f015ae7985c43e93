package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game drives the simulation from Ebiten's update loop and turns published
// slots into pixels. The driver advances only while running; pausing freezes
// the counter without touching grid state.
type Game struct {
	cfg    *Config
	driver *driver

	width, height int
	field         []float32
	pixels        []byte

	simStepMultiplier int
	solverName        string
}

// newGame wires the front end to an initialized driver.
func newGame(cfg *Config, d *driver, solverName string) *Game {
	g := &Game{
		cfg:               cfg,
		driver:            d,
		width:             cfg.Grid.Width,
		height:            cfg.Grid.Height,
		field:             make([]float32, cfg.Grid.Width*cfg.Grid.Height),
		pixels:            make([]byte, cfg.Grid.Width*cfg.Grid.Height*4),
		simStepMultiplier: simMultiplierStep,
		solverName:        solverName,
	}
	// Show the initial field before the first tick.
	if _, err := d.SnapshotInto(g.field); err == nil {
		g.refreshPixels()
	}
	return g
}

// Update processes input, advances the simulation while running and refreshes
// the pixel mirror from the newest published slot.
func (g *Game) Update() error {
	g.handleControls()

	if err := g.driver.Advance(g.simStepMultiplier); err != nil {
		return err
	}
	if g.driver.State() == stateStopped {
		return ebiten.Termination
	}
	if _, err := g.driver.SnapshotInto(g.field); err != nil {
		return err
	}
	g.refreshPixels()
	return nil
}

// handleControls maps keyboard and mouse input onto the driver's control
// surface.
func (g *Game) handleControls() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		switch g.driver.State() {
		case stateReady:
			if err := g.driver.Start(); err != nil {
				log.Printf("start: %v", err)
			}
		case stateRunning:
			if err := g.driver.Pause(); err != nil {
				log.Printf("pause: %v", err)
			}
		case statePaused:
			if err := g.driver.Resume(); err != nil {
				log.Printf("resume: %v", err)
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.driver.Step(1); err != nil {
			log.Printf("step: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		if err := g.driver.Step(g.simStepMultiplier); err != nil {
			log.Printf("step: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		if field, t, err := g.driver.Snapshot(); err != nil {
			log.Printf("snapshot: %v", err)
		} else if path, err := exportFrame(g.cfg, field, t); err != nil {
			log.Printf("export: %v", err)
		} else {
			log.Printf("Exported %s", path)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.simStepMultiplier += simMultiplierStep
		if g.simStepMultiplier > maxSimMultiplier {
			g.simStepMultiplier = maxSimMultiplier
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.simStepMultiplier -= simMultiplierStep
		if g.simStepMultiplier < minSimMultiplier {
			g.simStepMultiplier = minSimMultiplier
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if x >= 0 && x < g.width && y >= 0 && y < g.height {
			if err := g.driver.Poke(x, y, mouseImpulseStrength); err != nil {
				log.Printf("impulse: %v", err)
			}
		}
	}
}
