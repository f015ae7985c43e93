package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Draw renders the most recent published slot and the optional debug overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	if len(g.pixels) == g.width*g.height*4 {
		screen.WritePixels(g.pixels)
	}

	if *debugFlag {
		fps := ebiten.ActualFPS()
		tps := ebiten.ActualTPS()
		if tps < 0 {
			tps = 0
		}
		debugMsg := fmt.Sprintf("FPS: %.1f (%.1f TPS)\nState: %s\nTick: %d\nSteps/frame: %d (+/-)\nSolver: %s",
			fps, tps, g.driver.State(), g.driver.Timestep(), g.simStepMultiplier, g.solverName)
		ebitenutil.DebugPrint(screen, debugMsg)
	}
}

// Layout reports the logical screen size used by Ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return g.width, g.height }

// refreshPixels converts the field snapshot into RGBA bytes for WritePixels.
func (g *Game) refreshPixels() {
	min, max := g.cfg.Export.Min, g.cfg.Export.Max
	if g.cfg.Export.Color {
		for i, v := range g.field {
			c := amplitudePalette[amplitudeByte(v, min, max)]
			base := i * 4
			g.pixels[base] = c.R
			g.pixels[base+1] = c.G
			g.pixels[base+2] = c.B
			g.pixels[base+3] = 255
		}
		return
	}
	for i, v := range g.field {
		intensity := amplitudeByte(v, min, max)
		base := i * 4
		g.pixels[base] = intensity
		g.pixels[base+1] = intensity
		g.pixels[base+2] = intensity
		g.pixels[base+3] = 255
	}
}
