package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/crazy3lf/colorconv"
)

// amplitudeByte maps an amplitude onto [0,255] given the configured float
// range, clamping out-of-range values rather than wrapping.
func amplitudeByte(v float32, min, max float64) uint8 {
	n := clamp01((float64(v) - min) / (max - min))
	return uint8(n*255 + 0.5)
}

// writeGrayPNG encodes the field as a single-channel image.
func writeGrayPNG(path string, field []float32, width, height int, min, max float64) error {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: amplitudeByte(field[y*width+x], min, max)})
		}
	}
	return writePNG(path, img)
}

// amplitudePalette maps scaled amplitude onto a blue-to-red HSV ramp.
var amplitudePalette = buildPalette()

func buildPalette() [256]color.RGBA {
	var table [256]color.RGBA
	for i := range table {
		hue := 240 * (1 - float64(i)/255)
		r, g, b, _ := colorconv.HSVToRGB(hue, 1, 1)
		table[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return table
}

// writeColorPNG encodes the field through the amplitude palette.
func writeColorPNG(path string, field []float32, width, height int, min, max float64) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, amplitudePalette[amplitudeByte(field[y*width+x], min, max)])
		}
	}
	return writePNG(path, img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// exportFrame writes one snapshot of the field at timestep t under the
// configured export directory.
func exportFrame(cfg *Config, field []float32, t uint64) (string, error) {
	if err := os.MkdirAll(cfg.Export.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(cfg.Export.Dir, fmt.Sprintf("field_%06d.png", t))
	w, h := cfg.Grid.Width, cfg.Grid.Height
	min, max := cfg.Export.Min, cfg.Export.Max
	if cfg.Export.Color {
		return path, writeColorPNG(path, field, w, h, min, max)
	}
	return path, writeGrayPNG(path, field, w, h, min, max)
}
