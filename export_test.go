package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestAmplitudeByteScalesAndClamps(t *testing.T) {
	tests := []struct {
		v        float32
		min, max float64
		want     uint8
	}{
		{-1, -1, 1, 0},
		{1, -1, 1, 255},
		{0, -1, 1, 128},
		{-5, -1, 1, 0},   // clamped, not wrapped
		{5, -1, 1, 255},  // clamped, not wrapped
		{0.5, 0, 1, 128}, // unipolar range
	}
	for _, tt := range tests {
		if got := amplitudeByte(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("amplitudeByte(%v, %v, %v) = %d, want %d", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestWriteGrayPNG(t *testing.T) {
	const w, h = 4, 3
	field := make([]float32, w*h)
	field[1*w+2] = 1 // maps to 255
	field[2*w+0] = -1
	path := filepath.Join(t.TempDir(), "field.png")
	if err := writeGrayPNG(path, field, w, h, -1, 1); err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, path)
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("image is %v, want %dx%d", img.Bounds(), w, h)
	}
	r, _, _, _ := img.At(2, 1).RGBA()
	if r>>8 != 255 {
		t.Errorf("bright cell = %d, want 255", r>>8)
	}
	r, _, _, _ = img.At(0, 2).RGBA()
	if r>>8 != 0 {
		t.Errorf("dark cell = %d, want 0", r>>8)
	}
}

func TestWriteColorPNG(t *testing.T) {
	const w, h = 4, 4
	field := make([]float32, w*h)
	field[5] = 1
	path := filepath.Join(t.TempDir(), "field.png")
	if err := writeColorPNG(path, field, w, h, -1, 1); err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, path)
	// Full positive amplitude lands at the red end of the palette.
	r, _, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 255 || b>>8 != 0 {
		t.Errorf("peak cell = (%d, _, %d), want red", r>>8, b>>8)
	}
}

func TestExportFrameNaming(t *testing.T) {
	cfg := testConfig(8, 8)
	cfg.Export.Dir = t.TempDir()
	path, err := exportFrame(cfg, make([]float32, 64), 7)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "field_000007.png" {
		t.Errorf("frame path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported frame missing: %v", err)
	}
}
