package renderer

import (
	"image/color"
	"math"
	"testing"
)

func TestColorizeEmpty(t *testing.T) {
	dst := make([]color.RGBA, 4)
	Colorize(dst, [3][]float32{make([]float32, 4), make([]float32, 4), make([]float32, 4)}, nil, 10)

	for i, c := range dst {
		if c != (color.RGBA{A: 255}) {
			t.Errorf("pixel %d = %v, want opaque black", i, c)
		}
	}
}

func TestColorizeFullExposure(t *testing.T) {
	dst := make([]color.RGBA, 2)
	trails := [3][]float32{{10, 50}, {0, 0}, {0, 0}}
	Colorize(dst, trails, nil, 10)

	want := SpeciesColors[0]
	if dst[0] != want {
		t.Errorf("pixel at exposure = %v, want %v", dst[0], want)
	}
	// Intensity above exposure clamps
	if dst[1] != want {
		t.Errorf("saturated pixel = %v, want %v", dst[1], want)
	}
}

func TestColorizeBlendClamps(t *testing.T) {
	dst := make([]color.RGBA, 1)
	trails := [3][]float32{{10}, {10}, {10}}
	Colorize(dst, trails, nil, 10)

	if dst[0].R != 255 || dst[0].G != 255 || dst[0].B != 255 {
		t.Errorf("all channels at exposure = %v, want white", dst[0])
	}
}

func TestColorizePhaseShading(t *testing.T) {
	dst := make([]color.RGBA, 2)
	trails := [3][]float32{{10, 10}, {0, 0}, {0, 0}}
	phases := [3][]float32{{0, math.Pi}, nil, nil}
	Colorize(dst, trails, &phases, 10)

	if dst[0] != SpeciesColors[0] {
		t.Errorf("in-phase pixel = %v, want full color", dst[0])
	}
	if dst[1].R != 0 || dst[1].G != 0 || dst[1].B != 0 {
		t.Errorf("anti-phase pixel = %v, want black", dst[1])
	}
}
