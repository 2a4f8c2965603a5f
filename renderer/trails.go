// Package renderer draws the trail field and agents with raylib.
package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/camera"
)

// SpeciesColors is the display color of each species channel.
var SpeciesColors = [3]color.RGBA{
	{R: 255, G: 176, B: 0, A: 255},  // amber
	{R: 0, G: 180, B: 170, A: 255},  // teal
	{R: 160, G: 90, B: 255, A: 255}, // violet
}

// TrailRenderer uploads the trail field into a repeat-wrapped texture and
// draws it through the camera.
type TrailRenderer struct {
	tex    rl.Texture2D
	pixels []color.RGBA
	size   int

	// Exposure maps trail intensity to brightness: a cell at Exposure is
	// drawn at full species color.
	Exposure float32

	initialized bool
}

// NewTrailRenderer creates a trail renderer.
func NewTrailRenderer() *TrailRenderer {
	return &TrailRenderer{Exposure: 40}
}

// Init allocates the texture for an n x n grid (must be called after the
// raylib window is created). Calling it again with a new size reallocates.
func (r *TrailRenderer) Init(n int) {
	if r.initialized && r.size == n {
		return
	}
	r.Unload()

	r.size = n
	r.pixels = make([]color.RGBA, n*n)

	img := rl.GenImageColor(n, n, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.SetTextureWrap(r.tex, rl.WrapRepeat)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update uploads new trail data. When phases is non-nil each channel's
// brightness is shaded by cos(phase).
func (r *TrailRenderer) Update(trails [3][]float32, phases *[3][]float32) {
	n := int(math.Sqrt(float64(len(trails[0]))))
	r.Init(n)
	Colorize(r.pixels, trails, phases, r.Exposure)
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the field to fill the camera viewport.
func (r *TrailRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}
	x, y, w, h := cam.SourceRect()
	src := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
	dst := rl.Rectangle{X: 0, Y: 0, Width: cam.ViewportW, Height: cam.ViewportH}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *TrailRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}

// Colorize additively blends the species channels into dst. Intensities
// are scaled by 1/exposure and clamped per channel.
func Colorize(dst []color.RGBA, trails [3][]float32, phases *[3][]float32, exposure float32) {
	if exposure <= 0 {
		exposure = 1
	}
	inv := 1 / exposure
	for i := range dst {
		var rr, gg, bb float32
		for s, ch := range trails {
			if i >= len(ch) {
				continue
			}
			v := ch[i] * inv
			if v <= 0 {
				continue
			}
			if v > 1 {
				v = 1
			}
			if phases != nil && i < len(phases[s]) {
				v *= 0.5 + 0.5*float32(math.Cos(float64(phases[s][i])))
			}
			c := SpeciesColors[s]
			rr += v * float32(c.R)
			gg += v * float32(c.G)
			bb += v * float32(c.B)
		}
		dst[i] = color.RGBA{R: clampByte(rr), G: clampByte(gg), B: clampByte(bb), A: 255}
	}
}

func clampByte(v float32) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}

func cosf(a float32) float32 { return float32(math.Cos(float64(a))) }
func sinf(a float32) float32 { return float32(math.Sin(float64(a))) }
