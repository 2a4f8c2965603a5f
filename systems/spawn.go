package systems

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Placement is an initial agent position and heading in grid cells.
type Placement struct {
	X, Y  float32
	Angle float32
}

// Perlin parameters for the clustered layout.
const (
	noiseAlpha    = 2.0
	noiseBeta     = 2.0
	noiseOctaves  = 3
	noiseScale    = 4.0 // lattice periods across the grid
	noiseAttempts = 64  // rejection tries per agent before accepting anyway
)

// Spawn generates count placements on an n x n grid for the named layout:
// random (uniform), center (all at the middle), ring (a circle facing
// inward) or noise (clustered by a Perlin density map). Unknown layouts
// fall back to random.
func Spawn(layout string, count, n int, rng *rand.Rand) []Placement {
	out := make([]Placement, count)
	fn := float32(n)

	switch layout {
	case "center":
		for i := range out {
			out[i] = Placement{X: fn / 2, Y: fn / 2, Angle: rng.Float32() * twoPi}
		}

	case "ring":
		radius := fn / 4
		for i := range out {
			theta := float32(twoPi * float64(i) / float64(count))
			out[i] = Placement{
				X:     wrapCoord(fn/2+radius*float32(math.Cos(float64(theta))), n),
				Y:     wrapCoord(fn/2+radius*float32(math.Sin(float64(theta))), n),
				Angle: normalizeHeading(theta + math.Pi),
			}
		}

	case "noise":
		p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, rng.Int63())
		for i := range out {
			var x, y float32
			for try := 0; try < noiseAttempts; try++ {
				x = rng.Float32() * fn
				y = rng.Float32() * fn
				d := noiseDensity(p, x, y, fn)
				if rng.Float64() < d*d {
					break
				}
			}
			out[i] = Placement{X: x, Y: y, Angle: rng.Float32() * twoPi}
		}

	default:
		for i := range out {
			out[i] = Placement{X: rng.Float32() * fn, Y: rng.Float32() * fn, Angle: rng.Float32() * twoPi}
		}
	}
	return out
}

// noiseDensity maps Perlin noise at grid position (x, y) to [0, 1].
func noiseDensity(p *perlin.Perlin, x, y, n float32) float64 {
	v := p.Noise2D(float64(x/n)*noiseScale, float64(y/n)*noiseScale)
	d := (v + 1) / 2
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
