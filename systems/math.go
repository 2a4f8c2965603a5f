package systems

import "math"

const twoPi = 2 * math.Pi

// clampTrail clamps a trail value to [0, saturation].
func clampTrail(v, saturation float32) float32 {
	if v < 0 {
		return 0
	}
	if v > saturation {
		return saturation
	}
	return v
}

// modInt is the non-negative remainder of a / m.
func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// wrapCoord wraps a continuous coordinate onto a torus of size n.
// Non-finite coordinates map to 0.
func wrapCoord(v float32, n int) float32 {
	if !finite(v) {
		return 0
	}
	fn := float32(n)
	v = float32(math.Mod(float64(v), float64(fn)))
	if v < 0 {
		v += fn
	}
	// math.Mod of a tiny negative value can round back up to n.
	if v >= fn {
		v = 0
	}
	return v
}

// normalizeHeading wraps a heading to [0, 2*Pi). Non-finite headings map to 0.
func normalizeHeading(h float32) float32 {
	if h >= 0 && h < twoPi {
		return h
	}
	if !finite(h) {
		return 0
	}
	h = float32(math.Mod(float64(h), twoPi))
	if h < 0 {
		h += twoPi
	}
	if h >= twoPi {
		h = 0
	}
	return h
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// cellHash generates a pseudo-random float in [0,1) from integer inputs.
// The same inputs always produce the same value, so noise derived from it
// does not depend on how work is split across goroutines.
func cellHash(cell, frame int, seed uint32) float32 {
	x := uint32(cell)
	y := uint32(frame)
	h := x*374761393 + y*668265263 + seed*1442695041
	h = (h ^ (h >> 13)) * 1274126177
	h ^= (h >> 16)
	return float32(h&0x00FFFFFF) / float32(0x01000000)
}
