package systems

import "math"

// Fast trig for the per-agent hot path. These avoid float32->float64
// conversions that Go's math package requires.

// normalizeAngle wraps an angle to [-Pi, Pi]. Non-finite angles map to 0.
func normalizeAngle(angle float32) float32 {
	if angle >= -math.Pi && angle <= math.Pi {
		return angle
	}
	if !finite(angle) {
		return 0
	}
	a := math.Mod(float64(angle), 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return float32(a)
}

// fastSin approximates sin(x) using a polynomial. Accurate to ~0.001 for all x.
func fastSin(x float32) float32 {
	x = normalizeAngle(x)
	const pi = math.Pi
	const pi2 = pi * pi
	ax := x
	if ax < 0 {
		ax = -ax
	}
	y := 4 * x * (pi - ax) / pi2
	// Correction: improves accuracy
	return 0.225*(y*absf(y)-y) + y
}

// fastCos approximates cos(x) using fastSin.
func fastCos(x float32) float32 {
	return fastSin(x + math.Pi/2)
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
