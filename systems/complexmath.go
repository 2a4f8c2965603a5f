package systems

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/pthm-cable/oikos/components"
)

// Amplitudes is a state vector over the three steering directions.
type Amplitudes [components.NumDirections]complex128

// Polar returns the magnitude and phase of z.
func Polar(z complex128) (r, theta float64) {
	return cmplx.Abs(z), cmplx.Phase(z)
}

// FromPolar builds a complex number from magnitude and phase.
func FromPolar(r, theta float64) complex128 {
	return cmplx.Rect(r, theta)
}

// EqualSuperposition returns amplitudes of magnitude 1/sqrt(3) with the
// given phases.
func EqualSuperposition(phases [components.NumDirections]float64) Amplitudes {
	m := 1 / math.Sqrt(float64(components.NumDirections))
	var a Amplitudes
	for d := range a {
		a[d] = cmplx.Rect(m, phases[d])
	}
	return a
}

// Norm2 returns the sum of squared magnitudes.
func (a *Amplitudes) Norm2() float64 {
	var sum float64
	for _, z := range a {
		sum += real(z)*real(z) + imag(z)*imag(z)
	}
	return sum
}

// Normalize scales the vector to unit norm. A zero or non-finite vector is
// reset to an equal real superposition.
func (a *Amplitudes) Normalize() {
	n := cmplxs.Norm(a[:], 2)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		*a = EqualSuperposition([components.NumDirections]float64{})
		return
	}
	cmplxs.Scale(complex(1/n, 0), a[:])
}

// Probabilities returns |a_d|^2 for each direction.
func (a *Amplitudes) Probabilities() [components.NumDirections]float64 {
	var p [components.NumDirections]float64
	for d, z := range a {
		p[d] = real(z)*real(z) + imag(z)*imag(z)
	}
	return p
}

// Measure draws a direction weighted by |a_d|^2 using u in [0, 1).
func (a *Amplitudes) Measure(u float64) components.Direction {
	p := a.Probabilities()
	total := p[0] + p[1] + p[2]
	if total <= 0 {
		return components.DirForward
	}
	target := u * total
	var acc float64
	for d := range p {
		acc += p[d]
		if target < acc {
			return components.Direction(d)
		}
	}
	return components.DirRight
}

// WrapPhase maps an angle to [0, 2*Pi).
func WrapPhase(p float64) float64 {
	p = math.Mod(p, twoPi)
	if p < 0 {
		p += twoPi
	}
	if p >= twoPi {
		p = 0
	}
	return p
}

// BlendPhase interpolates from a toward b on the circle by weight w in
// [0, 1], following the shorter arc.
func BlendPhase(a, b, w float64) float64 {
	if w <= 0 {
		return WrapPhase(a)
	}
	if w >= 1 {
		return WrapPhase(b)
	}
	d := math.Remainder(b-a, twoPi)
	return WrapPhase(a + d*w)
}

// Evolve applies one tick of signal gain and neighbor coupling, then
// renormalizes. signal is the effective sensed strength per direction and
// phase the sensed trail phase per direction. Left and right couple only
// to forward; forward couples to the mean of left and right.
func (a *Amplitudes) Evolve(signal, phase [components.NumDirections]float64, coupling float64) {
	var total float64
	for _, s := range signal {
		total += math.Abs(s)
	}
	var gain [components.NumDirections]float64
	if total > 0 {
		for d := range gain {
			gain[d] = signal[d] / total
		}
	}

	old := *a
	neighbors := [components.NumDirections]complex128{
		old[components.DirForward],
		(old[components.DirLeft] + old[components.DirRight]) * 0.5,
		old[components.DirForward],
	}
	c := complex(coupling, 0)
	for d := range a {
		a[d] = old[d]*complex(1+gain[d], 0) + c*cmplx.Rect(1, phase[d])*neighbors[d]
	}
	a.Normalize()
}
