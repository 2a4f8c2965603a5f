package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/oikos/components"
)

func TestNormalize(t *testing.T) {
	t.Run("random vector", func(t *testing.T) {
		a := Amplitudes{complex(3, 1), complex(-2, 0.5), complex(0, 4)}
		a.Normalize()
		if got := a.Norm2(); !approx(got, 1, 1e-12) {
			t.Errorf("Norm2 = %f, want 1", got)
		}
	})

	t.Run("zero vector resets", func(t *testing.T) {
		var a Amplitudes
		a.Normalize()
		for d, p := range a.Probabilities() {
			if !approx(p, 1.0/3, 1e-12) {
				t.Errorf("P(%s) = %f, want 1/3", components.Direction(d), p)
			}
		}
	})

	t.Run("NaN resets", func(t *testing.T) {
		a := Amplitudes{complex(math.NaN(), 0), 1, 1}
		a.Normalize()
		if got := a.Norm2(); !approx(got, 1, 1e-12) {
			t.Errorf("Norm2 = %f, want 1", got)
		}
	})
}

func TestEvolveStaysNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var phases [components.NumDirections]float64
	for d := range phases {
		phases[d] = rng.Float64() * twoPi
	}
	a := EqualSuperposition(phases)

	for step := 0; step < 10000; step++ {
		var signal, phase [components.NumDirections]float64
		for d := range signal {
			signal[d] = rng.NormFloat64() * 50
			phase[d] = rng.Float64() * twoPi
		}
		a.Evolve(signal, phase, 0.3)
		if got := a.Norm2(); !approx(got, 1, 1e-9) {
			t.Fatalf("step %d: Norm2 = %.12f, want 1", step, got)
		}
	}
}

func TestEvolveFavorsStrongSignal(t *testing.T) {
	a := EqualSuperposition([components.NumDirections]float64{})
	for i := 0; i < 20; i++ {
		a.Evolve([components.NumDirections]float64{0, 0, 10}, [components.NumDirections]float64{}, 0)
	}
	p := a.Probabilities()
	if p[components.DirRight] <= p[components.DirLeft] || p[components.DirRight] <= p[components.DirForward] {
		t.Errorf("right should dominate, got %v", p)
	}
}

func TestMeasure(t *testing.T) {
	a := Amplitudes{1, 0, 0}
	for _, u := range []float64{0, 0.5, 0.999} {
		if got := a.Measure(u); got != components.DirLeft {
			t.Errorf("Measure(%f) = %s, want left", u, got)
		}
	}

	b := EqualSuperposition([components.NumDirections]float64{})
	tests := []struct {
		u    float64
		want components.Direction
	}{
		{0.1, components.DirLeft},
		{0.5, components.DirForward},
		{0.9, components.DirRight},
	}
	for _, tc := range tests {
		if got := b.Measure(tc.u); got != tc.want {
			t.Errorf("Measure(%f) = %s, want %s", tc.u, got, tc.want)
		}
	}
}

func TestMeasureFrequencies(t *testing.T) {
	a := Amplitudes{complex(math.Sqrt(0.6), 0), complex(0, math.Sqrt(0.3)), complex(math.Sqrt(0.1), 0)}
	rng := rand.New(rand.NewSource(1))
	var counts [components.NumDirections]int
	const draws = 100000
	for i := 0; i < draws; i++ {
		counts[a.Measure(rng.Float64())]++
	}
	want := [components.NumDirections]float64{0.6, 0.3, 0.1}
	for d := range counts {
		got := float64(counts[d]) / draws
		if !approx(got, want[d], 0.01) {
			t.Errorf("P(%s) = %f, want %f", components.Direction(d), got, want[d])
		}
	}
}

func TestPolarRoundTrip(t *testing.T) {
	z := FromPolar(2, 1)
	r, theta := Polar(z)
	if !approx(r, 2, 1e-12) || !approx(theta, 1, 1e-12) {
		t.Errorf("Polar(FromPolar(2,1)) = (%f, %f)", r, theta)
	}
}

func TestWrapPhase(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{2 * math.Pi, 0},
		{-0.5, 2*math.Pi - 0.5},
		{7 * math.Pi, math.Pi},
	}
	for _, tc := range tests {
		if got := WrapPhase(tc.in); !approx(got, tc.want, 1e-9) {
			t.Errorf("WrapPhase(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestBlendPhase(t *testing.T) {
	tests := []struct {
		name    string
		a, b, w float64
		want    float64
	}{
		{"zero weight keeps old", 1, 2, 0, 1},
		{"full weight takes new", 1, 2, 1, 2},
		{"midpoint", 1, 2, 0.5, 1.5},
		{"short arc across zero", 2*math.Pi - 0.2, 0.2, 0.5, 0},
		{"short arc backward", 0.2, 2*math.Pi - 0.2, 0.5, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BlendPhase(tc.a, tc.b, tc.w)
			// 0 and 2π are the same angle
			diff := math.Abs(math.Remainder(got-tc.want, 2*math.Pi))
			if diff > 1e-9 {
				t.Errorf("BlendPhase(%f, %f, %f) = %f, want %f", tc.a, tc.b, tc.w, got, tc.want)
			}
		})
	}
}
