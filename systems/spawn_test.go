package systems

import (
	"math"
	"math/rand"
	"testing"
)

func TestSpawnLayouts(t *testing.T) {
	const n = 100
	for _, layout := range []string{"random", "center", "ring", "noise", "bogus"} {
		t.Run(layout, func(t *testing.T) {
			rng := rand.New(rand.NewSource(11))
			pl := Spawn(layout, 500, n, rng)
			if len(pl) != 500 {
				t.Fatalf("got %d placements, want 500", len(pl))
			}
			for i, p := range pl {
				if p.X < 0 || p.X >= n || p.Y < 0 || p.Y >= n {
					t.Fatalf("placement %d out of grid: (%f, %f)", i, p.X, p.Y)
				}
				if p.Angle < 0 || p.Angle >= 2*math.Pi {
					t.Fatalf("placement %d heading out of range: %f", i, p.Angle)
				}
			}
		})
	}
}

func TestSpawnRingFacesInward(t *testing.T) {
	const n = 200
	pl := Spawn("ring", 8, n, rand.New(rand.NewSource(1)))
	for i, p := range pl {
		dx, dy := float64(p.X-n/2), float64(p.Y-n/2)
		if r := math.Hypot(dx, dy); !approx(r, n/4, 1e-3) {
			t.Errorf("placement %d radius %f, want %d", i, r, n/4)
		}
		// Heading points back toward the center
		hx, hy := math.Cos(float64(p.Angle)), math.Sin(float64(p.Angle))
		if dot := hx*dx + hy*dy; dot >= 0 {
			t.Errorf("placement %d faces outward (dot=%f)", i, dot)
		}
	}
}

func TestSpawnDeterministic(t *testing.T) {
	a := Spawn("noise", 100, 64, rand.New(rand.NewSource(5)))
	b := Spawn("noise", 100, 64, rand.New(rand.NewSource(5)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("placement %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSpawnNoiseClusters(t *testing.T) {
	const n = 128
	rng := rand.New(rand.NewSource(9))
	pl := Spawn("noise", 4000, n, rng)

	// Count agents per 16x16 block; a clustered layout has a wider
	// spread of block counts than uniform placement.
	var noisy, uniform [64]int
	for _, p := range pl {
		noisy[int(p.Y)/16*8+int(p.X)/16]++
	}
	for _, p := range Spawn("random", 4000, n, rand.New(rand.NewSource(9))) {
		uniform[int(p.Y)/16*8+int(p.X)/16]++
	}
	if spread(noisy[:]) <= spread(uniform[:]) {
		t.Errorf("noise layout not clustered: spread %d vs uniform %d", spread(noisy[:]), spread(uniform[:]))
	}
}

func spread(counts []int) int {
	lo, hi := counts[0], counts[0]
	for _, c := range counts {
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return hi - lo
}
