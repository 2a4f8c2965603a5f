package systems

import "math"

// softCeiling is the trail level above which fade pulls values back down.
const softCeiling = 100

// DiffusionParams holds decay settings for one species channel.
type DiffusionParams struct {
	DecayRate    float32 // multiplier applied after the 3x3 blur
	FadeStrength float32 // fraction of the excess above softCeiling removed per pass
}

// PhaseParams controls phase field evolution for one species channel.
type PhaseParams struct {
	RotationRate float32 // radians added per pass
	Noise        float32 // peak-to-peak jitter in radians
}

// TrailField is a toroidal N x N grid with one trail channel per species
// and an optional phase channel per species.
//
// Trail values are double buffered: agents read and deposit into the front
// buffer, diffusion reads the front and writes the back, then the buffers
// swap. Phase values are updated in place since each cell only depends on
// itself.
type TrailField struct {
	n       int
	species int

	trail [2][][]float32
	cur   int

	phase [][]float32 // nil unless phase tracking is enabled
}

// NewTrailField creates a zeroed field with n x n cells per channel.
func NewTrailField(n, species int, withPhase bool) *TrailField {
	tf := &TrailField{n: n, species: species}
	for b := range tf.trail {
		tf.trail[b] = make([][]float32, species)
		for s := range tf.trail[b] {
			tf.trail[b][s] = make([]float32, n*n)
		}
	}
	if withPhase {
		tf.phase = make([][]float32, species)
		for s := range tf.phase {
			tf.phase[s] = make([]float32, n*n)
		}
	}
	return tf
}

// Size returns the grid edge length N.
func (tf *TrailField) Size() int { return tf.n }

// NumSpecies returns the channel count.
func (tf *TrailField) NumSpecies() int { return tf.species }

// HasPhase reports whether the field tracks phases.
func (tf *TrailField) HasPhase() bool { return tf.phase != nil }

// Channel returns the front buffer for a species. Callers must not retain
// it across a diffusion pass.
func (tf *TrailField) Channel(s int) []float32 {
	if s < 0 || s >= tf.species {
		return nil
	}
	return tf.trail[tf.cur][s]
}

// Phases returns the phase channel for a species, or nil when phases are
// not tracked.
func (tf *TrailField) Phases(s int) []float32 {
	if tf.phase == nil || s < 0 || s >= tf.species {
		return nil
	}
	return tf.phase[s]
}

// index converts continuous coordinates to a cell index. Coordinates
// outside [0, N) and NaN report false.
func (tf *TrailField) index(x, y float32) (int, bool) {
	if !(x >= 0 && y >= 0) {
		return 0, false
	}
	ix, iy := int(x), int(y)
	if ix >= tf.n || iy >= tf.n {
		return 0, false
	}
	return iy*tf.n + ix, true
}

func (tf *TrailField) validSpecies(s int) bool {
	return s >= 0 && s < tf.species
}

// At returns the trail value of species s at (x, y), or 0 out of range.
func (tf *TrailField) At(s int, x, y float32) float32 {
	i, ok := tf.index(x, y)
	if !ok || !tf.validSpecies(s) {
		return 0
	}
	return tf.trail[tf.cur][s][i]
}

// PhaseAt returns the phase of species s at (x, y), or 0 when out of range
// or phases are not tracked.
func (tf *TrailField) PhaseAt(s int, x, y float32) float32 {
	i, ok := tf.index(x, y)
	if !ok || tf.phase == nil || !tf.validSpecies(s) {
		return 0
	}
	return tf.phase[s][i]
}

// Deposit adds amount to species s at (x, y), clamped to [0, saturation].
// Out-of-range coordinates are a no-op.
func (tf *TrailField) Deposit(s int, x, y, amount, saturation float32) {
	i, ok := tf.index(x, y)
	if !ok || !tf.validSpecies(s) {
		return
	}
	ch := tf.trail[tf.cur][s]
	ch[i] = clampTrail(ch[i]+amount, saturation)
}

// DepositPhase deposits like Deposit and also writes phase. An empty cell
// takes the new phase directly; otherwise the old and new phases are blended
// on the circle with weight amount/(existing+amount).
func (tf *TrailField) DepositPhase(s int, x, y, amount, saturation, phase float32) {
	i, ok := tf.index(x, y)
	if !ok || !tf.validSpecies(s) {
		return
	}
	ch := tf.trail[tf.cur][s]
	existing := ch[i]
	ch[i] = clampTrail(existing+amount, saturation)

	if tf.phase == nil {
		return
	}
	ph := tf.phase[s]
	if existing <= 0 {
		ph[i] = float32(WrapPhase(float64(phase)))
		return
	}
	if amount <= 0 {
		return
	}
	w := float64(amount) / float64(existing+amount)
	ph[i] = float32(BlendPhase(float64(ph[i]), float64(phase), w))
}

// Clear zeroes every channel in both buffers.
func (tf *TrailField) Clear() {
	for b := range tf.trail {
		for s := range tf.trail[b] {
			clear(tf.trail[b][s])
		}
	}
	for s := range tf.phase {
		clear(tf.phase[s])
	}
	tf.cur = 0
}

// DiffuseAndDecay replaces every cell of every channel with the mean of its
// toroidal 3x3 neighborhood times the channel's decay rate, applies the
// soft ceiling fade, and swaps buffers. params is indexed by species; a
// missing entry leaves the channel decaying at rate 1 with no fade.
func (tf *TrailField) DiffuseAndDecay(params []DiffusionParams, pool *Pool) {
	back := 1 - tf.cur
	for s := 0; s < tf.species; s++ {
		p := DiffusionParams{DecayRate: 1}
		if s < len(params) {
			p = params[s]
		}
		src := tf.trail[tf.cur][s]
		dst := tf.trail[back][s]
		n := tf.n
		pool.Run(n, func(start, end int) {
			diffuseRows(src, dst, n, start, end, p)
		})
	}
	tf.cur = back
}

// diffuseRows blurs rows [y0, y1) of src into dst.
func diffuseRows(src, dst []float32, n, y0, y1 int, p DiffusionParams) {
	const inv9 = float32(1.0 / 9.0)
	for y := y0; y < y1; y++ {
		yN := modInt(y-1, n) * n
		yC := y * n
		yS := modInt(y+1, n) * n
		for x := 0; x < n; x++ {
			xW := modInt(x-1, n)
			xE := modInt(x+1, n)

			sum := src[yN+xW] + src[yN+x] + src[yN+xE] +
				src[yC+xW] + src[yC+x] + src[yC+xE] +
				src[yS+xW] + src[yS+x] + src[yS+xE]

			v := sum * inv9 * p.DecayRate
			if v > softCeiling {
				v -= (v - softCeiling) * p.FadeStrength
			}
			if v < 0 {
				v = 0
			}
			dst[yC+x] = v
		}
	}
}

// DiffusePhase rotates the phase of every cell that holds trail by the
// channel's rotation rate plus hashed jitter, and resets phases of empty
// cells. The jitter depends only on (seed, frame, species, cell).
func (tf *TrailField) DiffusePhase(params []PhaseParams, frame int, seed uint32, pool *Pool) {
	if tf.phase == nil {
		return
	}
	for s := 0; s < tf.species; s++ {
		var p PhaseParams
		if s < len(params) {
			p = params[s]
		}
		tr := tf.trail[tf.cur][s]
		ph := tf.phase[s]
		n := tf.n
		chSeed := seed + uint32(s)*0x9E3779B9
		pool.Run(n, func(start, end int) {
			for i := start * n; i < end*n; i++ {
				if tr[i] <= 0 {
					ph[i] = 0
					continue
				}
				jitter := (cellHash(i, frame, chSeed) - 0.5) * p.Noise
				ph[i] = wrapPhase32(ph[i] + p.RotationRate + jitter)
			}
		})
	}
}

// Total returns the summed trail of species s.
func (tf *TrailField) Total(s int) float64 {
	var sum float64
	for _, v := range tf.Channel(s) {
		sum += float64(v)
	}
	return sum
}

func wrapPhase32(p float32) float32 {
	p = float32(math.Mod(float64(p), twoPi))
	if p < 0 {
		p += twoPi
	}
	if p >= twoPi {
		p = 0
	}
	return p
}
