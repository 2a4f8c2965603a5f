package components

// Position is an agent's location in grid cells, in [0, N).
type Position struct {
	X, Y float32
}

// Motion holds an agent's heading and rhythm oscillator.
type Motion struct {
	Angle       float32 // radians
	RhythmPhase float32 // drives the shared oscillation term
}
