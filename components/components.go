// Package components defines ECS components for stigmergic agents.
package components

// SpeciesID identifies an agent's species and its trail channel.
type SpeciesID uint8

const (
	SpeciesA SpeciesID = iota
	SpeciesB
	SpeciesC
)

// ContextMode is the state of a context-switching agent.
type ContextMode uint8

const (
	ModeExplore ContextMode = iota // Noisy sensing, spreads out
	ModeExploit                    // Clean sensing, follows dense trails
)

// String returns the display name of the mode.
func (m ContextMode) String() string {
	if m == ModeExploit {
		return "exploit"
	}
	return "explore"
}

// Direction indexes the three sensor directions and their amplitudes.
type Direction uint8

const (
	DirLeft Direction = iota
	DirForward
	DirRight
	NumDirections
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirForward:
		return "forward"
	case DirRight:
		return "right"
	}
	return "unknown"
}

// Species tags an agent with its species.
type Species struct {
	ID SpeciesID
}

// Context holds per-agent state for the context-switching model only.
type Context struct {
	Mode ContextMode
}

// Quantum holds per-agent state for the amplitude model only.
// Amp is indexed by Direction.
type Quantum struct {
	Amp           [NumDirections]complex128
	InternalPhase float64 // radians in [0, 2π)
}
