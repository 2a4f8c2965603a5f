package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/camera"
	"github.com/pthm-cable/oikos/engine"
)

// AgentRenderer draws agents as small heading ticks over the field.
type AgentRenderer struct {
	// Length of the heading tick in cells
	Length float32
	Alpha  uint8
}

// NewAgentRenderer creates an agent renderer.
func NewAgentRenderer() *AgentRenderer {
	return &AgentRenderer{Length: 1.5, Alpha: 200}
}

// Draw renders every visible agent.
func (r *AgentRenderer) Draw(agents []engine.AgentView, cam *camera.Camera) {
	length := r.Length * cam.Zoom
	if length < 2 {
		length = 2
	}
	for i := range agents {
		a := &agents[i]
		if !cam.Visible(a.X, a.Y, r.Length) {
			continue
		}
		sx, sy := cam.CellToScreen(a.X, a.Y)

		c := SpeciesColors[a.Species%len(SpeciesColors)]
		col := rl.Color{R: c.R, G: c.G, B: c.B, A: r.Alpha}

		dir := rl.Vector2{X: cosf(a.Angle), Y: sinf(a.Angle)}
		end := rl.Vector2{X: sx + dir.X*length, Y: sy + dir.Y*length}
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, end, col)
	}
}
