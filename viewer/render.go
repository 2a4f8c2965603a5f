package viewer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/renderer"
	"github.com/pthm-cable/oikos/ui"
)

// Draw renders one viewer frame.
func (v *Viewer) Draw() {
	v.eng.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	var phases *[3][]float32
	if v.overlays.IsEnabled(ui.OverlayPhase) {
		if p, ok := v.eng.Phases(); ok {
			phases = &p
		}
	}
	v.trails.Update(v.eng.Trails(), phases)
	v.trails.Draw(v.cam)

	if v.overlays.IsEnabled(ui.OverlayAgents) {
		v.agents.Draw(v.eng.Agents(), v.cam)
	}

	v.drawUI()

	rl.EndDrawing()
}

func (v *Viewer) drawUI() {
	cfg := v.eng.Config()

	v.hud.Draw(ui.HUDData{
		Title:  "Oikos",
		Model:  v.eng.Model(),
		Frame:  v.eng.FrameCount(),
		Agents: v.eng.AgentCount(),
		Grid:   v.eng.GridSize(),
		Speed:  v.stepsPerUpdate,
		FPS:    rl.GetFPS(),
		Paused: v.paused,
		Audio:  v.feed != nil,
	})
	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)

	y := v.controls.Draw(v.overlays)
	if v.overlays.IsEnabled(ui.OverlayLegend) {
		v.drawLegend(10, y+10)
	}

	rightY := int32(10)
	if v.overlays.IsEnabled(ui.OverlayStats) {
		rightY = v.statsPanel.Draw(v.eng.Stats()) + 10
	}
	if v.overlays.IsEnabled(ui.OverlayModulation) {
		v.modPanel.SetPosition(int32(v.screenWidth)-270, rightY)
		c := renderer.SpeciesColors[v.modSpecies]
		v.modPanel.Draw(v.modSpecies, v.eng.Modulation(v.modSpecies), cfg.Audio.Clamp,
			rl.Color{R: c.R, G: c.G, B: c.B, A: c.A})
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perfPanel.Draw(v.eng.Perf())
	}
}

// drawLegend lists each species' color and name.
func (v *Viewer) drawLegend(x, y int32) {
	r := ui.NewRenderer()
	species := v.eng.Config().Species
	for i, c := range renderer.SpeciesColors {
		name := fmt.Sprintf("species %d", i)
		if i < len(species) && species[i].Name != "" {
			name = species[i].Name
		}
		y = r.DrawColorSwatch(x, y, name, rl.Color{R: c.R, G: c.G, B: c.B, A: c.A})
	}
}
