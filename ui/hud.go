package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/audio"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title  string
	Model  config.ModelKind
	Frame  int
	Agents int
	Grid   int
	Speed  int // ticks per rendered frame
	FPS    int32
	Paused bool
	Audio  bool // an audio source is feeding the engine
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Model: %s | Agents: %d | Grid: %dx%d", data.Model, data.Agents, data.Grid, data.Grid),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Speed: %dx | FPS: %d", data.Frame, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	if !data.Audio {
		status += " | no audio"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the tick phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s (%.0f ticks/s)", stats.AvgTick.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 16

	for i := range stats.PhaseAvg {
		pct := stats.PhasePct[i]
		color := rl.LightGray
		if pct > 60 {
			color = rl.Red
		} else if pct > 30 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", telemetry.Phase(i), stats.PhaseAvg[i].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// ModulationPanel shows one species' audio modulation as range bars
// centered on the neutral value.
type ModulationPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewModulationPanel creates a new modulation panel.
func NewModulationPanel(x, y, width int32) *ModulationPanel {
	return &ModulationPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (m *ModulationPanel) SetPosition(x, y int32) {
	m.x = x
	m.y = y
}

// Height returns the panel height for one species.
func (m *ModulationPanel) Height() int32 {
	t := m.renderer.Theme
	return t.LineHeight*2 + 8*(t.LineHeight+2) + t.Padding*2
}

// Draw renders the modulation of species s against the configured clamp
// ranges.
func (m *ModulationPanel) Draw(s int, mod audio.Modulation, clamp config.ModulationClamp, swatch rl.Color) int32 {
	r := m.renderer
	pad := r.Theme.Padding
	r.DrawPanel(m.x, m.y, m.width, m.Height())

	x := m.x + pad
	y := r.DrawColorSwatch(x, m.y+pad, fmt.Sprintf("Species %d modulation", s), swatch)
	y += 4

	neutral := audio.Neutral()
	w := m.width - pad*2
	bar := func(label string, v, n float64, rg config.Range) {
		y = r.DrawRangeBar(x, y, label, float32(v), float32(n), float32(rg.Min), float32(rg.Max), w)
	}
	bar("Speed", mod.MoveSpeed, neutral.MoveSpeed, clamp.MoveSpeed)
	bar("Turn", mod.TurnSpeed, neutral.TurnSpeed, clamp.TurnSpeed)
	bar("Randomness", mod.TurnRandomness, neutral.TurnRandomness, clamp.TurnRandomness)
	bar("Sensor ang", mod.SensorAngle, neutral.SensorAngle, clamp.SensorAngle)
	bar("Sensor dist", mod.SensorDistance, neutral.SensorDistance, clamp.SensorDistance)
	bar("Deposit", mod.DepositRate, neutral.DepositRate, clamp.DepositRate)
	bar("Attraction", mod.TrailAttraction, neutral.TrailAttraction, clamp.TrailAttraction)
	bar("Explore", mod.ExplorationBias, neutral.ExplorationBias, clamp.ExplorationBias)

	return m.y + m.Height()
}
