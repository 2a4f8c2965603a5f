package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/telemetry"
)

// ControlsPanel renders the overlay toggle panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight + int32(len(categories))*4

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}

	return c.y + panelHeight
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "field":
		return "Field"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

// TrailStatsPanel renders the most recent telemetry window.
type TrailStatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewTrailStatsPanel creates a new trail stats panel.
func NewTrailStatsPanel(x, y, width int32) *TrailStatsPanel {
	return &TrailStatsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *TrailStatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel and returns the Y below it.
func (p *TrailStatsPanel) Draw(s telemetry.WindowStats) int32 {
	r := p.renderer
	pad := r.Theme.Padding
	lh := r.Theme.LineHeight

	rows := int32(9)
	if s.Model == "contextual" || s.Model == "quantum" {
		rows++
	}
	height := lh*(rows+1) + pad*2 + 2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := p.y + pad
	rl.DrawText(fmt.Sprintf("Window %d-%d", s.WindowStartFrame, s.WindowEndFrame), x, y, 14, rl.White)
	y += lh + 2

	y = r.DrawLabelValue(x, y, "Mass", fmt.Sprintf("%.0f / %.0f / %.0f", s.Mass0, s.Mass1, s.Mass2))
	y = r.DrawLabelValue(x, y, "Peak", fmt.Sprintf("%.1f / %.1f / %.1f", s.Peak0, s.Peak1, s.Peak2))
	y = r.DrawLabelValue(x, y, "Coverage", fmt.Sprintf("%.2f / %.2f / %.2f", s.Coverage0, s.Coverage1, s.Coverage2))
	y = r.DrawLabelValue(x, y, "Structure", fmt.Sprintf("%.3f", s.Structure))
	y = r.DrawLabelValue(x, y, "p50 / p90", fmt.Sprintf("%.2f / %.2f", s.TrailP50, s.TrailP90))
	y = r.DrawBar(x, y, "Alignment", float32(s.HeadingOrder), p.width-pad*2)
	y = r.DrawLabelValue(x, y, "Beats", fmt.Sprintf("%d / %d frames", s.Beats, s.AudioFrames))
	y = r.DrawLabelValue(x, y, "Speed x", fmt.Sprintf("%.2f / %.2f / %.2f", s.SpeedMult0, s.SpeedMult1, s.SpeedMult2))
	switch s.Model {
	case "contextual":
		y = r.DrawBar(x, y, "Exploring", float32(s.ExploreFrac), p.width-pad*2)
	case "quantum":
		y = r.DrawLabelValue(x, y, "Norm err", fmt.Sprintf("%.1e", s.AmpNormErr))
	}
	return p.y + height
}
