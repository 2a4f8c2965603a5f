// Audio modulation preview tool - drive the audio layer with sliders or the
// built-in synth and watch each species' behavior multipliers respond.
//
// Usage: go run ./cmd/modpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/audio"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/renderer"
	"github.com/pthm-cable/oikos/ui"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	targetFPS    = 60
	sliderWidth  = 300
	historyLen   = 300
)

// feature is one slider-controlled snapshot field.
type feature struct {
	label string
	value *float64
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	bpm := flag.Float64("bpm", 120, "Synth tempo")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Audio Modulation Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(targetFPS)

	layer := audio.NewLayer(cfg)
	feed := audio.NewFeed(cfg.Audio.Analyzer, *bpm, targetFPS, cfg.Seed)
	panel := ui.NewModulationPanel(10, 10, 420)

	var snap audio.Snapshot
	features := []feature{
		{"Bass", &snap.Bass},
		{"Mid", &snap.Mid},
		{"High", &snap.High},
		{"Rhythm", &snap.Rhythm},
		{"Beat strength", &snap.BeatStrength},
		{"Stability", &snap.Stability},
		{"Tension", &snap.Tension},
		{"Loudness", &snap.Loudness},
	}

	species := 0
	useSynth := false
	influence := float32(cfg.Audio.GlobalInfluence)
	history := make([]float64, 0, historyLen)

	for !rl.WindowShouldClose() {
		if useSynth {
			snap = feed.Next()
		}
		layer.Advance(snap)
		mod := layer.ForSpecies(species)

		history = append(history, mod.MoveSpeed)
		if len(history) > historyLen {
			history = history[1:]
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

		c := renderer.SpeciesColors[species]
		y := panel.Draw(species, mod, cfg.Audio.Clamp, rl.Color{R: c.R, G: c.G, B: c.B, A: c.A})
		drawHistory(10, y+20, 420, 160, history, cfg.Audio.Clamp.MoveSpeed)
		rl.DrawText(fmt.Sprintf("Beat impulse: %.2f", layer.BeatImpulse()), 10, y+190, 16, rl.LightGray)

		// Control panel
		panelX := float32(470)
		panelY := float32(10)
		rl.DrawText("Audio Features", int32(panelX), int32(panelY), 20, rl.LightGray)
		panelY += 35

		for i := 0; i < config.NumSpecies; i++ {
			label := fmt.Sprintf("Species %d", i)
			if i < len(cfg.Species) && cfg.Species[i].Name != "" {
				label = cfg.Species[i].Name
			}
			if i == species {
				label = "> " + label
			}
			if gui.Button(rl.Rectangle{X: panelX + float32(i)*110, Y: panelY, Width: 100, Height: 26}, label) {
				species = i
				history = history[:0]
			}
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 28}, toggleText(useSynth, "Manual", "Synth")) {
			useSynth = !useSynth
			if useSynth {
				feed.Reset()
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: panelY, Width: 150, Height: 28}, "Reset Layer") {
			layer.Reset()
			history = history[:0]
		}
		panelY += 45

		newInfluence := gui.SliderBar(
			rl.Rectangle{X: panelX + 100, Y: panelY, Width: sliderWidth - 100, Height: 18},
			"Influence", fmt.Sprintf("%.2f", influence),
			influence, 0, 1,
		)
		if newInfluence != influence {
			influence = newInfluence
			cfg.Audio.GlobalInfluence = float64(influence)
			layer.Configure(cfg)
		}
		panelY += 35

		for _, f := range features {
			v := float32(*f.value)
			nv := gui.SliderBar(
				rl.Rectangle{X: panelX + 100, Y: panelY, Width: sliderWidth - 100, Height: 18},
				f.label, fmt.Sprintf("%.2f", v),
				v, 0, 1,
			)
			if !useSynth && nv != v {
				*f.value = float64(nv)
			}
			panelY += 28
		}
		panelY += 6

		beat := gui.CheckBox(rl.Rectangle{X: panelX + 100, Y: panelY, Width: 18, Height: 18}, "Beat", snap.Beat)
		cresc := gui.CheckBox(rl.Rectangle{X: panelX + 200, Y: panelY, Width: 18, Height: 18}, "Crescendo", snap.Crescendo)
		if !useSynth {
			snap.Beat, snap.Crescendo = beat, cresc
		}

		rl.DrawText("Press C to copy the snapshot as YAML", int32(panelX), int32(windowHeight-30), 12, rl.Gray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snapshotYAML(snap))
		}

		rl.EndDrawing()
	}
}

// drawHistory plots recent move-speed multipliers against the clamp range.
func drawHistory(x, y, w, h int32, values []float64, rg config.Range) {
	rl.DrawRectangle(x, y, w, h, rl.Color{R: 20, G: 25, B: 30, A: 240})
	rl.DrawRectangleLines(x, y, w, h, rl.Color{R: 60, G: 70, B: 80, A: 255})
	rl.DrawText("move speed", x+6, y+4, 12, rl.Gray)
	if len(values) < 2 || rg.Max <= rg.Min {
		return
	}

	toY := func(v float64) float32 {
		f := (rg.Clamp(v) - rg.Min) / (rg.Max - rg.Min)
		return float32(y+h) - float32(f)*float32(h)
	}
	neutral := toY(1)
	rl.DrawLineV(rl.Vector2{X: float32(x), Y: neutral}, rl.Vector2{X: float32(x + w), Y: neutral}, rl.DarkGray)

	step := float32(w) / float32(historyLen-1)
	for i := 1; i < len(values); i++ {
		a := rl.Vector2{X: float32(x) + float32(i-1)*step, Y: toY(values[i-1])}
		b := rl.Vector2{X: float32(x) + float32(i)*step, Y: toY(values[i])}
		rl.DrawLineV(a, b, rl.SkyBlue)
	}
}

func snapshotYAML(s audio.Snapshot) string {
	return fmt.Sprintf(`bass: %.2f
mid: %.2f
high: %.2f
rhythm: %.2f
beat: %t
beat_strength: %.2f
stability: %.2f
tension: %.2f
loudness: %.2f
crescendo: %t`,
		s.Bass, s.Mid, s.High, s.Rhythm, s.Beat, s.BeatStrength,
		s.Stability, s.Tension, s.Loudness, s.Crescendo)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
