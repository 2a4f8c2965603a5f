// Package viewer runs the engine interactively or headless, feeding it
// synthesized audio and drawing the trail field.
package viewer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/audio"
	"github.com/pthm-cable/oikos/camera"
	"github.com/pthm-cable/oikos/config"
	"github.com/pthm-cable/oikos/engine"
	"github.com/pthm-cable/oikos/renderer"
	"github.com/pthm-cable/oikos/ui"
)

// Options configures a viewer.
type Options struct {
	Engine engine.Options

	Headless       bool
	Audio          bool    // feed synthesized audio into the engine
	BPM            float64 // synth tempo
	StepsPerUpdate int     // engine ticks per Update call
}

// Viewer owns an engine plus its audio source and, unless headless, the
// window-side renderers and panels.
type Viewer struct {
	eng  *engine.Engine
	feed *audio.Feed
	opts Options

	paused         bool
	stepsPerUpdate int

	// Rendering; nil when headless
	cam        *camera.Camera
	trails     *renderer.TrailRenderer
	agents     *renderer.AgentRenderer
	hud        *ui.HUD
	overlays   *ui.OverlayRegistry
	controls   *ui.ControlsPanel
	statsPanel *ui.TrailStatsPanel
	modPanel   *ui.ModulationPanel
	perfPanel  *ui.PerfPanel
	modSpecies int

	screenWidth, screenHeight float32
}

// New creates a viewer for cfg. In graphical mode the raylib window must
// already be open.
func New(cfg *config.Config, opts Options) (*Viewer, error) {
	eng, err := engine.New(cfg, opts.Engine)
	if err != nil {
		return nil, err
	}

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	v := &Viewer{
		eng:            eng,
		opts:           opts,
		stepsPerUpdate: opts.StepsPerUpdate,
	}
	if opts.Audio {
		v.feed = audio.NewFeed(cfg.Audio.Analyzer, opts.BPM, cfg.Screen.TargetFPS, cfg.Seed)
	}

	if !opts.Headless {
		v.initGraphics(cfg)
	}

	slog.Info("viewer ready",
		"headless", opts.Headless,
		"audio", opts.Audio,
		"bpm", opts.BPM,
		"steps_per_update", v.stepsPerUpdate,
	)
	return v, nil
}

func (v *Viewer) initGraphics(cfg *config.Config) {
	v.screenWidth = float32(rl.GetScreenWidth())
	v.screenHeight = float32(rl.GetScreenHeight())

	v.cam = camera.New(v.screenWidth, v.screenHeight, cfg.Grid.Size)
	v.trails = renderer.NewTrailRenderer()
	v.trails.Init(cfg.Grid.Size)
	v.agents = renderer.NewAgentRenderer()

	v.hud = ui.NewHUD()
	v.overlays = ui.NewOverlayRegistry()
	v.controls = ui.NewControlsPanel(10, 100, 220)
	v.statsPanel = ui.NewTrailStatsPanel(0, 10, 260)
	v.modPanel = ui.NewModulationPanel(0, 0, 260)
	v.perfPanel = ui.NewPerfPanel(0, 0)
	v.layoutPanels()
}

// layoutPanels anchors the right-hand panels to the current screen width.
func (v *Viewer) layoutPanels() {
	right := int32(v.screenWidth) - 270
	v.statsPanel.SetPosition(right, 10)
	v.perfPanel.SetPosition(10, int32(v.screenHeight)-120)
}

// Engine returns the underlying engine.
func (v *Viewer) Engine() *engine.Engine { return v.eng }

// Frame returns the engine's tick count.
func (v *Viewer) Frame() int { return v.eng.FrameCount() }

// Update handles input and advances the simulation.
func (v *Viewer) Update() {
	v.handleInput()
	if v.paused {
		return
	}
	v.step()
}

// UpdateHeadless advances the simulation without input handling.
func (v *Viewer) UpdateHeadless() {
	v.step()
}

func (v *Viewer) step() {
	for i := 0; i < v.stepsPerUpdate; i++ {
		if v.feed != nil {
			v.eng.UpdateAudioAnalysis(v.feed.Next())
		}
		v.eng.Update()
	}
}

// reset restarts the run with the current parameters.
func (v *Viewer) reset() {
	v.eng.Reset()
	v.eng.InitializeAgents(v.eng.Config().Population.Count)
	if v.feed != nil {
		v.feed.Reset()
	}
}

// switchModel swaps the behavioral model, which reinitializes the
// population.
func (v *Viewer) switchModel(kind config.ModelKind) {
	if v.eng.Model() == kind {
		return
	}
	patch := fmt.Sprintf("model:\n  kind: %s\n", kind)
	if err := v.eng.ApplyPatch([]byte(patch)); err != nil {
		slog.Error("model switch failed", "error", err)
	}
}

// nudgeInfluence shifts the global audio influence by delta, clamped to
// [0, 1].
func (v *Viewer) nudgeInfluence(delta float64) {
	next := v.eng.Config().Audio.GlobalInfluence + delta
	if next < 0 {
		next = 0
	}
	if next > 1 {
		next = 1
	}
	patch := fmt.Sprintf("audio:\n  global_influence: %g\n", next)
	if err := v.eng.ApplyPatch([]byte(patch)); err != nil {
		slog.Error("influence change failed", "error", err)
		return
	}
	slog.Info("audio influence", "value", next)
}

// Unload frees GPU resources and closes the engine.
func (v *Viewer) Unload() {
	if v.trails != nil {
		v.trails.Unload()
	}
	if err := v.eng.Close(); err != nil {
		slog.Error("closing engine", "error", err)
	}
}
