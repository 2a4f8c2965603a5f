package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/oikos/config"
)

const controlsLegend = "SPACE pause | 1/2/3 model | R reset | ,/. speed | [/] audio | Tab overlays | G species | arrows/wheel camera"

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < 10 {
		v.stepsPerUpdate++
	}

	switch {
	case rl.IsKeyPressed(rl.KeyOne):
		v.switchModel(config.ModelClassical)
	case rl.IsKeyPressed(rl.KeyTwo):
		v.switchModel(config.ModelContextual)
	case rl.IsKeyPressed(rl.KeyThree):
		v.switchModel(config.ModelQuantum)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.reset()
	}

	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		v.nudgeInfluence(-0.1)
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		v.nudgeInfluence(0.1)
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		v.modSpecies = (v.modSpecies + 1) % config.NumSpecies
	}
	if key := rl.GetKeyPressed(); key != 0 {
		v.overlays.HandleKeyPress(key)
	}

	v.cam.SetGridSize(v.eng.GridSize())
	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.cam.Resize(w, h)
	v.layoutPanels()
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	const panPixels = 8

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panPixels)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panPixels)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}
