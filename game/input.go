package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Single step while paused
	if rl.IsKeyPressed(rl.KeyN) && g.paused {
		g.stepOnce = true
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < ui.MaxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyB) {
		g.scene.ShowBoundary = !g.scene.ShowBoundary
	}

	// Manual snapshot
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot(nil)
	}

	// Camera controls
	g.scene.HandleInput()
}

// applyHUDActions applies what the HUD buttons reported during the last Draw.
func (g *Game) applyHUDActions(a ui.HUDActions) {
	if a.TogglePause {
		g.paused = !g.paused
	}
	if a.Step {
		g.paused = true
		g.stepOnce = true
	}
	if a.ResetCamera {
		g.scene.Camera().Reset()
	}
	if a.ToggleBoundary {
		g.scene.ShowBoundary = !g.scene.ShowBoundary
	}
	if a.StepsPerUpdate > 0 {
		g.stepsPerUpdate = a.StepsPerUpdate
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.statsPanel.SetPosition(int32(w)-290, 10)
}
