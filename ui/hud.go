package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxStepsPerUpdate bounds the steps-per-update slider.
const MaxStepsPerUpdate = 10

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Population     int
	Tick           int64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	Metric         string
	Cohesion       string
	Repairs        int
	ScreenWidth    int32
	ScreenHeight   int32
}

// HUDActions reports what the user clicked this frame.
type HUDActions struct {
	TogglePause    bool
	Step           bool
	ResetCamera    bool
	ToggleBoundary bool
	StepsPerUpdate int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD and its buttons.
func (h *HUD) Draw(data HUDData) HUDActions {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Boids: %d | Metric: %s | Cohesion: %s", data.Population, data.Metric, data.Cohesion),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Repairs > 0 {
		statusText += fmt.Sprintf(" | repaired %d", data.Repairs)
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	return h.drawButtons(data)
}

func (h *HUD) drawButtons(data HUDData) HUDActions {
	actions := HUDActions{StepsPerUpdate: data.StepsPerUpdate}

	x := float32(10)
	y := float32(100)

	pauseText := "Pause"
	if data.Paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 80, Height: 24}, pauseText) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 90, Y: y, Width: 80, Height: 24}, "Step") {
		actions.Step = true
	}
	if gui.Button(rl.Rectangle{X: x + 180, Y: y, Width: 80, Height: 24}, "Camera") {
		actions.ResetCamera = true
	}
	if gui.Button(rl.Rectangle{X: x + 270, Y: y, Width: 80, Height: 24}, "Bounds") {
		actions.ToggleBoundary = true
	}

	y += 34
	steps := gui.SliderBar(
		rl.Rectangle{X: x + 50, Y: y, Width: 200, Height: 16},
		"Speed", fmt.Sprintf("%dx", data.StepsPerUpdate),
		float32(data.StepsPerUpdate), 1, MaxStepsPerUpdate,
	)
	actions.StepsPerUpdate = max(1, min(MaxStepsPerUpdate, int(steps+0.5)))

	return actions
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
