// Rule preview tool - live flock with sliders for the steering parameters.
//
// Usage: go run ./cmd/rulepreview
package main

import (
	"flag"
	"fmt"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/agent"
	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/flock"
	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/telemetry"
)

const (
	windowWidth  = 1280
	windowHeight = 800
	panelWidth   = 330
	boundary     = 180.0
)

// previewState holds everything the sliders can change.
type previewState struct {
	Params agent.Params
	Metric agent.DistanceMetric
	Seed   int64
}

func defaultState() previewState {
	return previewState{
		Params: agent.DefaultParams(),
		Metric: agent.Manhattan{},
		Seed:   12345,
	}
}

func main() {
	size := flag.Int("n", 300, "Number of birds")
	flag.Parse()

	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(windowWidth, windowHeight, "Flocking Rule Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	state := defaultState()
	f := newFlock(*size, state)
	defer func() { f.Close() }()

	cam := camera.New(250, 200, 250)
	cam.SetLimits(20, 2000)
	scene := renderer.NewScene(cam, boundary)

	running := true
	var fs telemetry.FlockStats

	for !rl.WindowShouldClose() {
		if running {
			f.Update(boundary)
		}
		if f.Tick()%15 == 0 {
			fs = telemetry.ComputeFlockStats(f.Birds(), boundary, state.Metric, state.Params.AlignRadius)
		}

		// Orbit only when the pointer is over the 3D view
		if rl.GetMouseX() < windowWidth-panelWidth {
			scene.HandleInput()
		}

		rl.BeginDrawing()
		rl.ClearBackground(renderer.ClearColor)

		scene.Draw(f.Birds())

		rl.DrawText(fmt.Sprintf("Tick: %d  Polarization: %.3f  Neighbors: %.1f  Spread: %.1f",
			f.Tick(), fs.Polarization, fs.MeanNeighbors, fs.Spread), 10, 10, 16, rl.LightGray)

		// Control panel
		panelX := float32(windowWidth - panelWidth + 10)
		panelY := float32(10)
		rl.DrawRectangle(int32(panelX)-10, 0, panelWidth, windowHeight, rl.Color{R: 20, G: 20, B: 28, A: 230})

		rl.DrawText("Steering Parameters", int32(panelX), int32(panelY), 20, rl.RayWhite)
		panelY += 35

		p := state.Params
		p.AlignRadius = float64(slider(&panelY, panelX, "Alignment radius", "%.1f", float32(p.AlignRadius), 5, 120))
		p.CohesionRadius = float64(slider(&panelY, panelX, "Cohesion radius", "%.1f", float32(p.CohesionRadius), 5, 120))
		p.SeparationRadius = float64(slider(&panelY, panelX, "Separation radius", "%.1f", float32(p.SeparationRadius), 1, 60))
		p.MaxSpeed = float64(slider(&panelY, panelX, "Max speed", "%.2f", float32(p.MaxSpeed), 0.5, 8))
		p.MaxForce = float64(slider(&panelY, panelX, "Max force", "%.3f", float32(p.MaxForce), 0.001, 0.2))
		if p != state.Params {
			state.Params = p
			f = rebuild(f, state)
		}

		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+panelWidth-30, int32(panelY), rl.Gray)
		panelY += 15

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, "Metric: "+state.Metric.Name()) {
			state.Metric = otherMetric(state.Metric)
			f = rebuild(f, state)
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: panelY, Width: 150, Height: 30}, "Cohesion: "+shortMode(state.Params.Cohesion)) {
			state.Params.Cohesion = otherMode(state.Params.Cohesion)
			f = rebuild(f, state)
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, toggleText(running, "Pause", "Run")) {
			running = !running
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: panelY, Width: 150, Height: 30}, "Respawn") {
			state.Seed++
			f.Close()
			f = newFlock(*size, state)
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, "Reset All") {
			state = defaultState()
			f.Close()
			f = newFlock(*size, state)
		}
		panelY += 50

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.RayWhite)
		panelY += 25
		for _, line := range yamlLines(state) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.LightGray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), windowHeight-30, 12, rl.Gray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yamlText(state))
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider at *y, advances *y, and returns the new value.
func slider(y *float32, x float32, label, format string, value, minVal, maxVal float32) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: panelWidth - 100, Height: 20},
		"", "",
		value, minVal, maxVal,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x)+panelWidth-90, int32(*y+2), 16, rl.RayWhite)
	*y += 35
	return v
}

func newFlock(n int, s previewState) *flock.Flock {
	opts := flock.DefaultOptions()
	opts.Seed = s.Seed
	opts.Params = s.Params
	opts.Metric = s.Metric
	return flock.New(n, opts)
}

// rebuild carries the current birds over into a flock with new settings.
func rebuild(f *flock.Flock, s previewState) *flock.Flock {
	birds := f.Birds()
	for i := range birds {
		birds[i].Params = s.Params
	}
	f.Close()

	opts := flock.DefaultOptions()
	opts.Params = s.Params
	opts.Metric = s.Metric
	return flock.FromAgents(birds, opts)
}

func otherMetric(m agent.DistanceMetric) agent.DistanceMetric {
	if _, ok := m.(agent.Manhattan); ok {
		return agent.Euclidean{}
	}
	return agent.Manhattan{}
}

func otherMode(m agent.CohesionMode) agent.CohesionMode {
	if m == agent.CohesionCentroid {
		return agent.CohesionMirrorsAlignment
	}
	return agent.CohesionCentroid
}

func shortMode(m agent.CohesionMode) string {
	if m == agent.CohesionCentroid {
		return "centroid"
	}
	return "mirror"
}

func yamlLines(s previewState) []string {
	p := s.Params
	return []string{
		"flocking:",
		fmt.Sprintf("  distance_metric: %s", s.Metric.Name()),
		fmt.Sprintf("  cohesion: %s", p.Cohesion),
		fmt.Sprintf("  align_radius: %.1f", p.AlignRadius),
		fmt.Sprintf("  cohesion_radius: %.1f", p.CohesionRadius),
		fmt.Sprintf("  separation_radius: %.1f", p.SeparationRadius),
		fmt.Sprintf("  max_speed: %.2f", p.MaxSpeed),
		fmt.Sprintf("  max_force: %.3f", p.MaxForce),
	}
}

func yamlText(s previewState) string {
	return strings.Join(yamlLines(s), "\n")
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
