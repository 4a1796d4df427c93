package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/telemetry"
	"github.com/pthm-cable/boids/ui"
)

// panelRefresh is how often, in frames, the stats panel is recomputed
// between telemetry windows.
const panelRefresh = 30

const controlsLegend = "[Space] pause  [N] step  [<>] speed  [Drag/Arrows] orbit  [Wheel/+-] zoom  [Home] camera  [B] bounds  [S] snapshot"

// Draw renders the current frame and closes the frame timing started by Update.
func (g *Game) Draw() {
	if g.scene == nil {
		return
	}

	g.perfCollector.StartPhase(telemetry.PhaseRender)

	birds := g.flock.Birds()

	rl.BeginDrawing()
	rl.ClearBackground(renderer.ClearColor)

	g.scene.Draw(birds)
	g.drawUI()

	rl.EndDrawing()

	g.perfCollector.EndTick()
	g.perfCollector.RecordFrame()
}

// drawUI renders the HUD and the stats panel.
func (g *Game) drawUI() {
	tick := g.Tick()
	if tick-g.panelTick >= panelRefresh || g.panelTick == 0 {
		g.panelData.Flock = g.sampleFlockStats()
		g.panelData.Perf = g.perfCollector.Stats()
		g.panelTick = max(tick, 1)
	}

	actions := g.hud.Draw(ui.HUDData{
		Title:          "Boids",
		Population:     g.flock.Len(),
		Tick:           tick,
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		Metric:         g.flock.Metric().Name(),
		Cohesion:       g.params.Cohesion.String(),
		Repairs:        g.flock.Repairs(),
		ScreenWidth:    int32(g.screenWidth),
		ScreenHeight:   int32(g.screenHeight),
	})
	g.applyHUDActions(actions)

	g.statsPanel.Draw(g.panelData)
	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)
}
