// Snapshot render tool - renders a saved flock snapshot to a PNG file.
//
// Usage: go run ./cmd/snapshotpng -snapshot out/snapshots/snapshot_3000_flock_formed.json -out flock.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/agent"
	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/telemetry"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "Path to snapshot JSON")
	outPath := flag.String("out", "snapshot.png", "Output PNG path")
	width := flag.Int("width", 1024, "Render width")
	height := flag.Int("height", 768, "Render height")
	distance := flag.Float64("distance", 0, "Camera distance from the origin (0 = fit boundary)")
	flag.Parse()

	if *snapshotPath == "" {
		fmt.Fprintln(os.Stderr, "-snapshot is required")
		os.Exit(2)
	}

	snap, err := telemetry.LoadSnapshot(*snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load snapshot: %v\n", err)
		os.Exit(1)
	}
	mode, err := agent.ParseCohesionMode(snap.Cohesion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad snapshot: %v\n", err)
		os.Exit(1)
	}
	birds := snap.Birds(mode)

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Snapshot Render")
	defer rl.CloseWindow()

	b := float32(snap.Boundary)
	d := float32(*distance)
	if d <= 0 {
		d = 3.2 * b
	}
	cam := camera.New(d/1.7320508, d/1.7320508, d/1.7320508)
	scene := renderer.NewScene(cam, b)

	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(renderer.ClearColor)
	scene.Draw(birds)
	rl.DrawText(fmt.Sprintf("tick %d  %d birds  %s", snap.Tick, len(birds), snap.DistanceMetric), 10, 10, 20, rl.LightGray)
	if snap.Bookmark != nil {
		rl.DrawText(snap.Bookmark.Description, 10, 34, 16, rl.Yellow)
	}
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Snapshot rendered to: %s (%dx%d)\n", *outPath, *width, *height)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
