// Package renderer draws the flock in 3D with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/boids/agent"
	"github.com/pthm-cable/boids/camera"
)

// Bird mesh dimensions and colors.
const (
	coneRadius = 1.0
	coneHeight = 7.0
	coneSides  = 8
)

var (
	birdColor     = rl.Color{R: 0x3b, G: 0x43, B: 0x59, A: 255}
	birdTipColor  = rl.Color{R: 0x8a, G: 0x5c, B: 0xff, A: 255}
	boundaryColor = rl.Color{R: 60, G: 70, B: 80, A: 255}

	// ClearColor is the background color.
	ClearColor = rl.Color{R: 0, G: 0, B: 0, A: 255}
)

// Input sensitivities.
const (
	orbitPerPixel = 0.005
	zoomPerNotch  = 0.1
	keyOrbitStep  = 0.03
)

// ConeShape is the geometry of one bird: a cone centered on the agent's
// position, its tip pointing along the heading.
type ConeShape struct {
	Base, Tip mgl32.Vec3
	Radius    float32
}

// Cone adapts an agent to its rendered shape. The axis is Up rotated by the
// agent's orientation, so an agent at rest points up.
func Cone(a agent.Agent) ConeShape {
	axis := a.Orientation().Rotate(agent.Up)
	half := mgl32.Vec3{float32(axis.X()), float32(axis.Y()), float32(axis.Z())}.Mul(coneHeight / 2)
	center := mgl32.Vec3{float32(a.Position.X()), float32(a.Position.Y()), float32(a.Position.Z())}
	return ConeShape{
		Base:   center.Sub(half),
		Tip:    center.Add(half),
		Radius: coneRadius,
	}
}

// Scene renders the boundary cube and the birds from an orbit camera.
type Scene struct {
	cam      *camera.Camera
	boundary float32

	// ShowBoundary toggles the boundary wireframe.
	ShowBoundary bool
}

// NewScene creates a scene viewed through cam.
func NewScene(cam *camera.Camera, boundary float32) *Scene {
	return &Scene{
		cam:          cam,
		boundary:     boundary,
		ShowBoundary: true,
	}
}

// Camera returns the orbit camera driving the scene.
func (s *Scene) Camera() *camera.Camera {
	return s.cam
}

// HandleInput orbits on left-drag or arrow keys and zooms on the wheel.
// Returns true if the camera moved.
func (s *Scene) HandleInput() bool {
	moved := false

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		if d.X != 0 || d.Y != 0 {
			s.cam.Orbit(-d.X*orbitPerPixel, d.Y*orbitPerPixel)
			moved = true
		}
	}

	if rl.IsKeyDown(rl.KeyLeft) {
		s.cam.Orbit(-keyOrbitStep, 0)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyRight) {
		s.cam.Orbit(keyOrbitStep, 0)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyUp) {
		s.cam.Orbit(0, keyOrbitStep)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyDown) {
		s.cam.Orbit(0, -keyOrbitStep)
		moved = true
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.cam.Zoom(1 - wheel*zoomPerNotch)
		moved = true
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		s.cam.Zoom(0.8)
		moved = true
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		s.cam.Zoom(1.25)
		moved = true
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		s.cam.Reset()
		moved = true
	}

	return moved
}

// Draw renders birds in 3D. Must be called between BeginDrawing and EndDrawing.
func (s *Scene) Draw(birds []agent.Agent) {
	rl.BeginMode3D(s.camera3D())

	if s.ShowBoundary {
		edge := 2 * s.boundary
		rl.DrawCubeWires(rl.Vector3{}, edge, edge, edge, boundaryColor)
		rl.DrawGrid(20, edge/20)
	}

	for i := range birds {
		c := Cone(birds[i])
		rl.DrawCylinderEx(toRL(c.Base), toRL(c.Tip), c.Radius, 0, coneSides, birdColor)
		rl.DrawPoint3D(toRL(c.Tip), birdTipColor)
	}

	rl.EndMode3D()
}

// camera3D converts the orbit camera to raylib's representation.
func (s *Scene) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   toRL(s.cam.Position()),
		Target:     toRL(s.cam.Target),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       s.cam.Fovy,
		Projection: rl.CameraPerspective,
	}
}

func toRL(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v.X(), Y: v.Y(), Z: v.Z()}
}
