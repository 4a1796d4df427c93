package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/boids/agent"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a diagnostic dump of the flock at one tick, written when a
// bookmark fires or on request. It is read back only by offline tools.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	RNGSeed int64  `json:"rng_seed"`

	Boundary       float64 `json:"boundary"`
	DistanceMetric string  `json:"distance_metric"`
	Cohesion       string  `json:"cohesion"`

	Tick int64 `json:"tick"`

	Agents []AgentState `json:"agents"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AgentState holds one agent's kinematic state and rule parameters.
type AgentState struct {
	ID uint32 `json:"id"`

	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
	VelZ float64 `json:"vel_z"`

	AlignRadius      float64 `json:"align_radius"`
	CohesionRadius   float64 `json:"cohesion_radius"`
	SeparationRadius float64 `json:"separation_radius"`
	MaxSpeed         float64 `json:"max_speed"`
	MaxForce         float64 `json:"max_force"`
}

// CaptureAgents converts agents to their serializable form.
func CaptureAgents(birds []agent.Agent) []AgentState {
	states := make([]AgentState, len(birds))
	for i, b := range birds {
		states[i] = AgentState{
			ID:   b.ID,
			X:    b.Position.X(),
			Y:    b.Position.Y(),
			Z:    b.Position.Z(),
			VelX: b.Velocity.X(),
			VelY: b.Velocity.Y(),
			VelZ: b.Velocity.Z(),

			AlignRadius:      b.Params.AlignRadius,
			CohesionRadius:   b.Params.CohesionRadius,
			SeparationRadius: b.Params.SeparationRadius,
			MaxSpeed:         b.Params.MaxSpeed,
			MaxForce:         b.Params.MaxForce,
		}
	}
	return states
}

// Birds rebuilds agent values from the dump, for drawing or analysis. The
// cohesion mode is not stored per agent; mode is applied to all of them.
func (s *Snapshot) Birds(mode agent.CohesionMode) []agent.Agent {
	birds := make([]agent.Agent, len(s.Agents))
	for i, st := range s.Agents {
		birds[i] = agent.Agent{
			ID:       st.ID,
			Position: mgl64.Vec3{st.X, st.Y, st.Z},
			Velocity: mgl64.Vec3{st.VelX, st.VelY, st.VelZ},
			Params: agent.Params{
				AlignRadius:      st.AlignRadius,
				CohesionRadius:   st.CohesionRadius,
				SeparationRadius: st.SeparationRadius,
				MaxSpeed:         st.MaxSpeed,
				MaxForce:         st.MaxForce,
				Cohesion:         mode,
			},
		}
	}
	return birds
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
