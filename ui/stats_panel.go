package ui

import (
	"fmt"

	"github.com/pthm-cable/boids/telemetry"
)

// StatsPanelData is what the stats panel displays.
type StatsPanelData struct {
	Flock telemetry.FlockStats
	Perf  telemetry.PerfStats
}

func flockOf(data any) telemetry.FlockStats { return data.(StatsPanelData).Flock }
func perfOf(data any) telemetry.PerfStats   { return data.(StatsPanelData).Perf }

func phaseField(label, phase string) FieldDescriptor {
	return FieldDescriptor{
		Label:  label,
		Widget: WidgetBar,
		Range:  FieldRange{Min: 0, Max: 100},
		Getter: func(d any) float32 { return float32(perfOf(d).PhasePct[phase]) },
	}
}

// statsSections describes the panel layout.
var statsSections = []SectionDescriptor{
	{
		Title: "Flock",
		Fields: []FieldDescriptor{
			{Label: "Polarization", Widget: WidgetBar, Getter: func(d any) float32 { return float32(flockOf(d).Polarization) }},
			{Label: "Speed", Widget: WidgetText, TextGetter: func(d any) string {
				f := flockOf(d)
				return fmt.Sprintf("%.2f (%.2f / %.2f / %.2f)", f.SpeedMean, f.SpeedP10, f.SpeedP50, f.SpeedP90)
			}},
			{Label: "Spread", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 { return float32(flockOf(d).Spread) }},
			{Label: "Neighbors", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 { return float32(flockOf(d).MeanNeighbors) }},
			{Label: "Centroid", Widget: WidgetText, TextGetter: func(d any) string {
				c := flockOf(d).Centroid
				return fmt.Sprintf("%.0f, %.0f, %.0f", c.X(), c.Y(), c.Z())
			}},
			{Label: "Near wall", Widget: WidgetText, TextGetter: func(d any) string {
				f := flockOf(d)
				return fmt.Sprintf("%d (past %d)", f.NearWall, f.PastWall)
			}},
		},
	},
	{
		Title:   "Frame",
		Visible: func(d any) bool { return perfOf(d).AvgTickDuration > 0 },
		Fields: []FieldDescriptor{
			{Label: "Tick", Widget: WidgetText, TextGetter: func(d any) string {
				p := perfOf(d)
				return fmt.Sprintf("%dus (%.0f/s)", p.AvgTickDuration.Microseconds(), p.TicksPerSecond)
			}},
			phaseField("Steer", telemetry.PhaseSteer),
			phaseField("Integrate", telemetry.PhaseIntegrate),
			phaseField("Snapshot", telemetry.PhaseSnapshot),
			phaseField("Render", telemetry.PhaseRender),
		},
	},
}

// StatsPanel renders flock statistics and frame timing.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *StatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel and returns the y coordinate below it.
func (p *StatsPanel) Draw(data StatsPanelData) int32 {
	r := p.renderer
	padding := r.Theme.Padding

	height := padding * 2
	for _, sd := range statsSections {
		if sd.Visible == nil || sd.Visible(data) {
			height += r.SectionHeight(sd)
		}
	}
	r.DrawPanel(p.x, p.y, p.width, height)

	y := p.y + padding
	for _, sd := range statsSections {
		y = r.DrawSection(p.x+padding, y, sd, data, p.width-padding*2)
	}
	return p.y + height
}
