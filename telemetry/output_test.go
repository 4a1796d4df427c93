package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/boids/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// Every method is a no-op on a nil manager.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if om.RunID() != "" || om.Dir() != "" || om.SnapshotDir() != "" {
		t.Error("nil manager should report empty paths")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesRows(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	if om.RunID() == "" {
		t.Fatal("expected a run id")
	}

	for i := 1; i <= 2; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int64(i * 300), Population: 10}); err != nil {
			t.Fatalf("WriteTelemetry failed: %v", err)
		}
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 300); err != nil {
		t.Fatalf("WritePerf failed: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "run_id,window_end,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, om.RunID()+",") {
			t.Errorf("row missing run id: %s", line)
		}
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "steer_pct") {
		t.Error("perf.csv missing steer_pct column")
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(100)

	if c.ShouldFlush(99) {
		t.Error("window should not flush before 100 frames")
	}
	if !c.ShouldFlush(100) {
		t.Error("window should flush at 100 frames")
	}

	first := c.Flush(100, 3, FlockStats{Population: 50, Polarization: 0.5})
	if first.Frames != 100 || first.Repairs != 3 || first.Population != 50 {
		t.Errorf("unexpected first window: %+v", first)
	}

	if c.ShouldFlush(150) {
		t.Error("second window should start at the flush tick")
	}

	second := c.Flush(200, 5, FlockStats{Population: 50})
	if second.WindowStartTick != 100 || second.WindowEndTick != 200 {
		t.Errorf("unexpected second window bounds: %+v", second)
	}
	if second.Repairs != 2 {
		t.Errorf("Repairs = %d, want 2 since previous flush", second.Repairs)
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0)
	if c.WindowFrames() != 1 {
		t.Errorf("WindowFrames = %d, want 1", c.WindowFrames())
	}
}
