package game

import (
	"log/slog"

	"github.com/pthm-cable/boids/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	fs := g.sampleFlockStats()
	g.panelData.Flock = fs
	g.panelTick = tick

	// Flush the stats window
	stats := g.collector.Flush(tick, g.flock.Repairs(), fs)
	stats.RunID = g.outputManager.RunID()
	perfStats := g.perfCollector.Stats()
	g.panelData.Perf = perfStats

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleFlockStats summarizes the current population.
func (g *Game) sampleFlockStats() telemetry.FlockStats {
	return telemetry.ComputeFlockStats(g.flock.Birds(), g.boundary, g.flock.Metric(), g.params.AlignRadius)
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	if g.snapshotDir == "" {
		slog.Warn("no snapshot directory configured", "tick", g.Tick())
		return
	}

	snapshot := g.createSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", snapshot.Tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Version:        telemetry.SnapshotVersion,
		RunID:          g.outputManager.RunID(),
		RNGSeed:        g.rngSeed,
		Boundary:       g.boundary,
		DistanceMetric: g.flock.Metric().Name(),
		Cohesion:       g.params.Cohesion.String(),
		Tick:           g.Tick(),
		Agents:         telemetry.CaptureAgents(g.flock.Birds()),
		Bookmark:       bookmark,
	}
}

// Snapshot captures the current state for saving or resuming elsewhere.
func (g *Game) Snapshot() *telemetry.Snapshot {
	return g.createSnapshot(nil)
}
