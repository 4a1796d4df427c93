package telemetry

// Collector accumulates per-frame counters within windows of frames and
// produces WindowStats.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStartTick int64

	// Cumulative repair count seen at the last flush
	repairsAtStart int
}

// NewCollector creates a new stats collector.
// windowFrames: how many frames each stats window spans.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int64(windowFrames)}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowFrames
}

// Flush produces a WindowStats and starts the next window.
// totalRepairs is the flock's cumulative repair count; the window reports
// only the repairs made since the previous flush.
func (c *Collector) Flush(currentTick int64, totalRepairs int, fs FlockStats) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Frames:          currentTick - c.windowStartTick,

		Population: fs.Population,
		Repairs:    totalRepairs - c.repairsAtStart,

		SpeedMean: fs.SpeedMean,
		SpeedStd:  fs.SpeedStd,
		SpeedP10:  fs.SpeedP10,
		SpeedP50:  fs.SpeedP50,
		SpeedP90:  fs.SpeedP90,

		Polarization:  fs.Polarization,
		CentroidX:     fs.Centroid.X(),
		CentroidY:     fs.Centroid.Y(),
		CentroidZ:     fs.Centroid.Z(),
		Spread:        fs.Spread,
		MeanNeighbors: fs.MeanNeighbors,

		NearWall: fs.NearWall,
		PastWall: fs.PastWall,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.repairsAtStart = totalRepairs

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
