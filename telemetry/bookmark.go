package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFlockFormed     BookmarkType = "flock_formed"
	BookmarkFlockDispersed  BookmarkType = "flock_dispersed"
	BookmarkWallBreach      BookmarkType = "wall_breach"
	BookmarkNumericalRepair BookmarkType = "numerical_repair"
	BookmarkSteadyState     BookmarkType = "steady_state"
)

// Thresholds for bookmark detection.
const (
	formedPolarization    = 0.8
	formedBaseline        = 0.5
	dispersedDrop         = 0.3
	steadyWindows         = 4
	steadySpreadCV        = 0.05
	minHistoryForAverages = 3
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the flock's evolution.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	peakPolarization float64 // highest polarization since the last dispersal
	breached         bool    // agents were past the wall in the previous window
	steady           bool    // steady state already reported
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows+1 {
		historySize = steadyWindows + 1
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkFlockFormed,
		bd.checkFlockDispersed,
		bd.checkWallBreach,
		bd.checkRepairs,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	// Steady state looks at the window just added.
	if b := bd.checkSteadyState(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Polarization > bd.peakPolarization {
		bd.peakPolarization = stats.Polarization
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)

	out := make([]WindowStats, n)
	for i := range n {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkFlockFormed(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < minHistoryForAverages {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += h.Polarization
	}
	avg := sum / float64(len(history))

	if avg < formedBaseline && stats.Polarization >= formedPolarization {
		return &Bookmark{
			Type:        BookmarkFlockFormed,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Polarization %.2f up from average %.2f", stats.Polarization, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFlockDispersed(stats WindowStats) *Bookmark {
	if bd.peakPolarization == 0 {
		return nil
	}

	drop := bd.peakPolarization - stats.Polarization
	if drop > dispersedDrop {
		oldPeak := bd.peakPolarization
		// Reset peak after dispersal
		bd.peakPolarization = stats.Polarization

		return &Bookmark{
			Type:        BookmarkFlockDispersed,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Polarization fell from %.2f to %.2f", oldPeak, stats.Polarization),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkWallBreach(stats WindowStats) *Bookmark {
	was := bd.breached
	bd.breached = stats.PastWall > 0
	if !bd.breached || was {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkWallBreach,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d agents past the boundary", stats.PastWall),
	}
}

func (bd *BookmarkDetector) checkRepairs(stats WindowStats) *Bookmark {
	if stats.Repairs == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkNumericalRepair,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d non-finite agent states repaired", stats.Repairs),
	}
}

func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	window := bd.recent(steadyWindows)
	if len(window) < steadyWindows {
		return nil
	}

	var sum float64
	for _, h := range window {
		sum += h.Spread
	}
	mean := sum / steadyWindows
	if mean == 0 {
		return nil
	}

	var variance float64
	for _, h := range window {
		d := h.Spread - mean
		variance += d * d
	}
	variance /= steadyWindows

	// Coefficient of variation squared against the threshold squared.
	cv2 := variance / (mean * mean)
	if cv2 >= steadySpreadCV*steadySpreadCV {
		bd.steady = false
		return nil
	}
	if bd.steady {
		return nil
	}
	bd.steady = true

	return &Bookmark{
		Type:        BookmarkSteadyState,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Spread held near %.1f for %d windows", mean, steadyWindows),
	}
}
