package telemetry

import "gonum.org/v1/gonum/floats"

// Sample is the engine state captured at the end of a stats window.
type Sample struct {
	Model  string
	Agents int

	// Trails holds each species channel as float64, row-major.
	Trails [3][]float64

	Headings     []float64
	ExploreCount int // agents in explore mode
	ContextCount int // agents carrying explore/exploit state
	AmpNormErr   float64

	SpeedMult [3]float64
}

// Collector accumulates events within frame windows and produces WindowStats.
type Collector struct {
	windowFrames      int
	coverageThreshold float64

	windowStartFrame int

	// Event counters for current window
	audioFrames int
	beats       int
}

// NewCollector creates a collector that flushes every windowFrames frames.
// Cells at or above coverageThreshold count toward coverage.
func NewCollector(windowFrames int, coverageThreshold float64) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames:      windowFrames,
		coverageThreshold: coverageThreshold,
	}
}

// RecordAudio records one received audio snapshot.
func (c *Collector) RecordAudio(beat bool) {
	c.audioFrames++
	if beat {
		c.beats++
	}
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(frame int) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats from s and resets counters for the next window.
func (c *Collector) Flush(frame int, s Sample) WindowStats {
	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		Model:            s.Model,
		Agents:           s.Agents,
		HeadingOrder:     HeadingOrder(s.Headings),
		AmpNormErr:       s.AmpNormErr,
		AudioFrames:      c.audioFrames,
		Beats:            c.beats,
		SpeedMult0:       s.SpeedMult[0],
		SpeedMult1:       s.SpeedMult[1],
		SpeedMult2:       s.SpeedMult[2],
	}
	if s.ContextCount > 0 {
		stats.ExploreFrac = float64(s.ExploreCount) / float64(s.ContextCount)
	}

	var ch [3]ChannelStats
	for i, values := range s.Trails {
		ch[i] = ComputeChannelStats(values, c.coverageThreshold)
	}
	stats.Mass0, stats.Peak0, stats.Coverage0 = ch[0].Mass, ch[0].Peak, ch[0].Coverage
	stats.Mass1, stats.Peak1, stats.Coverage1 = ch[1].Mass, ch[1].Peak, ch[1].Coverage
	stats.Mass2, stats.Peak2, stats.Coverage2 = ch[2].Mass, ch[2].Peak, ch[2].Coverage

	summed := sumChannels(s.Trails)
	stats.Structure = Structure(summed)
	stats.TrailP50, stats.TrailP90 = OccupiedQuantiles(summed)

	// Reset for next window
	c.windowStartFrame = frame
	c.audioFrames = 0
	c.beats = 0

	return stats
}

// Reset starts a fresh window at frame.
func (c *Collector) Reset(frame int) {
	c.windowStartFrame = frame
	c.audioFrames = 0
	c.beats = 0
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int {
	return c.windowFrames
}

// sumChannels adds channels cell by cell. Nil channels are skipped; the
// rest must share a length.
func sumChannels(channels [3][]float64) []float64 {
	var out []float64
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		if out == nil {
			out = make([]float64, len(ch))
		}
		floats.Add(out, ch)
	}
	return out
}
