package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestComputeChannelStats(t *testing.T) {
	values := []float64{0, 0, 1, 3, 6}
	cs := ComputeChannelStats(values, 1)

	if cs.Mass != 10 {
		t.Errorf("mass = %v, want 10", cs.Mass)
	}
	if cs.Peak != 6 {
		t.Errorf("peak = %v, want 6", cs.Peak)
	}
	if math.Abs(cs.Coverage-0.6) > 1e-9 {
		t.Errorf("coverage = %v, want 0.6", cs.Coverage)
	}

	if got := ComputeChannelStats(nil, 1); got != (ChannelStats{}) {
		t.Errorf("empty channel = %+v, want zero", got)
	}
}

func TestStructure(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"uniform", []float64{5, 5, 5, 5}, 0},
		{"empty field", []float64{0, 0, 0, 0}, 0},
		{"single", []float64{3}, 0},
		// mean 1, sample std 2
		{"one hot", []float64{4, 0, 0, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Structure(tt.values)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Structure(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestOccupiedQuantiles(t *testing.T) {
	values := []float64{0, 0, 0, 5, 1, 4, 2, 3, 0, 6, 7, 8, 9, 10}
	p50, p90 := OccupiedQuantiles(values)
	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p90 != 9 {
		t.Errorf("p90 = %v, want 9", p90)
	}

	p50, p90 = OccupiedQuantiles([]float64{0, 0})
	if p50 != 0 || p90 != 0 {
		t.Error("empty field should return zeros")
	}
}

func TestHeadingOrder(t *testing.T) {
	aligned := []float64{1, 1, 1, 1}
	if got := HeadingOrder(aligned); math.Abs(got-1) > 1e-9 {
		t.Errorf("aligned order = %v, want 1", got)
	}

	opposed := []float64{0, math.Pi, math.Pi / 2, 3 * math.Pi / 2}
	if got := HeadingOrder(opposed); got > 1e-9 {
		t.Errorf("isotropic order = %v, want 0", got)
	}

	if HeadingOrder(nil) != 0 {
		t.Error("no agents should give 0")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10, 1)

	c.RecordAudio(true)
	c.RecordAudio(false)
	c.RecordAudio(true)

	if c.ShouldFlush(9) {
		t.Error("window should not be complete at frame 9")
	}
	if !c.ShouldFlush(10) {
		t.Error("window should be complete at frame 10")
	}

	s := Sample{
		Model:        "contextual",
		Agents:       4,
		Trails:       [3][]float64{{2, 0, 0, 0}, {0, 2, 0, 0}, nil},
		Headings:     []float64{0, 0, 0, 0},
		ExploreCount: 1,
		ContextCount: 4,
		SpeedMult:    [3]float64{1, 1.5, 1},
	}
	stats := c.Flush(10, s)

	if stats.WindowStartFrame != 0 || stats.WindowEndFrame != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", stats.WindowStartFrame, stats.WindowEndFrame)
	}
	if stats.AudioFrames != 3 || stats.Beats != 2 {
		t.Errorf("audio frames/beats = %d/%d, want 3/2", stats.AudioFrames, stats.Beats)
	}
	if stats.Mass0 != 2 || stats.Mass1 != 2 || stats.Mass2 != 0 {
		t.Errorf("masses = %v %v %v", stats.Mass0, stats.Mass1, stats.Mass2)
	}
	if stats.Coverage0 != 0.25 {
		t.Errorf("coverage_0 = %v, want 0.25", stats.Coverage0)
	}
	if stats.ExploreFrac != 0.25 {
		t.Errorf("explore_frac = %v, want 0.25", stats.ExploreFrac)
	}
	if math.Abs(stats.HeadingOrder-1) > 1e-9 {
		t.Errorf("heading_order = %v, want 1", stats.HeadingOrder)
	}
	// summed field {2,2,0,0}: mean 1, sample std sqrt(4/3)
	if want := math.Sqrt(4.0 / 3.0); math.Abs(stats.Structure-want) > 1e-9 {
		t.Errorf("structure = %v, want %v", stats.Structure, want)
	}
	if stats.SpeedMult1 != 1.5 {
		t.Errorf("speed_mult_1 = %v", stats.SpeedMult1)
	}

	// Counters reset for the next window
	next := c.Flush(20, Sample{})
	if next.WindowStartFrame != 10 || next.AudioFrames != 0 || next.Beats != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestOutputManager(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 2; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndFrame: i * 300, Model: "classical"}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkCollapse, Frame: 600}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,model,") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Nil receiver is a no-op
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}
