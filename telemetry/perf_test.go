package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAgents)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseDiffusion)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTick <= 0 {
		t.Error("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseAgents] <= 0 {
		t.Error("expected agents phase to be tracked")
	}
	if stats.PhaseAvg[PhaseDiffusion] <= 0 {
		t.Error("expected diffusion phase to be tracked")
	}
	if stats.PhaseAvg[PhaseAudio] != 0 {
		t.Error("audio phase never ran but has time")
	}
	if stats.MinTick > stats.AvgTick || stats.AvgTick > stats.MaxTick {
		t.Errorf("min/avg/max out of order: %v %v %v", stats.MinTick, stats.AvgTick, stats.MaxTick)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAgents)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTick <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAudio)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseDiffusion)
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct[PhaseDiffusion] <= stats.PhasePct[PhaseAudio] {
		t.Errorf("expected diffusion (%v%%) > audio (%v%%)",
			stats.PhasePct[PhaseDiffusion], stats.PhasePct[PhaseAudio])
	}
	if stats.PhasePct[PhaseDiffusion] > 100 {
		t.Errorf("phase share above 100%%: %v", stats.PhasePct[PhaseDiffusion])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgTick != 0 || stats.TicksPerSecond != 0 {
		t.Error("expected zero stats for empty collector")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}
	// 16ms frames, allow scheduler slack
	if stats.FPS < 20 || stats.FPS > 70 {
		t.Errorf("expected FPS near 60 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseAgents.String() != "agents" {
		t.Errorf("PhaseAgents.String() = %q", PhaseAgents.String())
	}
	if Phase(99).String() != "unknown" {
		t.Errorf("out of range phase = %q", Phase(99).String())
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTick = 1500 * time.Microsecond
	s.PhasePct[PhaseAgents] = 70
	row := s.ToCSV(600)
	if row.WindowEnd != 600 || row.AvgTickUS != 1500 || row.AgentsPct != 70 {
		t.Errorf("unexpected CSV row %+v", row)
	}
}
