package viewer

import (
	"testing"

	"github.com/pthm-cable/oikos/config"
)

func newHeadless(t *testing.T, audio bool) *Viewer {
	t.Helper()
	cfg := config.Default()
	cfg.Grid.Size = 64
	cfg.Grid.Workers = 2
	cfg.Population.Count = 60

	v, err := New(cfg, Options{Headless: true, Audio: audio, BPM: 128, StepsPerUpdate: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(v.Unload)
	return v
}

func TestHeadlessSteps(t *testing.T) {
	v := newHeadless(t, true)

	for i := 0; i < 10; i++ {
		v.UpdateHeadless()
	}
	if v.Frame() != 30 {
		t.Errorf("frame = %d, want 30", v.Frame())
	}
	if v.Engine().AgentCount() != 60 {
		t.Errorf("agents = %d, want 60", v.Engine().AgentCount())
	}
}

func TestHeadlessAudioModulates(t *testing.T) {
	withAudio := newHeadless(t, true)
	silent := newHeadless(t, false)
	for i := 0; i < 20; i++ {
		withAudio.UpdateHeadless()
		silent.UpdateHeadless()
	}
	if withAudio.Engine().Modulation(0) == silent.Engine().Modulation(0) {
		t.Error("audio feed should change the modulation")
	}
}

func TestSwitchModel(t *testing.T) {
	v := newHeadless(t, false)
	v.UpdateHeadless()

	v.switchModel(config.ModelQuantum)
	if v.Engine().Model() != config.ModelQuantum {
		t.Fatalf("model = %s, want quantum", v.Engine().Model())
	}
	if v.Frame() != 0 {
		t.Errorf("model switch should reinitialize, frame = %d", v.Frame())
	}
	if _, ok := v.Engine().Phases(); !ok {
		t.Error("quantum model should track phase")
	}
}

func TestNudgeInfluenceClamps(t *testing.T) {
	v := newHeadless(t, false)

	for i := 0; i < 15; i++ {
		v.nudgeInfluence(-0.1)
	}
	if got := v.Engine().Config().Audio.GlobalInfluence; got != 0 {
		t.Errorf("influence = %v, want 0", got)
	}
	for i := 0; i < 15; i++ {
		v.nudgeInfluence(0.1)
	}
	if got := v.Engine().Config().Audio.GlobalInfluence; got != 1 {
		t.Errorf("influence = %v, want 1", got)
	}
}

func TestResetRestartsRun(t *testing.T) {
	v := newHeadless(t, true)
	for i := 0; i < 5; i++ {
		v.UpdateHeadless()
	}
	v.reset()
	if v.Frame() != 0 {
		t.Errorf("frame after reset = %d", v.Frame())
	}
	if v.Engine().AgentCount() != 60 {
		t.Errorf("agents after reset = %d", v.Engine().AgentCount())
	}
}
