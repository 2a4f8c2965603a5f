package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.IsEnabled(OverlayStats) || !reg.IsEnabled(OverlayLegend) {
		t.Error("stats and legend should start enabled")
	}
	if reg.IsEnabled(OverlayAgents) {
		t.Error("agents should start disabled")
	}

	got := reg.EnabledOverlays()
	if len(got) != 2 || got[0] != OverlayStats || got[1] != OverlayLegend {
		t.Errorf("enabled overlays = %v", got)
	}
}

func TestOverlayKeyToggle(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyA)
	if !ok || id != OverlayAgents || !on {
		t.Fatalf("key A = %v %v %v, want agents on", id, on, ok)
	}
	if _, on, _ := reg.HandleKeyPress(rl.KeyA); on {
		t.Error("second press should disable")
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Register(OverlayDescriptor{ID: "a", Category: "test", Exclusive: []OverlayID{"b"}})
	reg.Register(OverlayDescriptor{ID: "b", Category: "test", Exclusive: []OverlayID{"a"}})

	reg.SetEnabled("a", true)
	reg.Toggle("b")
	if reg.IsEnabled("a") || !reg.IsEnabled("b") {
		t.Error("enabling b should disable a")
	}

	if cats := reg.Categories(); len(cats) != 3 || cats[2] != "test" {
		t.Errorf("categories = %v", cats)
	}
	if n := len(reg.ByCategory("test")); n != 2 {
		t.Errorf("test category has %d overlays, want 2", n)
	}
}

func TestRangeFrac(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float32
	}{
		{1, 0, 2, 0.5},
		{-1, 0, 2, 0},
		{5, 0, 2, 1},
		{1, 1, 1, 0},
	}
	for _, tt := range tests {
		if got := rangeFrac(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("rangeFrac(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
