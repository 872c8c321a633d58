package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestCalcDamageRange(t *testing.T) {
	e := newTestEngine(t, "")
	e.Seed(42)
	tests := []struct {
		name           string
		weapon, armor  int
		minDmg, maxDmg int
	}{
		{"sword vs cloth", 1, 1, 0, 9},
		{"axe vs cloth", 3, 1, 12, 29},
		{"fist vs plate", 1, 6, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				d := e.CalcDamage(tt.weapon, tt.armor)
				if d < tt.minDmg || d > tt.maxDmg {
					t.Fatalf("damage %d outside [%d,%d]", d, tt.minDmg, tt.maxDmg)
				}
			}
		})
	}
}

func TestProgression(t *testing.T) {
	e := newTestEngine(t, "")
	if got := e.CalcRegen(100); got != 4 {
		t.Errorf("CalcRegen(100) = %d, want 4", got)
	}
	if got := e.XPForLevel(1); got != 50 {
		t.Errorf("XPForLevel(1) = %d, want 50", got)
	}
	tests := []struct{ xp, level int }{
		{0, 1},
		{49, 1},
		{50, 2},
		{50 + 120, 3},
	}
	for _, tt := range tests {
		if got := e.LevelFromXP(tt.xp); got != tt.level {
			t.Errorf("LevelFromXP(%d) = %d, want %d", tt.xp, got, tt.level)
		}
	}
	if got := e.KillXP(2, 1, 10); got != 1 {
		t.Errorf("KillXP floor = %d, want 1", got)
	}
}

func TestScriptOverride(t *testing.T) {
	dir := t.TempDir()
	src := "function calc_regen(max_hp) return 7 end\n"
	if err := os.WriteFile(filepath.Join(dir, "custom.lua"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)
	if got := e.CalcRegen(100); got != 7 {
		t.Errorf("override not applied: %d", got)
	}
}

func TestBrokenScriptFallsBack(t *testing.T) {
	dir := t.TempDir()
	src := "function kill_xp() error('boom') end\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.lua"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, dir)
	if got := e.KillXP(9, 1, 1); got != 9 {
		t.Errorf("fallback = %d, want mob xp 9", got)
	}
}

func TestBadScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Fatal("expected load error")
	}
}
