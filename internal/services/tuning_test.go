package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTuningMissingFileUsesDefaults(t *testing.T) {
	got, err := LoadTuning(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	want := DefaultTuning()
	if got.BaseXP != want.BaseXP || got.RollingWindow != want.RollingWindow {
		t.Errorf("got %+v, want defaults %+v", got, want)
	}
}

func TestLoadTuningOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	body := `
base_xp = 20
notify_display_ms = 1000

[goal_rewards]
"no-spend-3of7" = 80
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if got.BaseXP != 20 {
		t.Errorf("BaseXP = %d, want 20", got.BaseXP)
	}
	if got.NotifyDisplayMs != 1000 {
		t.Errorf("NotifyDisplayMs = %d, want 1000", got.NotifyDisplayMs)
	}
	// Untouched keys keep their defaults.
	if got.StreakBonusPerStep != 5 {
		t.Errorf("StreakBonusPerStep = %d, want 5", got.StreakBonusPerStep)
	}
	if got.GoalRewards["no-spend-3of7"] != 80 {
		t.Errorf("GoalRewards = %v, want no-spend-3of7=80", got.GoalRewards)
	}
}

func TestLoadTuningRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	if err := os.WriteFile(path, []byte("base_xp = -5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Error("expected validation error for negative base_xp")
	}
}

func TestTuningValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tuning)
		ok     bool
	}{
		{name: "defaults are valid", mutate: func(*Tuning) {}, ok: true},
		{name: "zero base xp", mutate: func(t *Tuning) { t.BaseXP = 0 }, ok: false},
		{name: "negative streak bonus", mutate: func(t *Tuning) { t.StreakBonusPerStep = -1 }, ok: false},
		{name: "empty thresholds", mutate: func(t *Tuning) { t.LevelThresholds = nil }, ok: false},
		{name: "non-ascending thresholds", mutate: func(t *Tuning) { t.LevelThresholds = []int64{0, 100, 100} }, ok: false},
		{name: "zero window", mutate: func(t *Tuning) { t.RollingWindow = 0 }, ok: false},
		{name: "negative gap", mutate: func(t *Tuning) { t.NotifyGapMs = -1 }, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tun := DefaultTuning()
			tt.mutate(&tun)
			err := tun.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, wanted ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLevelForXP(t *testing.T) {
	tun := DefaultTuning()
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{500, 4},
		{999, 4},
		{1000, 5},
		{50000, 5},
	}
	for _, tt := range tests {
		if got := tun.LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}
