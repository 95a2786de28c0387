package services

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Tuning collects the gamification numbers: XP amounts, the level
// table, goal rewards and notification timing. Values ship with
// defaults and can be overridden from a TOML file.
type Tuning struct {
	BaseXP             int64   `toml:"base_xp"`
	StreakBonusPerStep int64   `toml:"streak_bonus_per_step"`
	LevelThresholds    []int64 `toml:"level_thresholds"`
	RollingWindow      int     `toml:"rolling_window"`

	GoalRewards map[string]int64 `toml:"goal_rewards,omitempty"`

	NotifyDisplayMs int `toml:"notify_display_ms"`
	NotifyGapMs     int `toml:"notify_gap_ms"`
}

// DefaultTuning returns the shipped numbers: five ascending level
// tiers and a 7-period rolling window.
func DefaultTuning() Tuning {
	return Tuning{
		BaseXP:             10,
		StreakBonusPerStep: 5,
		LevelThresholds:    []int64{0, 100, 250, 500, 1000},
		RollingWindow:      7,
		NotifyDisplayMs:    2500,
		NotifyGapMs:        400,
	}
}

// LoadTuning reads overrides from path, returning defaults when the
// file does not exist.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := toml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parsing tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate rejects tuning values the scoring engine cannot work with.
func (t Tuning) Validate() error {
	if t.BaseXP <= 0 {
		return fmt.Errorf("base_xp must be positive, got %d", t.BaseXP)
	}
	if t.StreakBonusPerStep < 0 {
		return fmt.Errorf("streak_bonus_per_step must not be negative, got %d", t.StreakBonusPerStep)
	}
	if len(t.LevelThresholds) == 0 {
		return fmt.Errorf("level_thresholds must not be empty")
	}
	for i := 1; i < len(t.LevelThresholds); i++ {
		if t.LevelThresholds[i] <= t.LevelThresholds[i-1] {
			return fmt.Errorf("level_thresholds must be strictly ascending at index %d", i)
		}
	}
	if t.RollingWindow <= 0 {
		return fmt.Errorf("rolling_window must be positive, got %d", t.RollingWindow)
	}
	if t.NotifyDisplayMs < 0 || t.NotifyGapMs < 0 {
		return fmt.Errorf("notification timings must not be negative")
	}
	return nil
}

// NotifyDisplay returns the announcement display window.
func (t Tuning) NotifyDisplay() time.Duration {
	return time.Duration(t.NotifyDisplayMs) * time.Millisecond
}

// NotifyGap returns the pause between announcement windows.
func (t Tuning) NotifyGap() time.Duration {
	return time.Duration(t.NotifyGapMs) * time.Millisecond
}

// LevelForXP maps cumulative XP onto the tier table: the highest tier
// whose threshold has been reached, counted from 1.
func (t Tuning) LevelForXP(xp int64) int {
	level := 1
	for i, threshold := range t.LevelThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}
