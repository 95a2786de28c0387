package services

import (
	"pursetto/internal/core"
)

// GoalPreset is one of the fixed goal predicates. RewardXP can be
// overridden per preset from the tuning file.
type GoalPreset struct {
	Ref         core.GoalRef
	Name        string
	Description string
	RewardXP    int64

	// Predicate parameters; which ones apply depends on the preset.
	MinNoSpend     int
	Tier           int
	ThresholdCents int64
}

const (
	GoalNoSpend3of7  core.GoalRef = "no-spend-3of7"
	GoalReachTier3   core.GoalRef = "reach-tier-3"
	GoalAverageUnder core.GoalRef = "average-under"
)

// goalPresets is the fixed catalog, in display order.
var goalPresets = []GoalPreset{
	{
		Ref:         GoalNoSpend3of7,
		Name:        "Spending Freeze",
		Description: "Mark at least 3 no-spend periods within the last 7.",
		RewardXP:    50,
		MinNoSpend:  3,
	},
	{
		Ref:         GoalReachTier3,
		Name:        "Seasoned Saver",
		Description: "Reach level 3.",
		RewardXP:    100,
		Tier:        3,
	},
	{
		Ref:            GoalAverageUnder,
		Name:           "Steady Hand",
		Description:    "Keep the average period spend under 20.00 across the last 7 periods.",
		RewardXP:       75,
		ThresholdCents: 2000,
	},
}

// Presets returns the preset catalog with tuning reward overrides
// applied.
func (e *Engine) Presets() []GoalPreset {
	out := make([]GoalPreset, len(goalPresets))
	copy(out, goalPresets)
	for i := range out {
		if xp, ok := e.tuning.GoalRewards[string(out[i].Ref)]; ok && xp > 0 {
			out[i].RewardXP = xp
		}
	}
	return out
}

func (e *Engine) preset(ref core.GoalRef) (GoalPreset, bool) {
	for _, p := range e.Presets() {
		if p.Ref == ref {
			return p, true
		}
	}
	return GoalPreset{}, false
}

// goalSatisfied evaluates the preset predicate against current
// ledger/profile state.
func (e *Engine) goalSatisfied(p GoalPreset, prof core.Profile) bool {
	switch p.Ref {
	case GoalNoSpend3of7:
		return e.ledger.NoSpendCount(e.tuning.RollingWindow) >= p.MinNoSpend
	case GoalReachTier3:
		return e.tuning.LevelForXP(prof.XP) >= p.Tier
	case GoalAverageUnder:
		if len(e.ledger.Keys()) == 0 {
			return false
		}
		return e.ledger.RollingAverage(e.tuning.RollingWindow).Cents < p.ThresholdCents
	default:
		return false
	}
}
