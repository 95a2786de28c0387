package services

import "pursetto/internal/core"

// streakTransition applies the streak rule for qualifying activity in
// period p and reports whether the streak was extended.
//
// Repeat activity inside the same period leaves the streak alone;
// activity in the immediately following period extends it; any gap
// restarts at 1. Succession follows the keyspace, so the day-7 to
// day-1 wrap extends just like any other step.
func streakTransition(last *int, length int, p core.PeriodKey) (int, bool) {
	switch {
	case last == nil:
		return 1, false
	case p.Index() == *last:
		return length, false
	case p.Prev().Index() == *last:
		return length + 1, true
	default:
		return 1, false
	}
}

// willBreakStreak reports whether navigating to next would skip past
// the successor of the last active period with a nonzero streak
// unfulfilled. The caller must confirm before such a move; confirming
// zeroes the streak.
//
// Moving into the last active period or its successor is always safe.
// In month mode earlier periods are also safe. Day slots cycle, so
// any other forward step loses the streak.
func willBreakStreak(last *int, length int, next core.PeriodKey) bool {
	if length == 0 || last == nil {
		return false
	}
	if next.Index() == *last || next.Prev().Index() == *last {
		return false
	}
	if next.Mode == core.ModeMonth {
		return next.Index() > *last
	}
	return true
}

// activityAward computes the XP granted for one qualifying activity:
// the base amount, plus the streak bonus when the streak was just
// extended beyond length one.
func (t Tuning) activityAward(streakLength int, extended bool) int64 {
	xp := t.BaseXP
	if extended && streakLength > 1 {
		xp += t.StreakBonusPerStep * int64(streakLength)
	}
	return xp
}
