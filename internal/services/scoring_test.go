package services

import (
	"testing"

	"pursetto/internal/core"
)

func intPtr(v int) *int { return &v }

func mustKey(t *testing.T, s string) core.PeriodKey {
	t.Helper()
	pk, err := core.ParsePeriodKey(s)
	if err != nil {
		t.Fatalf("ParsePeriodKey(%q): %v", s, err)
	}
	return pk
}

func TestStreakTransition(t *testing.T) {
	tests := []struct {
		name     string
		last     *int
		length   int
		key      string
		want     int
		extended bool
	}{
		{name: "first ever activity", last: nil, length: 0, key: "day-3", want: 1, extended: false},
		{name: "repeat in same period", last: intPtr(3), length: 4, key: "day-3", want: 4, extended: false},
		{name: "next period extends", last: intPtr(3), length: 4, key: "day-4", want: 5, extended: true},
		{name: "gap restarts", last: intPtr(3), length: 4, key: "day-5", want: 1, extended: false},
		{name: "backward activity restarts", last: intPtr(3), length: 4, key: "day-2", want: 1, extended: false},
		{name: "extension from length one", last: intPtr(1), length: 1, key: "day-2", want: 2, extended: true},
		{name: "day wrap extends", last: intPtr(7), length: 2, key: "day-1", want: 3, extended: true},
		{name: "day wrap with gap restarts", last: intPtr(6), length: 2, key: "day-1", want: 1, extended: false},
		{name: "month rollover extends", last: intPtr(mustKeyIdx(t, "2026-12")), length: 1, key: "2027-01", want: 2, extended: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pk := mustKey(t, tt.key)
			got, extended := streakTransition(tt.last, tt.length, pk)
			if got != tt.want || extended != tt.extended {
				t.Errorf("streakTransition(%v, %d, %s) = (%d, %v), want (%d, %v)",
					tt.last, tt.length, tt.key, got, extended, tt.want, tt.extended)
			}
		})
	}
}

func mustKeyIdx(t *testing.T, s string) int {
	t.Helper()
	return mustKey(t, s).Index()
}

func TestWillBreakStreak(t *testing.T) {
	tests := []struct {
		name   string
		last   *int
		length int
		next   string
		want   bool
	}{
		{name: "no streak never breaks", last: nil, length: 0, next: "day-5", want: false},
		{name: "zero length never breaks", last: intPtr(2), length: 0, next: "day-5", want: false},
		{name: "moving into the successor is safe", last: intPtr(2), length: 3, next: "day-3", want: false},
		{name: "moving into the last active period is safe", last: intPtr(2), length: 3, next: "day-2", want: false},
		{name: "skipping past the successor breaks", last: intPtr(2), length: 3, next: "day-4", want: true},
		{name: "wrap into the successor is safe", last: intPtr(7), length: 2, next: "day-1", want: false},
		{name: "wrap past the successor breaks", last: intPtr(7), length: 2, next: "day-2", want: true},
		{name: "month skip breaks", last: intPtr(mustKeyIdx(t, "2026-03")), length: 2, next: "2026-05", want: true},
		{name: "earlier month is safe", last: intPtr(mustKeyIdx(t, "2026-03")), length: 2, next: "2026-01", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := mustKey(t, tt.next)
			if got := willBreakStreak(tt.last, tt.length, next); got != tt.want {
				t.Errorf("willBreakStreak(%v, %d, %s) = %v, want %v",
					tt.last, tt.length, tt.next, got, tt.want)
			}
		})
	}
}

func TestActivityAward(t *testing.T) {
	tun := DefaultTuning()

	if got := tun.activityAward(1, false); got != 10 {
		t.Errorf("base award = %d, want 10", got)
	}
	if got := tun.activityAward(3, true); got != 25 {
		t.Errorf("extended award at length 3 = %d, want 25", got)
	}
	// A restart lands on length 1 and never earns the bonus.
	if got := tun.activityAward(1, true); got != 10 {
		t.Errorf("award at length 1 = %d, want 10", got)
	}
	// Repeat activity in the same period keeps the length but the
	// streak was not extended, so no bonus either.
	if got := tun.activityAward(5, false); got != 10 {
		t.Errorf("non-extended award at length 5 = %d, want 10", got)
	}
}
