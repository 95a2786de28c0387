package profile

import (
	"context"
	"testing"
	"time"

	"pursetto/internal/core"
	"pursetto/internal/docstore"
	"pursetto/internal/docstore/memory"
)

func TestDefaults(t *testing.T) {
	s := Load(context.Background(), memory.New())
	p := s.Get()
	if p.AllowanceMode != core.AllowancePerPeriod || p.XP != 0 || p.StreakLength != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.LastActivePeriod != nil || p.ActiveGoal != "" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestXPFlooredAtZero(t *testing.T) {
	s := Load(context.Background(), memory.New())
	ctx := context.Background()

	if got := s.AdjustXP(ctx, 25); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := s.AdjustXP(ctx, -100); got != 0 {
		t.Fatalf("expected XP floored at 0, got %d", got)
	}
	if got := s.AdjustXP(ctx, 10); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestSetAllowanceValidation(t *testing.T) {
	s := Load(context.Background(), memory.New())
	ctx := context.Background()

	if err := s.SetAllowance(ctx, core.Money{Cents: -1}, core.AllowancePerPeriod); err == nil {
		t.Fatalf("expected error for negative allowance")
	}
	if err := s.SetAllowance(ctx, core.Money{Cents: 5000}, "weekly"); err == nil {
		t.Fatalf("expected error for bad mode")
	}
	if err := s.SetAllowance(ctx, core.Money{Cents: 5000}, core.AllowanceAveraged); err != nil {
		t.Fatalf("set allowance: %v", err)
	}
	if got := s.Get(); got.AllowanceAmount.Cents != 5000 || got.AllowanceMode != core.AllowanceAveraged {
		t.Fatalf("allowance not applied: %+v", got)
	}
}

func TestAllowanceRemainingModes(t *testing.T) {
	s := Load(context.Background(), memory.New())
	ctx := context.Background()

	s.SetAllowance(ctx, core.Money{Cents: 10000}, core.AllowancePerPeriod)
	got := s.AllowanceRemaining(core.Money{Cents: 4000}, core.Money{Cents: 9000})
	if got.Cents != 6000 {
		t.Fatalf("per-period remaining expected 6000, got %d", got.Cents)
	}

	s.SetAllowance(ctx, core.Money{Cents: 10000}, core.AllowanceAveraged)
	got = s.AllowanceRemaining(core.Money{Cents: 4000}, core.Money{Cents: 9000})
	if got.Cents != 1000 {
		t.Fatalf("averaged remaining expected 1000, got %d", got.Cents)
	}

	// Overspend goes negative rather than clamping.
	got = s.AllowanceRemaining(core.Money{Cents: 0}, core.Money{Cents: 12000})
	if got.Cents != -2000 {
		t.Fatalf("expected -2000, got %d", got.Cents)
	}
}

func TestWriteThroughAndReload(t *testing.T) {
	port := memory.New()
	ctx := context.Background()

	s := Load(ctx, port)
	s.AdjustXP(ctx, 120)
	last := 4
	s.SetStreak(ctx, 3, &last)
	s.SetActiveGoal(ctx, "no-spend-3of7")
	s.AdjustXP(ctx, 50)
	s.CompleteGoal(ctx, "no-spend-3of7", 50, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	reloaded := Load(ctx, port)
	p := reloaded.Get()
	if p.XP != 170 {
		t.Fatalf("expected XP 170 after goal reward, got %d", p.XP)
	}
	if p.StreakLength != 3 || p.LastActivePeriod == nil || *p.LastActivePeriod != 4 {
		t.Fatalf("streak state lost: %+v", p)
	}
	if p.ActiveGoal != "" || len(p.CompletedGoals) != 1 || p.CompletedGoals[0].Preset != "no-spend-3of7" {
		t.Fatalf("goal state lost: %+v", p)
	}
}

func TestLoadCorruptFallsBack(t *testing.T) {
	port := memory.NewSeeded(map[string][]byte{
		docstore.DocProfileSettings: []byte(`[broken`),
	})
	s := Load(context.Background(), port)
	if p := s.Get(); p.XP != 0 || p.AllowanceMode != core.AllowancePerPeriod {
		t.Fatalf("expected defaults after corrupt load: %+v", p)
	}
}
