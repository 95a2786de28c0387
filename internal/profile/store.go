// Package profile holds the global profile document: allowance
// settings and the scoring state the engagement engine mutates.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pursetto/internal/core"
	"pursetto/internal/docstore"
)

// Store owns the profile singleton. Like the ledger store it relies on
// the engine for serialization.
type Store struct {
	port docstore.Port
	p    core.Profile
}

func defaults() core.Profile {
	return core.Profile{
		AllowanceMode:  core.AllowancePerPeriod,
		CompletedGoals: []core.CompletedGoal{},
	}
}

// Load reads the profile-settings document, falling back to defaults
// when it is missing or corrupt.
func Load(ctx context.Context, port docstore.Port) *Store {
	s := &Store{port: port, p: defaults()}

	body, err := port.Load(ctx, docstore.DocProfileSettings)
	if err != nil {
		if !errors.Is(err, docstore.ErrNoDocument) {
			slog.WarnContext(ctx, "Failed loading profile, using defaults", "error", err)
		}
		return s
	}
	var p core.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		slog.WarnContext(ctx, "Corrupt profile document, using defaults", "error", err)
		return s
	}
	if !p.AllowanceMode.IsValid() {
		p.AllowanceMode = core.AllowancePerPeriod
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.CompletedGoals == nil {
		p.CompletedGoals = []core.CompletedGoal{}
	}
	s.p = p
	return s
}

// Get returns a copy of the profile.
func (s *Store) Get() core.Profile {
	p := s.p
	if p.LastActivePeriod != nil {
		v := *p.LastActivePeriod
		p.LastActivePeriod = &v
	}
	p.CompletedGoals = append([]core.CompletedGoal(nil), s.p.CompletedGoals...)
	return p
}

// SetAllowance updates the allowance amount and mode.
func (s *Store) SetAllowance(ctx context.Context, amount core.Money, mode core.AllowanceMode) error {
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if !mode.IsValid() {
		return fmt.Errorf("invalid allowance mode %q", mode)
	}
	s.p.AllowanceAmount = amount
	s.p.AllowanceMode = mode
	s.persist(ctx)
	slog.InfoContext(ctx, "Allowance updated", "amount_cents", amount.Cents, "mode", string(mode))
	return nil
}

// AdjustXP applies a delta and floors the result at zero. It returns
// the XP value after the adjustment.
func (s *Store) AdjustXP(ctx context.Context, delta int64) int64 {
	s.p.XP += delta
	if s.p.XP < 0 {
		s.p.XP = 0
	}
	s.persist(ctx)
	return s.p.XP
}

// SetStreak records the streak state after a transition.
func (s *Store) SetStreak(ctx context.Context, length int, lastActive *int) {
	s.p.StreakLength = length
	if lastActive == nil {
		s.p.LastActivePeriod = nil
	} else {
		v := *lastActive
		s.p.LastActivePeriod = &v
	}
	s.persist(ctx)
}

// SetActiveGoal points the profile at a preset; empty clears it.
func (s *Store) SetActiveGoal(ctx context.Context, ref core.GoalRef) {
	s.p.ActiveGoal = ref
	s.persist(ctx)
}

// CompleteGoal appends the completion record and clears the active
// goal.
func (s *Store) CompleteGoal(ctx context.Context, preset core.GoalRef, xpAwarded int64, at time.Time) {
	s.p.CompletedGoals = append(s.p.CompletedGoals, core.CompletedGoal{
		Preset:      preset,
		XPAwarded:   xpAwarded,
		CompletedAt: at,
	})
	s.p.ActiveGoal = ""
	s.persist(ctx)
	slog.InfoContext(ctx, "Goal completed", "preset", string(preset), "xp_awarded", xpAwarded)
}

// AllowanceRemaining computes the remaining allowance for the active
// period: against the period's own total in per-period mode, against
// the rolling average in averaged mode. The result may be negative.
func (s *Store) AllowanceRemaining(periodTotal, rollingAverage core.Money) core.Money {
	switch s.p.AllowanceMode {
	case core.AllowanceAveraged:
		return core.Money{Cents: s.p.AllowanceAmount.Cents - rollingAverage.Cents}
	default:
		return core.Money{Cents: s.p.AllowanceAmount.Cents - periodTotal.Cents}
	}
}

// Reset restores defaults. Used only by the full engine reset.
func (s *Store) Reset(ctx context.Context) {
	s.p = defaults()
	s.persist(ctx)
	slog.InfoContext(ctx, "Profile reset")
}

func (s *Store) persist(ctx context.Context) {
	body, err := json.Marshal(s.p)
	if err != nil {
		slog.ErrorContext(ctx, "Failed encoding profile", "error", err)
		return
	}
	if err := s.port.Save(ctx, docstore.DocProfileSettings, body); err != nil {
		slog.ErrorContext(ctx, "Failed saving profile", "error", err)
	}
}
