// Package services wires the stores into the engagement engine: every
// public operation the presentation layer may call lives here. The
// engine owns all mutable state behind one mutex, so operations run to
// completion without interleaving.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pursetto/internal/core"
	"pursetto/internal/docstore"
	"pursetto/internal/favourites"
	"pursetto/internal/ledger"
	"pursetto/internal/notify"
	"pursetto/internal/obs"
	"pursetto/internal/profile"
)

// Engine is the explicit context object owning ledger, profile,
// favourites and the notification sequencer.
type Engine struct {
	mu      sync.Mutex
	tuning  Tuning
	ledger  *ledger.Store
	profile *profile.Store
	favs    *favourites.Registry
	seq     *notify.Sequencer

	now func() time.Time
}

// NewEngine loads all three documents through the port and builds the
// engine. Corrupt or missing documents degrade to empty defaults.
func NewEngine(ctx context.Context, port docstore.Port, tuning Tuning, sink notify.Sink) *Engine {
	return &Engine{
		tuning:  tuning,
		ledger:  ledger.Load(ctx, port),
		profile: profile.Load(ctx, port),
		favs:    favourites.Load(ctx, port),
		seq:     notify.NewSequencer(sink, tuning.NotifyGap()),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Close stops notification playback.
func (e *Engine) Close() {
	e.seq.Close()
}

// AddExpense records a purchase in the given period. Adding to a
// no-spend period clears the mark and revokes the XP it granted before
// the add itself is scored.
func (e *Engine) AddExpense(ctx context.Context, key string, amount core.Money, category core.Category) (core.Expense, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pk, err := core.ParsePeriodKey(key)
	if err != nil {
		obs.Operation("add_expense", err)
		return core.Expense{}, err
	}
	exp, clearedNoSpend, err := e.ledger.AddExpense(ctx, key, amount, category)
	obs.Operation("add_expense", err)
	if err != nil {
		return core.Expense{}, err
	}
	if clearedNoSpend {
		e.profile.AdjustXP(ctx, -e.tuning.BaseXP)
	}
	e.enqueue(e.scoreActivity(ctx, pk))
	return exp, nil
}

// EditExpense rewrites amount and category of an existing expense and
// propagates the change into any favourite pointing at it.
func (e *Engine) EditExpense(ctx context.Context, key string, id int64, amount core.Money, category core.Category) (core.Expense, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := core.ParsePeriodKey(key); err != nil {
		obs.Operation("edit_expense", err)
		return core.Expense{}, err
	}
	exp, err := e.ledger.EditExpense(ctx, key, id, amount, category)
	obs.Operation("edit_expense", err)
	if err != nil {
		return core.Expense{}, err
	}
	e.favs.SyncExpense(ctx, key, exp)
	e.enqueue(e.goalCheck(ctx))
	return exp, nil
}

// DeleteExpense removes an expense; a missing id is a no-op. A real
// deletion takes back the base XP its add once granted, floored at
// zero. Favourites pointing at the expense survive as snapshots.
func (e *Engine) DeleteExpense(ctx context.Context, key string, id int64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := core.ParsePeriodKey(key); err != nil {
		obs.Operation("delete_expense", err)
		return false, err
	}
	deleted := e.ledger.DeleteExpense(ctx, key, id)
	obs.Operation("delete_expense", nil)
	if deleted {
		e.profile.AdjustXP(ctx, -e.tuning.BaseXP)
		e.enqueue(e.goalCheck(ctx))
	}
	return deleted, nil
}

// MarkNoSpend declares the period spend-free and scores it like any
// other qualifying activity.
func (e *Engine) MarkNoSpend(ctx context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pk, err := core.ParsePeriodKey(key)
	if err != nil {
		obs.Operation("mark_no_spend", err)
		return err
	}
	err = e.ledger.MarkNoSpend(ctx, key)
	obs.Operation("mark_no_spend", err)
	if err != nil {
		return err
	}
	e.enqueue(e.scoreActivity(ctx, pk))
	return nil
}

// ClearPeriod wipes one period's expenses. The caller must have
// confirmed; pending announcements reference state that no longer
// exists and are cancelled.
func (e *Engine) ClearPeriod(ctx context.Context, key string, confirmed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !confirmed {
		obs.Operation("clear_period", core.ErrConfirmRequired)
		return core.ErrConfirmRequired
	}
	if _, err := core.ParsePeriodKey(key); err != nil {
		obs.Operation("clear_period", err)
		return err
	}
	e.seq.CancelAll()
	e.ledger.ClearAll(ctx, key)
	obs.Operation("clear_period", nil)
	e.enqueue(e.goalCheck(ctx))
	return nil
}

// Reset wipes every document back to its default state. Irreversible
// once confirmed; pending announcements are cancelled.
func (e *Engine) Reset(ctx context.Context, confirmed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !confirmed {
		obs.Operation("reset", core.ErrConfirmRequired)
		return core.ErrConfirmRequired
	}
	e.seq.CancelAll()
	e.ledger.Reset(ctx)
	e.profile.Reset(ctx)
	e.favs.Reset(ctx)
	obs.Operation("reset", nil)
	return nil
}

// Navigate moves the period cursor. Backward moves never touch the
// streak. A forward move that would skip past an unfulfilled
// lastActive+1 with a nonzero streak requires confirmBreak; confirming
// zeroes the streak and clears the last active period.
func (e *Engine) Navigate(ctx context.Context, from string, forward, confirmBreak bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pk, err := core.ParsePeriodKey(from)
	if err != nil {
		obs.Operation("navigate", err)
		return "", err
	}
	if !forward {
		obs.Operation("navigate", nil)
		return pk.Prev().String(), nil
	}

	next := pk.Next()
	prof := e.profile.Get()
	if willBreakStreak(prof.LastActivePeriod, prof.StreakLength, next) {
		if !confirmBreak {
			obs.Operation("navigate", core.ErrConfirmRequired)
			return "", core.ErrConfirmRequired
		}
		e.seq.CancelAll()
		e.profile.SetStreak(ctx, 0, nil)
	}
	obs.Operation("navigate", nil)
	return next.String(), nil
}

// SetAllowance updates the allowance amount and mode.
func (e *Engine) SetAllowance(ctx context.Context, amount core.Money, mode core.AllowanceMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.profile.SetAllowance(ctx, amount, mode)
	obs.Operation("set_allowance", err)
	return err
}

// ActivateGoal selects a preset as the active goal and evaluates it
// immediately, so an already-satisfied predicate completes on the
// spot. A preset that was completed before cannot be activated again.
func (e *Engine) ActivateGoal(ctx context.Context, ref core.GoalRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.preset(ref)
	if !ok {
		obs.Operation("activate_goal", core.ErrUnknownGoal)
		return fmt.Errorf("%w: %s", core.ErrUnknownGoal, ref)
	}
	prof := e.profile.Get()
	if prof.Completed(p.Ref) {
		obs.Operation("activate_goal", core.ErrGoalCompleted)
		return fmt.Errorf("%w: %s", core.ErrGoalCompleted, ref)
	}
	e.profile.SetActiveGoal(ctx, p.Ref)
	obs.Operation("activate_goal", nil)
	e.enqueue(e.goalCheck(ctx))
	return nil
}

// SaveFavourite snapshots an existing expense under the composite key
// of its owning period.
func (e *Engine) SaveFavourite(ctx context.Context, periodKey string, id int64, displayName string) (core.Favourite, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := core.ParsePeriodKey(periodKey); err != nil {
		obs.Operation("save_favourite", err)
		return core.Favourite{}, err
	}
	exp, ok := e.ledger.Period(periodKey).Find(id)
	if !ok {
		obs.Operation("save_favourite", core.ErrNotFound)
		return core.Favourite{}, fmt.Errorf("%w: id %d in period %s", core.ErrNotFound, id, periodKey)
	}
	f, err := e.favs.Save(ctx, periodKey, exp, displayName)
	obs.Operation("save_favourite", err)
	return f, err
}

// RemoveFavourite deletes the favourite under the composite key.
func (e *Engine) RemoveFavourite(ctx context.Context, key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.favs.Remove(ctx, key)
	obs.Operation("remove_favourite", nil)
	return removed
}

// Favourites lists every favourite ordered by key.
func (e *Engine) Favourites() []core.Favourite {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.favs.List()
}

// ReifyFavourite adds a fresh expense into the currently active period
// from the favourite's snapshot, then re-points the favourite at the
// new expense. The add is scored like any qualifying activity.
func (e *Engine) ReifyFavourite(ctx context.Context, favKey, activeKey string) (core.Expense, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pk, err := core.ParsePeriodKey(activeKey)
	if err != nil {
		obs.Operation("reify_favourite", err)
		return core.Expense{}, err
	}
	f, ok := e.favs.Get(favKey)
	if !ok {
		obs.Operation("reify_favourite", core.ErrNotFound)
		return core.Expense{}, fmt.Errorf("%w: favourite %s", core.ErrNotFound, favKey)
	}
	exp, clearedNoSpend, err := e.ledger.AddExpense(ctx, activeKey, f.Amount, f.Category)
	if err != nil {
		obs.Operation("reify_favourite", err)
		return core.Expense{}, err
	}
	if clearedNoSpend {
		e.profile.AdjustXP(ctx, -e.tuning.BaseXP)
	}
	if _, err := e.favs.Repoint(ctx, favKey, activeKey, exp.ID); err != nil {
		obs.Operation("reify_favourite", err)
		return core.Expense{}, err
	}
	obs.Operation("reify_favourite", nil)
	e.enqueue(e.scoreActivity(ctx, pk))
	return exp, nil
}

// GoalStatus describes one preset for display.
type GoalStatus struct {
	Preset    GoalPreset
	Active    bool
	Completed bool
}

// Goals returns the catalog annotated with the profile's state.
func (e *Engine) Goals() []GoalStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	prof := e.profile.Get()
	presets := e.Presets()
	out := make([]GoalStatus, len(presets))
	for i, p := range presets {
		out[i] = GoalStatus{
			Preset:    p,
			Active:    prof.ActiveGoal == p.Ref,
			Completed: prof.Completed(p.Ref),
		}
	}
	return out
}

// PeriodSummary is the read model for one period.
type PeriodSummary struct {
	Key                string                       `json:"key"`
	Expenses           []core.Expense               `json:"expenses"`
	CategoryTotals     map[core.Category]core.Money `json:"categoryTotals"`
	NoSpending         bool                         `json:"noSpending"`
	PeriodTotal        core.Money                   `json:"periodTotal"`
	AllowanceRemaining core.Money                   `json:"allowanceRemaining"`
	RollingAverage     core.Money                   `json:"rollingAverage"`
	GlobalSpent        core.Money                   `json:"globalSpent"`
	Profile            core.Profile                 `json:"profile"`
	Level              int                          `json:"level"`
}

// Summary builds the read model the presentation layer renders from.
func (e *Engine) Summary(key string) (PeriodSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := core.ParsePeriodKey(key); err != nil {
		return PeriodSummary{}, err
	}
	pl := e.ledger.Period(key)
	prof := e.profile.Get()
	rolling := e.ledger.RollingAverage(e.tuning.RollingWindow)

	totals := make(map[core.Category]core.Money, len(pl.CategoryTotals))
	for c, m := range pl.CategoryTotals {
		totals[c] = m
	}
	return PeriodSummary{
		Key:                key,
		Expenses:           append([]core.Expense(nil), pl.Expenses...),
		CategoryTotals:     totals,
		NoSpending:         pl.NoSpending,
		PeriodTotal:        pl.Total(),
		AllowanceRemaining: e.profile.AllowanceRemaining(pl.Total(), rolling),
		RollingAverage:     rolling,
		GlobalSpent:        e.ledger.GlobalSpent(),
		Profile:            prof,
		Level:              e.tuning.LevelForXP(prof.XP),
	}, nil
}

// Profile returns a copy of the profile plus the derived level.
func (e *Engine) Profile() (core.Profile, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.profile.Get()
	return p, e.tuning.LevelForXP(p.XP)
}

// PendingAnnouncements reports how many reward announcements wait for
// their display window.
func (e *Engine) PendingAnnouncements() int {
	return e.seq.Pending()
}

// scoreActivity applies the streak transition and XP award for one
// qualifying activity in period pk, runs the goal evaluation and
// returns the announcement batch in priority order.
func (e *Engine) scoreActivity(ctx context.Context, pk core.PeriodKey) []notify.Announcement {
	prof := e.profile.Get()
	levelBefore := e.tuning.LevelForXP(prof.XP)

	newLen, extended := streakTransition(prof.LastActivePeriod, prof.StreakLength, pk)
	idx := pk.Index()
	e.profile.SetStreak(ctx, newLen, &idx)

	award := e.tuning.activityAward(newLen, extended)
	xpAfter := e.profile.AdjustXP(ctx, award)
	obs.XPAwarded(award)

	anns := []notify.Announcement{{
		Kind:     notify.KindXP,
		Title:    "XP earned",
		Body:     fmt.Sprintf("+%d XP", award),
		Duration: e.tuning.NotifyDisplay(),
	}}

	if done := e.evaluateGoal(ctx); done != nil {
		anns = append(anns, notify.Announcement{
			Kind:     notify.KindGoal,
			Title:    "Goal complete",
			Body:     fmt.Sprintf("%s (+%d XP)", done.Name, done.RewardXP),
			Duration: e.tuning.NotifyDisplay(),
		})
		xpAfter = e.profile.Get().XP
	}

	if extended && newLen > 1 {
		anns = append(anns, notify.Announcement{
			Kind:     notify.KindStreak,
			Title:    "Streak extended",
			Body:     fmt.Sprintf("%d periods in a row", newLen),
			Duration: e.tuning.NotifyDisplay(),
		})
	}

	if levelAfter := e.tuning.LevelForXP(xpAfter); levelAfter > levelBefore {
		anns = append(anns, notify.Announcement{
			Kind:     notify.KindLevelUp,
			Title:    "Level up",
			Body:     fmt.Sprintf("Reached level %d", levelAfter),
			Duration: e.tuning.NotifyDisplay(),
		})
	}
	return anns
}

// goalCheck runs the goal evaluation after a mutation that is not
// itself a qualifying activity (edit, delete, clear). A completion
// still announces, including a level-up if the reward crossed a tier.
func (e *Engine) goalCheck(ctx context.Context) []notify.Announcement {
	levelBefore := e.tuning.LevelForXP(e.profile.Get().XP)
	done := e.evaluateGoal(ctx)
	if done == nil {
		return nil
	}
	anns := []notify.Announcement{{
		Kind:     notify.KindGoal,
		Title:    "Goal complete",
		Body:     fmt.Sprintf("%s (+%d XP)", done.Name, done.RewardXP),
		Duration: e.tuning.NotifyDisplay(),
	}}
	if levelAfter := e.tuning.LevelForXP(e.profile.Get().XP); levelAfter > levelBefore {
		anns = append(anns, notify.Announcement{
			Kind:     notify.KindLevelUp,
			Title:    "Level up",
			Body:     fmt.Sprintf("Reached level %d", levelAfter),
			Duration: e.tuning.NotifyDisplay(),
		})
	}
	return anns
}

// evaluateGoal checks the active preset. A preset already in the
// completed list is cleared without a second reward.
func (e *Engine) evaluateGoal(ctx context.Context) *GoalPreset {
	prof := e.profile.Get()
	if prof.ActiveGoal == "" {
		return nil
	}
	p, ok := e.preset(prof.ActiveGoal)
	if !ok {
		e.profile.SetActiveGoal(ctx, "")
		return nil
	}
	if prof.Completed(p.Ref) {
		e.profile.SetActiveGoal(ctx, "")
		return nil
	}
	if !e.goalSatisfied(p, prof) {
		return nil
	}
	e.profile.AdjustXP(ctx, p.RewardXP)
	e.profile.CompleteGoal(ctx, p.Ref, p.RewardXP, e.now())
	obs.XPAwarded(p.RewardXP)
	return &p
}

func (e *Engine) enqueue(anns []notify.Announcement) {
	if len(anns) == 0 {
		return
	}
	for _, a := range anns {
		obs.Announcement(string(a.Kind))
	}
	e.seq.Enqueue(anns...)
}
