// Package ledger implements the per-period expense store. Every
// mutation keeps the category aggregates exact and is written through
// to the ledger-state document immediately.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"pursetto/internal/core"
	"pursetto/internal/docstore"
)

// Store owns the map of period key to ledger. It is not goroutine-safe
// on its own; the engine serializes access to all stores.
type Store struct {
	port    docstore.Port
	periods map[string]*core.PeriodLedger
}

// Load reads the ledger-state document. A missing or corrupt document
// falls back to an empty state; that is logged, never propagated.
func Load(ctx context.Context, port docstore.Port) *Store {
	s := &Store{port: port, periods: make(map[string]*core.PeriodLedger)}

	body, err := port.Load(ctx, docstore.DocLedgerState)
	if err != nil {
		if !errors.Is(err, docstore.ErrNoDocument) {
			slog.WarnContext(ctx, "Failed loading ledger state, starting empty", "error", err)
		}
		return s
	}
	if err := json.Unmarshal(body, &s.periods); err != nil {
		slog.WarnContext(ctx, "Corrupt ledger state document, starting empty", "error", err)
		s.periods = make(map[string]*core.PeriodLedger)
		return s
	}
	for key, pl := range s.periods {
		if pl == nil {
			s.periods[key] = core.NewPeriodLedger()
			continue
		}
		if pl.CategoryTotals == nil {
			pl.CategoryTotals = map[core.Category]core.Money{}
		}
		if pl.Expenses == nil {
			pl.Expenses = []core.Expense{}
		}
	}
	return s
}

// Period returns the ledger for key, creating a zeroed one on first
// access.
func (s *Store) Period(key string) *core.PeriodLedger {
	pl, ok := s.periods[key]
	if !ok {
		pl = core.NewPeriodLedger()
		s.periods[key] = pl
	}
	return pl
}

// Keys returns every known period key.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.periods))
	for k := range s.periods {
		keys = append(keys, k)
	}
	return keys
}

// AddExpense validates, assigns the next period-local id and appends.
// The second return value reports whether a no-spend mark was cleared
// by this add, so the scoring engine can revoke its award.
func (s *Store) AddExpense(ctx context.Context, key string, amount core.Money, category core.Category) (core.Expense, bool, error) {
	if err := amount.Validate(); err != nil {
		return core.Expense{}, false, err
	}
	if !category.IsValid() {
		return core.Expense{}, false, core.ErrInvalidCategory
	}

	pl := s.Period(key)
	clearedNoSpend := pl.NoSpending
	pl.NoSpending = false

	pl.PurchaseCount++
	e := core.Expense{ID: pl.PurchaseCount, Amount: amount, Category: category}
	pl.Expenses = append(pl.Expenses, e)
	pl.CategoryTotals[category] = core.Money{Cents: pl.CategoryTotals[category].Cents + amount.Cents}

	s.persist(ctx)
	slog.InfoContext(ctx, "Expense added",
		"period", key, "expense_id", e.ID,
		"amount_cents", amount.Cents, "category", category.String(),
		"cleared_no_spend", clearedNoSpend)
	return e, clearedNoSpend, nil
}

// EditExpense atomically moves the amount from the old category bucket
// to the new one. Readers never observe an intermediate state.
func (s *Store) EditExpense(ctx context.Context, key string, id int64, newAmount core.Money, newCategory core.Category) (core.Expense, error) {
	if err := newAmount.Validate(); err != nil {
		return core.Expense{}, err
	}
	if !newCategory.IsValid() {
		return core.Expense{}, core.ErrInvalidCategory
	}

	pl := s.Period(key)
	for i := range pl.Expenses {
		if pl.Expenses[i].ID != id {
			continue
		}
		old := pl.Expenses[i]
		pl.CategoryTotals[old.Category] = core.Money{Cents: pl.CategoryTotals[old.Category].Cents - old.Amount.Cents}
		pl.Expenses[i].Amount = newAmount
		pl.Expenses[i].Category = newCategory
		pl.CategoryTotals[newCategory] = core.Money{Cents: pl.CategoryTotals[newCategory].Cents + newAmount.Cents}

		s.persist(ctx)
		slog.InfoContext(ctx, "Expense edited",
			"period", key, "expense_id", id,
			"amount_cents", newAmount.Cents, "category", newCategory.String())
		return pl.Expenses[i], nil
	}
	return core.Expense{}, fmt.Errorf("%w: id %d in period %s", core.ErrNotFound, id, key)
}

// DeleteExpense removes the expense if present. A missing id is a
// logged no-op, not an error.
func (s *Store) DeleteExpense(ctx context.Context, key string, id int64) bool {
	pl := s.Period(key)
	for i := range pl.Expenses {
		if pl.Expenses[i].ID != id {
			continue
		}
		e := pl.Expenses[i]
		pl.CategoryTotals[e.Category] = core.Money{Cents: pl.CategoryTotals[e.Category].Cents - e.Amount.Cents}
		pl.Expenses = append(pl.Expenses[:i], pl.Expenses[i+1:]...)

		s.persist(ctx)
		slog.InfoContext(ctx, "Expense deleted", "period", key, "expense_id", id)
		return true
	}
	slog.InfoContext(ctx, "Delete of unknown expense ignored", "period", key, "expense_id", id)
	return false
}

// MarkNoSpend declares the period spend-free. Existing expenses and
// totals are cleared; the id counter keeps its value so ids are never
// reused.
func (s *Store) MarkNoSpend(ctx context.Context, key string) error {
	pl := s.Period(key)
	if pl.NoSpending {
		return fmt.Errorf("%w: %s", core.ErrAlreadyMarked, key)
	}
	pl.Expenses = []core.Expense{}
	pl.CategoryTotals = map[core.Category]core.Money{}
	pl.NoSpending = true

	s.persist(ctx)
	slog.InfoContext(ctx, "Period marked no-spend", "period", key)
	return nil
}

// ClearAll resets expenses, totals and the no-spend flag. The id
// counter is preserved.
func (s *Store) ClearAll(ctx context.Context, key string) {
	pl := s.Period(key)
	pl.Expenses = []core.Expense{}
	pl.CategoryTotals = map[core.Category]core.Money{}
	pl.NoSpending = false

	s.persist(ctx)
	slog.InfoContext(ctx, "Period cleared", "period", key)
}

// Reset drops every period. Used only by the full engine reset.
func (s *Store) Reset(ctx context.Context) {
	s.periods = make(map[string]*core.PeriodLedger)
	s.persist(ctx)
	slog.InfoContext(ctx, "Ledger state reset")
}

// GlobalSpent sums the category totals of every known period.
func (s *Store) GlobalSpent() core.Money {
	var cents int64
	for _, pl := range s.periods {
		cents += pl.Total().Cents
	}
	return core.Money{Cents: cents}
}

// recentKeys returns up to n known period keys, most recent first,
// ordered by their period index.
func (s *Store) recentKeys(n int) []string {
	type entry struct {
		key string
		idx int
	}
	entries := make([]entry, 0, len(s.periods))
	for k := range s.periods {
		pk, err := core.ParsePeriodKey(k)
		if err != nil {
			continue
		}
		entries = append(entries, entry{key: k, idx: pk.Index()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx > entries[j].idx })
	if len(entries) > n {
		entries = entries[:n]
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

// RollingAverage returns the mean per-period spend over the most
// recent window of period keys. Periods never touched count as zero.
func (s *Store) RollingAverage(window int) core.Money {
	if window <= 0 {
		return core.Money{}
	}
	var cents int64
	for _, k := range s.recentKeys(window) {
		cents += s.periods[k].Total().Cents
	}
	return core.Money{Cents: cents / int64(window)}
}

// NoSpendCount counts no-spend periods inside the most recent window.
func (s *Store) NoSpendCount(window int) int {
	count := 0
	for _, k := range s.recentKeys(window) {
		if s.periods[k].NoSpending {
			count++
		}
	}
	return count
}

// persist writes the whole ledger-state document. Write failures keep
// the in-memory state authoritative and are only logged, matching the
// lossy-but-available loading behavior.
func (s *Store) persist(ctx context.Context) {
	body, err := json.Marshal(s.periods)
	if err != nil {
		slog.ErrorContext(ctx, "Failed encoding ledger state", "error", err)
		return
	}
	if err := s.port.Save(ctx, docstore.DocLedgerState, body); err != nil {
		slog.ErrorContext(ctx, "Failed saving ledger state", "error", err)
	}
}
