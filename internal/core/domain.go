package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Essential Category = "Essential"
	Food      Category = "Food"
	Social    Category = "Social"
	Transport Category = "Transport"
	Fun       Category = "Fun"
	Other     Category = "Other"
)

type (
	Category string

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Expense is one logged purchase inside a period. IDs are
	// period-local and monotonic; they are never reused, even after
	// deletion.
	Expense struct {
		ID       int64    `json:"id"`
		Amount   Money    `json:"amount"`
		Category Category `json:"category"`
	}

	// PeriodLedger holds every expense recorded for one period key
	// together with its running category aggregates.
	PeriodLedger struct {
		Expenses       []Expense          `json:"expenses"`
		CategoryTotals map[Category]Money `json:"categoryTotals"`
		PurchaseCount  int64              `json:"purchaseCount"`
		NoSpending     bool               `json:"noSpending"`
	}

	AllowanceMode string

	// Profile is the global (not per-period) settings and scoring
	// record. There is exactly one.
	Profile struct {
		AllowanceAmount  Money           `json:"allowanceAmount"`
		AllowanceMode    AllowanceMode   `json:"allowanceMode"`
		XP               int64           `json:"xp"`
		StreakLength     int             `json:"streakLength"`
		LastActivePeriod *int            `json:"lastActivePeriod"`
		ActiveGoal       GoalRef         `json:"activeGoal,omitempty"`
		CompletedGoals   []CompletedGoal `json:"completedGoals"`
	}

	// GoalRef names one of the preset goal predicates. Empty means no
	// goal is active.
	GoalRef string

	CompletedGoal struct {
		Preset      GoalRef   `json:"preset"`
		XPAwarded   int64     `json:"xpAwarded"`
		CompletedAt time.Time `json:"completedAt"`
	}

	// Favourite is a named snapshot of an expense, addressable by the
	// composite key "<periodKey>-<localId>". Reifying it re-points the
	// key at the freshly created expense.
	Favourite struct {
		OwnerPeriodKey string   `json:"ownerPeriodKey"`
		LocalID        int64    `json:"localId"`
		Amount         Money    `json:"amount"`
		Category       Category `json:"category"`
		DisplayName    string   `json:"displayName"`
	}
)

const (
	AllowancePerPeriod AllowanceMode = "per-period"
	AllowanceAveraged  AllowanceMode = "averaged"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidPeriodKey = errors.New("invalid period key")
	ErrNotFound         = errors.New("expense not found")
	ErrAlreadyMarked    = errors.New("period already marked no-spend")
	ErrGoalCompleted    = errors.New("goal preset already completed")
	ErrUnknownGoal      = errors.New("unknown goal preset")
	ErrConfirmRequired  = errors.New("confirmation required")
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{Essential, Food, Social, Transport, Fun, Other}
}

func (c Category) IsValid() bool {
	switch c {
	case Essential, Food, Social, Transport, Fun, Other:
		return true
	default:
		return false
	}
}

func (c Category) String() string { return string(c) }

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m AllowanceMode) IsValid() bool {
	return m == AllowancePerPeriod || m == AllowanceAveraged
}

// NewPeriodLedger returns a zeroed ledger satisfying all invariants.
func NewPeriodLedger() *PeriodLedger {
	return &PeriodLedger{
		Expenses:       []Expense{},
		CategoryTotals: map[Category]Money{},
	}
}

// Total sums every category aggregate of the ledger.
func (pl *PeriodLedger) Total() Money {
	var cents int64
	for _, m := range pl.CategoryTotals {
		cents += m.Cents
	}
	return Money{Cents: cents}
}

// Find returns the expense with the given id, if present.
func (pl *PeriodLedger) Find(id int64) (Expense, bool) {
	for _, e := range pl.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

// Key returns the composite favourites key for this favourite.
func (f Favourite) Key() string {
	return FavouriteKey(f.OwnerPeriodKey, f.LocalID)
}

// Completed reports whether the preset appears in the completed list.
func (p *Profile) Completed(preset GoalRef) bool {
	for _, cg := range p.CompletedGoals {
		if cg.Preset == preset {
			return true
		}
	}
	return false
}
