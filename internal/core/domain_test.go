package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Essential", Essential, true},
		{"essential", Essential, true},
		{" Fun ", Fun, true},
		{"SOCIAL", Social, true},
		{"Groceries", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -10}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestPeriodLedgerTotalAndFind(t *testing.T) {
	pl := NewPeriodLedger()
	pl.Expenses = []Expense{
		{ID: 1, Amount: Money{Cents: 500}, Category: Essential},
		{ID: 2, Amount: Money{Cents: 300}, Category: Social},
	}
	pl.CategoryTotals[Essential] = Money{Cents: 500}
	pl.CategoryTotals[Social] = Money{Cents: 300}

	if got := pl.Total().Cents; got != 800 {
		t.Fatalf("expected total 800, got %d", got)
	}
	if _, ok := pl.Find(2); !ok {
		t.Fatalf("expected to find expense 2")
	}
	if _, ok := pl.Find(99); ok {
		t.Fatalf("did not expect to find expense 99")
	}
}

func TestProfileCompleted(t *testing.T) {
	p := &Profile{CompletedGoals: []CompletedGoal{{Preset: "no-spend-3of7"}}}
	if !p.Completed("no-spend-3of7") {
		t.Fatalf("expected preset to be completed")
	}
	if p.Completed("reach-tier-3") {
		t.Fatalf("did not expect preset to be completed")
	}
}

func TestMoneyJSONField(t *testing.T) {
	b, err := json.Marshal(Expense{ID: 1, Amount: Money{Cents: 1250}, Category: Food})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"amount":{"cents":1250}`) {
		t.Fatalf("expected lowercase cents field, got %s", b)
	}
}

func TestProfileJSONActiveGoal(t *testing.T) {
	b, err := json.Marshal(Profile{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "activeGoal") {
		t.Fatalf("unset goal must be absent, got %s", b)
	}

	b, err = json.Marshal(Profile{ActiveGoal: "no-spend-3of7"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"activeGoal":"no-spend-3of7"`) {
		t.Fatalf("active goal missing, got %s", b)
	}
}
