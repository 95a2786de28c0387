package favourites

import (
	"context"
	"testing"

	"pursetto/internal/core"
	"pursetto/internal/docstore"
	"pursetto/internal/docstore/memory"
)

func testExpense() core.Expense {
	return core.Expense{ID: 3, Amount: core.Money{Cents: 450}, Category: core.Food}
}

func TestSaveAndGet(t *testing.T) {
	r := Load(context.Background(), memory.New())
	ctx := context.Background()

	f, err := r.Save(ctx, "day-2", testExpense(), "morning coffee")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if f.Key() != "day-2-3" {
		t.Fatalf("unexpected key %q", f.Key())
	}

	got, ok := r.Get("day-2-3")
	if !ok || got.Amount.Cents != 450 || got.Category != core.Food || got.DisplayName != "morning coffee" {
		t.Fatalf("unexpected favourite %+v (ok=%v)", got, ok)
	}

	if _, err := r.Save(ctx, "day-2", testExpense(), "  "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestRepointKeepsSnapshotFields(t *testing.T) {
	r := Load(context.Background(), memory.New())
	ctx := context.Background()

	r.Save(ctx, "day-2", testExpense(), "coffee")
	f, err := r.Repoint(ctx, "day-2-3", "day-5", 9)
	if err != nil {
		t.Fatalf("repoint: %v", err)
	}
	if f.Key() != "day-5-9" {
		t.Fatalf("unexpected new key %q", f.Key())
	}
	if f.Amount.Cents != 450 || f.Category != core.Food || f.DisplayName != "coffee" {
		t.Fatalf("snapshot fields lost: %+v", f)
	}
	if _, ok := r.Get("day-2-3"); ok {
		t.Fatalf("old key still present after repoint")
	}
	if len(r.List()) != 1 {
		t.Fatalf("repoint must not duplicate the entry")
	}

	if _, err := r.Repoint(ctx, "day-2-3", "day-6", 1); err == nil {
		t.Fatalf("expected error repointing unknown key")
	}
}

func TestSyncExpense(t *testing.T) {
	r := Load(context.Background(), memory.New())
	ctx := context.Background()

	r.Save(ctx, "2026-08", testExpense(), "coffee")
	r.SyncExpense(ctx, "2026-08", core.Expense{ID: 3, Amount: core.Money{Cents: 900}, Category: core.Fun})

	got, _ := r.Get("2026-08-3")
	if got.Amount.Cents != 900 || got.Category != core.Fun {
		t.Fatalf("edit not propagated: %+v", got)
	}
	if got.DisplayName != "coffee" {
		t.Fatalf("display name must persist: %+v", got)
	}

	// Syncing an expense no favourite points at is a no-op.
	r.SyncExpense(ctx, "2026-08", core.Expense{ID: 99, Amount: core.Money{Cents: 1}, Category: core.Fun})
	if len(r.List()) != 1 {
		t.Fatalf("unexpected favourite created by sync")
	}
}

func TestRemoveAndList(t *testing.T) {
	r := Load(context.Background(), memory.New())
	ctx := context.Background()

	r.Save(ctx, "day-1", core.Expense{ID: 1, Amount: core.Money{Cents: 100}, Category: core.Fun}, "b")
	r.Save(ctx, "day-1", core.Expense{ID: 2, Amount: core.Money{Cents: 200}, Category: core.Fun}, "a")

	list := r.List()
	if len(list) != 2 || list[0].LocalID != 1 || list[1].LocalID != 2 {
		t.Fatalf("unexpected order: %+v", list)
	}

	if !r.Remove(ctx, "day-1-1") {
		t.Fatalf("expected removal")
	}
	if r.Remove(ctx, "day-1-1") {
		t.Fatalf("expected second removal to be a no-op")
	}
	if len(r.List()) != 1 {
		t.Fatalf("unexpected list length after removal")
	}
}

func TestWriteThroughAndCorruptFallback(t *testing.T) {
	port := memory.New()
	ctx := context.Background()

	r := Load(ctx, port)
	r.Save(ctx, "day-4", testExpense(), "coffee")

	reloaded := Load(ctx, port)
	if _, ok := reloaded.Get("day-4-3"); !ok {
		t.Fatalf("favourite lost on reload")
	}

	corrupt := Load(ctx, memory.NewSeeded(map[string][]byte{
		docstore.DocFavourites: []byte(`42`),
	}))
	if len(corrupt.List()) != 0 {
		t.Fatalf("expected empty registry after corrupt load")
	}
}
