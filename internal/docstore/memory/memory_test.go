package memory

import (
	"context"
	"errors"
	"testing"

	"pursetto/internal/docstore"
)

func TestLoadMissing(t *testing.T) {
	s := New()
	_, err := s.Load(context.Background(), docstore.DocLedgerState)
	if !errors.Is(err, docstore.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Save(ctx, docstore.DocProfileSettings, []byte(`{"xp":10}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, docstore.DocProfileSettings)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"xp":10}` {
		t.Fatalf("unexpected body %q", got)
	}

	// Saved copy must be independent of the caller's slice.
	body := []byte(`{"a":1}`)
	if err := s.Save(ctx, docstore.DocFavourites, body); err != nil {
		t.Fatalf("save: %v", err)
	}
	body[2] = 'b'
	got, _ = s.Load(ctx, docstore.DocFavourites)
	if string(got) != `{"a":1}` {
		t.Fatalf("store aliased caller slice: %q", got)
	}
}

func TestNewSeeded(t *testing.T) {
	s := NewSeeded(map[string][]byte{docstore.DocLedgerState: []byte(`{}`)})
	got, err := s.Load(context.Background(), docstore.DocLedgerState)
	if err != nil || string(got) != `{}` {
		t.Fatalf("expected seeded doc, got %q (err=%v)", got, err)
	}
}
