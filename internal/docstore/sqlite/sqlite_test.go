package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pursetto/internal/docstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "pursetto.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), docstore.DocProfileSettings)
	if !errors.Is(err, docstore.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestSaveLoadOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, docstore.DocLedgerState, []byte(`{"day-1":{}}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, docstore.DocLedgerState, []byte(`{"day-2":{}}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.Load(ctx, docstore.DocLedgerState)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"day-2":{}}` {
		t.Fatalf("expected latest body, got %q", got)
	}
}

func TestDocumentsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range docstore.DocumentIDs() {
		if err := s.Save(ctx, id, []byte{byte('0' + i)}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	for i, id := range docstore.DocumentIDs() {
		got, err := s.Load(ctx, id)
		if err != nil || len(got) != 1 || got[0] != byte('0'+i) {
			t.Fatalf("load %s: %q (err=%v)", id, got, err)
		}
	}
}
