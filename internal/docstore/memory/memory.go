// Package memory provides an in-process document store used as the
// default backend and as the fake in engine tests.
package memory

import (
	"context"
	"sync"

	"pursetto/internal/docstore"
)

type Store struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// NewSeeded returns a store preloaded with the given documents.
func NewSeeded(docs map[string][]byte) *Store {
	s := New()
	for id, body := range docs {
		s.docs[id] = append([]byte(nil), body...)
	}
	return s
}

func (s *Store) Load(_ context.Context, docID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.docs[docID]
	if !ok {
		return nil, docstore.ErrNoDocument
	}
	return append([]byte(nil), body...), nil
}

func (s *Store) Save(_ context.Context, docID string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docID] = append([]byte(nil), value...)
	return nil
}

var _ docstore.Port = (*Store)(nil)
