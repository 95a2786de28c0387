// Package sqlite persists the engine documents in a local SQLite
// database, one row per document.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pursetto/internal/docstore"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context, docID string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE doc_id = ?`, docID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", docID, err)
	}
	return body, nil
}

func (s *Store) Save(ctx context.Context, docID string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(doc_id) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`,
		docID, value)
	if err != nil {
		return fmt.Errorf("save document %s: %w", docID, err)
	}

	slog.DebugContext(ctx, "Document saved", "doc_id", docID, "bytes", len(value))
	return nil
}

var _ docstore.Port = (*Store)(nil)
