// Package docstore defines the persistence port for the three named
// documents the engine maintains. Adapters live in subpackages; the
// engine only ever sees this interface.
package docstore

import (
	"context"
	"errors"
)

// Document identifiers. Each document is an opaque JSON object.
const (
	DocLedgerState     = "ledger-state"
	DocProfileSettings = "profile-settings"
	DocFavourites      = "favourites"
)

// ErrNoDocument is returned by Load when the document has never been
// saved. Callers fall back to an empty default.
var ErrNoDocument = errors.New("document not found")

// Port is the outbound persistence port.
type Port interface {
	// Load returns the raw document body, or ErrNoDocument.
	Load(ctx context.Context, docID string) ([]byte, error)
	// Save replaces the document body atomically.
	Save(ctx context.Context, docID string, value []byte) error
}

// DocumentIDs lists every document the engine persists.
func DocumentIDs() []string {
	return []string{DocLedgerState, DocProfileSettings, DocFavourites}
}
