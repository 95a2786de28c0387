package backend

import (
	"context"

	"pursetto/internal/docstore"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the document store and optional cleanup function
type Result struct {
	Port    docstore.Port
	Cleanup CleanupFunc
}

// Factory creates document stores based on configuration
type Factory interface {
	CreatePort(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
