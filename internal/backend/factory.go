package backend

import (
	"context"
	"fmt"
	"log/slog"

	"pursetto/internal/docstore/memory"
	"pursetto/internal/docstore/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreatePort implements Factory.CreatePort
func (f *DefaultFactory) CreatePort(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLitePort(config)
	case MemoryBackend:
		return f.createMemoryPort()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLitePort(config Config) (*Result, error) {
	store, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite document store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Port:    store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryPort() (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{
		Port:    memory.New(),
		Cleanup: nil,
	}, nil
}
