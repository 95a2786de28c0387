package backend

import (
	"context"
	"testing"

	"pursetto/internal/config"
)

func TestCreatePortMemory(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreatePort(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreatePort: %v", err)
	}
	if res.Port == nil {
		t.Fatal("nil port")
	}
	if res.Cleanup != nil {
		t.Error("memory backend needs no cleanup")
	}
}

func TestCreatePortInvalidType(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreatePort(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Error("expected error for unsupported backend type")
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "./x.db"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "./x.db" {
		t.Errorf("got %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
