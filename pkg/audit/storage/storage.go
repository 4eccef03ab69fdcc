package storage

import (
	"fmt"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/config"
)

// New creates the backend selected by cfg.Backend.
func New(cfg *config.AuditConfig) (audit.Storage, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "sqlite":
		return NewSQLiteStorage(&cfg.SQLite)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

var (
	_ audit.Storage = (*MemoryStorage)(nil)
	_ audit.Storage = (*SQLiteStorage)(nil)
)
