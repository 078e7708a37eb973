// Package backend selects and builds the persistence implementation at
// startup. Both backends satisfy the same store contract; callers never
// learn which one they got.
package backend

import (
	"fmt"
	"log/slog"

	"viaggi/internal/store"
	"viaggi/internal/store/memory"
	"viaggi/internal/store/sqlite"
)

// Type represents the configured persistence backend.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string { return string(t) }

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	}
	return false
}

// Config holds what backend construction needs.
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result carries the built store and its cleanup, nil when nothing to
// release.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Open builds the configured backend.
func Open(cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLite:
		if cfg.SQLiteDBPath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		slog.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: repo, Cleanup: repo.Close}, nil

	case Memory:
		slog.Info("Initialized memory backend")
		return &Result{Store: memory.New(), Cleanup: nil}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
