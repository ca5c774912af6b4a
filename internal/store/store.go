// Package store persists the latest analytics snapshot.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/job-change/internal/analytics"
)

const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// ErrNotFound is returned by Load when no snapshot was saved yet.
var ErrNotFound = errors.New("snapshot not found")

// Store keeps exactly one snapshot. Save replaces the previous one in full.
type Store interface {
	Save(ctx context.Context, s *analytics.Snapshot) error
	Load(ctx context.Context) (*analytics.Snapshot, error)
	Close() error
}

// Open returns the backend named by kind. An empty kind means file.
func Open(kind, path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("snapshot path is not configured")
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindFile:
		return NewFileStore(path), nil
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported snapshot store %q", kind)
	}
}
