package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-cave/internal/storage"
	"github.com/pixil98/go-cave/internal/storage/sqlite"
)

type StorageType int

const (
	StorageTypeMemory StorageType = iota
	StorageTypeSqlite
)

func (st *StorageType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "memory":
		*st = StorageTypeMemory
	case "sqlite":
		*st = StorageTypeSqlite
	default:
		return fmt.Errorf("unknown storage type: %s", text)
	}
	return nil
}

type StorageConfig struct {
	Type StorageType `json:"type"`
	Path string      `json:"path,omitempty"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.Type == StorageTypeSqlite && c.Path == "" {
		el.Add(fmt.Errorf("storage: path is required for sqlite"))
	}

	return el.Err()
}

// buildStorage opens the configured store and makes sure the initial rooms
// exist. Nobody is in the cave before the server runs, so tokens left by an
// unclean shutdown are cleared.
func (c *StorageConfig) buildStorage(ctx context.Context) (storage.CaveStorage, error) {
	var s storage.CaveStorage
	switch c.Type {
	case StorageTypeMemory:
		s = storage.NewMemoryStore()
	case StorageTypeSqlite:
		store, err := sqlite.Open(c.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		s = store
	default:
		return nil, fmt.Errorf("unknown storage type: %v", c.Type)
	}

	if err := storage.Seed(ctx, s); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.ClearAccessTokens(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
