// Package kvstore provides the string key-value storage the console persists its
// local state in: the session credential, the user profile and the patient blob.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/eyecare-clinic/console/pkg/common/config"
	"github.com/eyecare-clinic/console/pkg/common/database"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a flat string key-value store. Writers are not coordinated across
// processes; the last write wins.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Open builds the backend selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return OpenFile(cfg.StoragePath)
	case BackendRedis:
		client, err := database.OpenRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.StoragePrefix), nil
	case BackendPostgres:
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			return nil, err
		}
		store := NewPostgres(db)
		if err := store.AutoMigrate(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrating storage table: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StorageBackend)
	}
}
