// Package kv provides the persistent key-value backends the task store
// writes its collection to.
package kv

import (
	"context"
	"fmt"
)

// Store is a string key-value store. Get reports ok=false for a key that
// was never set.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Open returns the backend named by backend, rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(path)
	case BackendFile:
		return NewFile(nil, path)
	default:
		return nil, fmt.Errorf("unsupported backend: %s. Supported backends are sqlite, file", backend)
	}
}
