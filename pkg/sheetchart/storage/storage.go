// Package storage provides durable key-value backends for upload history.
package storage

import (
	"fmt"
	"io"
	"strings"
)

// Storage is a minimal durable key-value store.
// Implementations must be safe for concurrent use.
type Storage interface {
	io.Closer
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	// Put replaces the value for key.
	Put(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendPebble = "pebble"
)

// Open creates a Storage of the named backend rooted at dir.
func Open(backend, dir string) (Storage, error) {
	switch strings.ToLower(backend) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return NewFile(dir)
	case BackendPebble:
		return NewPebble(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
