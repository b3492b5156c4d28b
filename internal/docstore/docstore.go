// Package docstore abstracts the object store holding the assistant's
// source documents (policy text files, metric CSVs).
//
// Two implementations are provided: a local filesystem store for
// development and an S3 store for deployed environments. Reads are
// per-turn; a caching decorator is a possible extension point but is not
// part of this package.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the key does not exist in the store.
	ErrNotFound = errors.New("document not found")
)

// Store reads named objects from a document store.
//
// Implementations must wrap missing keys in ErrNotFound so callers can
// distinguish absent documents from transport failures.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
}
