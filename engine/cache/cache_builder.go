package cache

import (
	"net/http"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	badger "github.com/ipfs/go-ds-badger"
	"go.uber.org/zap"
)

// BuilderOption is a functional option for configuring a Cache via New.
// Options that open resources may fail, so each option can return an error.
type BuilderOption func(*cache) error

// newMemoryStore returns the default in-process store used when no backing
// store option is supplied.
func newMemoryStore() ds.Datastore {
	return dssync.MutexWrap(ds.NewMapDatastore())
}

// WithStorePath is an option builder that backs the cache with a badger
// datastore at the given directory, so payloads survive process restarts.
//
// Parameters:
//   - path: the directory for the badger store, created if absent
//
// Returns:
//   - BuilderOption: a function that opens and applies the store, returning a
//     *StorageError when the store cannot be opened
func WithStorePath(path string) BuilderOption {
	return func(c *cache) error {
		store, err := badger.NewDatastore(path, &badger.DefaultOptions)
		if err != nil {
			return &StorageError{Op: "open", Err: err}
		}
		c.store = store
		return nil
	}
}

// WithDatastore is an option builder that backs the cache with an existing
// datastore. Useful for tests and for sharing a store between components.
//
// Parameters:
//   - store: the datastore to use
//
// Returns:
//   - BuilderOption: a function that applies the store to a cache
func WithDatastore(store ds.Datastore) BuilderOption {
	return func(c *cache) error {
		c.store = store
		return nil
	}
}

// WithFetcher is an option builder that replaces the miss-path fetcher.
//
// Parameters:
//   - f: the fetcher to use on cache misses
//
// Returns:
//   - BuilderOption: a function that applies the fetcher to a cache
func WithFetcher(f Fetcher) BuilderOption {
	return func(c *cache) error {
		c.fetcher = f
		return nil
	}
}

// WithHTTPClient is an option builder that keeps the default HTTP fetcher but
// swaps in a custom client (timeouts, transport tuning).
//
// Parameters:
//   - client: the HTTP client for miss-path fetches
//
// Returns:
//   - BuilderOption: a function that applies the client to a cache
func WithHTTPClient(client *http.Client) BuilderOption {
	return func(c *cache) error {
		c.fetcher = &httpFetcher{client: client}
		return nil
	}
}

// WithLogger is an option builder that sets the cache's logger.
//
// Parameters:
//   - logger: the logger for hit/miss/persist events
//
// Returns:
//   - BuilderOption: a function that applies the logger to a cache
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(c *cache) error {
		c.logger = logger
		return nil
	}
}
