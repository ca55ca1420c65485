// package cache provides the URL-keyed blob cache backing asset resolution.
// Resolved payloads persist in a datastore namespace so repeat visits skip the
// network entirely, and concurrent requests for the same URL collapse into a
// single fetch.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const assetNamespace = "assets"

// FetchError reports a failed network retrieval for an asset URL.
type FetchError struct {
	// URL is the asset URL that failed to fetch.
	URL string
	// Status is the HTTP status code, or 0 when the request never completed.
	Status int
	// Err is the underlying transport error, if any.
	Err error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StorageError reports a failed datastore operation.
type StorageError struct {
	// Op names the datastore operation that failed.
	Op string
	// Err is the underlying datastore error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw bytes behind an asset URL on a cache miss.
type Fetcher interface {
	// Fetch downloads the payload at the given URL.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for the request
	//   - url: the asset URL
	//
	// Returns:
	//   - []byte: the payload bytes
	//   - error: a *FetchError when the request fails or returns a non-2xx status
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// httpFetcher is the default Fetcher, a plain HTTP GET.
type httpFetcher struct {
	client *http.Client
}

var _ Fetcher = &httpFetcher{}

func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return body, nil
}

// cache implements the Cache interface.
type cache struct {
	store   ds.Datastore
	fetcher Fetcher
	logger  *zap.Logger
	group   singleflight.Group
}

// Cache resolves asset URLs to payload bytes, persisting every successful
// fetch so later resolutions of the same URL are served locally.
type Cache interface {
	// Resolve returns the payload for an asset URL, from the store when
	// present, otherwise by fetching and persisting it. Concurrent calls for
	// the same URL share one fetch.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control
	//   - url: the asset URL
	//
	// Returns:
	//   - []byte: the payload bytes
	//   - error: a *FetchError or *StorageError on failure
	Resolve(ctx context.Context, url string) ([]byte, error)

	// Contains reports whether a URL's payload is already persisted.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control
	//   - url: the asset URL
	//
	// Returns:
	//   - bool: true when the payload is stored locally
	Contains(ctx context.Context, url string) bool

	// Clear removes every cached payload.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control
	//
	// Returns:
	//   - error: a *StorageError when the sweep fails
	Clear(ctx context.Context) error

	// Close releases the underlying datastore.
	//
	// Returns:
	//   - error: any error from closing the store
	Close() error
}

var _ Cache = &cache{}

// New creates a Cache with the provided options applied. Without a datastore
// option the cache keeps payloads in process memory only.
//
// Parameters:
//   - options: functional options for cache configuration (store, fetcher, logger)
//
// Returns:
//   - Cache: the newly created cache
//   - error: a *StorageError when the configured backing store cannot be opened
func New(options ...BuilderOption) (Cache, error) {
	c := &cache{
		fetcher: &httpFetcher{client: http.DefaultClient},
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.store == nil {
		c.store = newMemoryStore()
	}
	return c, nil
}

// assetKey maps an asset URL into the cache namespace. The URL is path-escaped
// so slashes and query strings cannot split the key into extra namespaces.
func assetKey(rawURL string) ds.Key {
	return ds.KeyWithNamespaces([]string{assetNamespace, url.PathEscape(rawURL)})
}

func (c *cache) Resolve(ctx context.Context, rawURL string) ([]byte, error) {
	key := assetKey(rawURL)

	data, err := c.store.Get(ctx, key)
	if err == nil {
		c.logger.Debug("cache hit", zap.String("url", rawURL))
		return data, nil
	}
	if !errors.Is(err, ds.ErrNotFound) {
		return nil, &StorageError{Op: "get", Err: err}
	}

	v, err, _ := c.group.Do(rawURL, func() (any, error) {
		c.logger.Debug("cache miss", zap.String("url", rawURL))
		body, err := c.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if err := c.store.Put(ctx, key, body); err != nil {
			// the payload is still usable this session, keep going
			c.logger.Warn("cache persist failed", zap.String("url", rawURL), zap.Error(err))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *cache) Contains(ctx context.Context, rawURL string) bool {
	has, err := c.store.Has(ctx, assetKey(rawURL))
	if err != nil {
		return false
	}
	return has
}

func (c *cache) Clear(ctx context.Context) error {
	res, err := c.store.Query(ctx, dsq.Query{
		Prefix:   "/" + assetNamespace,
		KeysOnly: true,
	})
	if err != nil {
		return &StorageError{Op: "query", Err: err}
	}
	defer res.Close()

	for r := range res.Next() {
		if r.Error != nil {
			return &StorageError{Op: "query", Err: r.Error}
		}
		if err := c.store.Delete(ctx, ds.RawKey(r.Key)); err != nil {
			return &StorageError{Op: "delete", Err: err}
		}
	}
	return nil
}

func (c *cache) Close() error {
	return c.store.Close()
}
