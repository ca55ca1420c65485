package config

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
)

// PreloaderOption is a functional option for configuring a Preloader via
// NewPreloader.
type PreloaderOption func(*preloader)

// WithCache is an option builder that sets the asset cache to warm.
//
// Parameters:
//   - c: the cache URLs resolve through
//
// Returns:
//   - PreloaderOption: a function that applies the cache to a preloader
func WithCache(c cache.Cache) PreloaderOption {
	return func(p *preloader) {
		p.cache = c
	}
}

// WithLogger is an option builder that sets the preloader's logger.
//
// Parameters:
//   - logger: the logger for preload progress and failures
//
// Returns:
//   - PreloaderOption: a function that applies the logger to a preloader
func WithLogger(logger *zap.Logger) PreloaderOption {
	return func(p *preloader) {
		p.logger = logger
	}
}

// WithWorkers is an option builder that sets how many URLs load concurrently.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - PreloaderOption: a function that applies the worker count to a preloader
func WithWorkers(n int) PreloaderOption {
	return func(p *preloader) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithOnProgress is an option builder that sets a per-URL progress callback.
// The callback may be invoked from multiple goroutines.
//
// Parameters:
//   - fn: receives how many URLs have finished, the total, and the URL
//
// Returns:
//   - PreloaderOption: a function that applies the callback to a preloader
func WithOnProgress(fn func(done, total int, url string)) PreloaderOption {
	return func(p *preloader) {
		p.onProgress = fn
	}
}
