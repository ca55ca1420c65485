package loader

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
)

// BuilderOption is a functional option for configuring a Loader via New.
type BuilderOption func(*loaderImpl)

// WithCache is an option builder that sets the cache used to resolve model
// URLs into payloads.
//
// Parameters:
//   - c: the blob cache
//
// Returns:
//   - BuilderOption: a function that applies the cache to a loader
func WithCache(c cache.Cache) BuilderOption {
	return func(l *loaderImpl) {
		l.cache = c
	}
}

// WithLogger is an option builder that sets the loader's logger.
//
// Parameters:
//   - logger: the logger for parse events
//
// Returns:
//   - BuilderOption: a function that applies the logger to a loader
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(l *loaderImpl) {
		l.logger = logger
	}
}
