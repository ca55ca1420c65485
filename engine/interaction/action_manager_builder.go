package interaction

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
)

// BuilderOption is a functional option for configuring a Manager via New.
type BuilderOption func(*managerImpl)

// WithLookup is an option builder that sets the node-to-asset resolver,
// normally the scene manager's Lookup.
//
// Parameters:
//   - l: the ownership resolver
//
// Returns:
//   - BuilderOption: a function that applies the resolver to a manager
func WithLookup(l Lookup) BuilderOption {
	return func(m *managerImpl) {
		m.lookup = l
	}
}

// WithCache is an option builder that sets the blob cache loop sounds resolve
// through.
//
// Parameters:
//   - c: the blob cache
//
// Returns:
//   - BuilderOption: a function that applies the cache to a manager
func WithCache(c cache.Cache) BuilderOption {
	return func(m *managerImpl) {
		m.cache = c
	}
}

// WithLogger is an option builder that sets the manager's logger.
//
// Parameters:
//   - logger: the logger for interaction events
//
// Returns:
//   - BuilderOption: a function that applies the logger to a manager
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(m *managerImpl) {
		m.logger = logger
	}
}
