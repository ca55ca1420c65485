package scene

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/asset"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
)

// BuilderOption is a functional option for configuring a Manager via New.
type BuilderOption func(*manager)

// WithPipeline is an option builder that sets the asset pipeline scene
// switches materialize through.
//
// Parameters:
//   - p: the asset pipeline
//
// Returns:
//   - BuilderOption: a function that applies the pipeline to a manager
func WithPipeline(p asset.Pipeline) BuilderOption {
	return func(m *manager) {
		m.pipeline = p
	}
}

// WithRegistry is an option builder that sets the registry destroyed assets
// unregister their mixers from.
//
// Parameters:
//   - r: the mixer registry
//
// Returns:
//   - BuilderOption: a function that applies the registry to a manager
func WithRegistry(r mixer.Registry) BuilderOption {
	return func(m *manager) {
		m.registry = r
	}
}

// WithLogger is an option builder that sets the manager's logger.
//
// Parameters:
//   - logger: the logger for switch lifecycle events
//
// Returns:
//   - BuilderOption: a function that applies the logger to a manager
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(m *manager) {
		m.logger = logger
	}
}

// WithWorkers is an option builder that overrides the load fan-out pool size.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - BuilderOption: a function that applies the worker count to a manager
func WithWorkers(n int) BuilderOption {
	return func(m *manager) {
		if n >= 1 {
			m.workers = n
		}
	}
}
