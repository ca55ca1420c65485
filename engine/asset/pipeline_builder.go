package asset

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
	"github.com/Carmen-Shannon/arc-go/engine/loader"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
)

// PipelineOption is a functional option for configuring a Pipeline via
// NewPipeline.
type PipelineOption func(*pipelineImpl)

// WithCache is an option builder that sets the blob cache payloads resolve
// through.
//
// Parameters:
//   - c: the blob cache
//
// Returns:
//   - PipelineOption: a function that applies the cache to a pipeline
func WithCache(c cache.Cache) PipelineOption {
	return func(p *pipelineImpl) {
		p.cache = c
	}
}

// WithLoader is an option builder that sets the model loader.
//
// Parameters:
//   - l: the model loader
//
// Returns:
//   - PipelineOption: a function that applies the loader to a pipeline
func WithLoader(l loader.Loader) PipelineOption {
	return func(p *pipelineImpl) {
		p.loader = l
	}
}

// WithRegistry is an option builder that sets the tick registry new mixers
// join on creation.
//
// Parameters:
//   - r: the mixer registry
//
// Returns:
//   - PipelineOption: a function that applies the registry to a pipeline
func WithRegistry(r mixer.Registry) PipelineOption {
	return func(p *pipelineImpl) {
		p.registry = r
	}
}

// WithLogger is an option builder that sets the pipeline's logger.
//
// Parameters:
//   - logger: the logger for asset creation events
//
// Returns:
//   - PipelineOption: a function that applies the logger to a pipeline
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *pipelineImpl) {
		p.logger = logger
	}
}
