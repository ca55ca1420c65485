package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// The tick callback will be called at this rate for application updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithLogger sets the engine's logger. Services the engine creates inherit it.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithCache sets a pre-configured asset cache for the engine to use rather
// than allowing the engine to create and manage one internally. The caller
// keeps ownership and is responsible for closing it.
//
// Parameters:
//   - c: a pre-configured cache instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCache(c cache.Cache) EngineBuilderOption {
	return func(e *engine) {
		e.cache = c
		e.ownsCache = false
	}
}

// WithRegistry sets a pre-configured mixer registry for the engine to drive.
//
// Parameters:
//   - r: a pre-configured registry instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRegistry(r mixer.Registry) EngineBuilderOption {
	return func(e *engine) {
		e.registry = r
	}
}

// WithRenderFrameLimit sets an optional animation frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
