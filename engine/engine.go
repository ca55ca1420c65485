package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/asset"
	"github.com/Carmen-Shannon/arc-go/engine/cache"
	"github.com/Carmen-Shannon/arc-go/engine/config"
	"github.com/Carmen-Shannon/arc-go/engine/interaction"
	"github.com/Carmen-Shannon/arc-go/engine/loader"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/object"
	"github.com/Carmen-Shannon/arc-go/engine/profiler"
	"github.com/Carmen-Shannon/arc-go/engine/scene"
)

// engine implements the Engine interface.
// Coordinates the tick and animation threads over the shared runtime services.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	logger *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float64)
	renderCallback func(deltaTime float64)

	cache        cache.Cache
	ownsCache    bool
	registry     mixer.Registry
	loader       loader.Loader
	pipeline     asset.Pipeline
	interactions interaction.Manager
	preloader    config.Preloader

	mu     sync.Mutex
	tracks map[int]scene.Manager

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the runtime.
// It owns the shared services (asset cache, loader, animation registry,
// interaction dispatch) and the loops that drive them: a fixed-rate tick loop
// for application logic and an animation loop that advances every registered
// mixer before the render callback fires.
type Engine interface {
	// Cache returns the asset cache shared by every service.
	//
	// Returns:
	//   - cache.Cache: the cache instance
	Cache() cache.Cache

	// Registry returns the animation mixer registry the animation loop drives.
	//
	// Returns:
	//   - mixer.Registry: the registry instance
	Registry() mixer.Registry

	// Pipeline returns the asset pipeline scene managers materialize with.
	//
	// Returns:
	//   - asset.Pipeline: the pipeline instance
	Pipeline() asset.Pipeline

	// Loader returns the model loader.
	//
	// Returns:
	//   - loader.Loader: the loader instance
	Loader() loader.Loader

	// Interactions returns the tap dispatch manager. Node ownership resolves
	// across every mounted track.
	//
	// Returns:
	//   - interaction.Manager: the interaction manager
	Interactions() interaction.Manager

	// Preloader returns the cache warmer for configuration documents.
	//
	// Returns:
	//   - config.Preloader: the preloader instance
	Preloader() config.Preloader

	// CreateAsset materializes a descriptor through the engine's pipeline.
	// Assets created this way are not owned by any track; callers attach and
	// destroy them themselves.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for fetching and decoding
	//   - desc: the asset declaration
	//
	// Returns:
	//   - *asset.LiveAsset: the live asset, nil for unknown asset types
	//   - error: any error materializing the asset
	CreateAsset(ctx context.Context, desc asset.Descriptor) (*asset.LiveAsset, error)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback will be called at this rate for application updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for application logic, input processing, and tracking updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float64))

	// SetRenderCallback registers the function called each animation frame,
	// after every registered mixer has advanced.
	//
	// Parameters:
	//   - callback: function to call each frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float64))

	// SetRenderFrameLimit sets an optional animation frame rate cap in frames
	// per second. Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddTrack creates a scene manager for the given track index, wired to the
	// engine's pipeline and registry, replacing any manager at that index.
	//
	// Parameters:
	//   - key: the track index the manager serves
	//
	// Returns:
	//   - scene.Manager: the newly created manager
	AddTrack(key int) scene.Manager

	// RemoveTrack tears down and removes the scene manager at the given track
	// index.
	//
	// Parameters:
	//   - key: the track index to remove
	RemoveTrack(key int)

	// Track retrieves the scene manager at the given track index.
	// Returns nil if no manager exists at that index.
	//
	// Parameters:
	//   - key: the track index
	//
	// Returns:
	//   - scene.Manager: the manager at the index, or nil if not found
	Track(key int) scene.Manager

	// Tracks returns a copy of all track scene managers keyed by track index.
	//
	// Returns:
	//   - map[int]scene.Manager: a copy of the tracks map
	Tracks() map[int]scene.Manager

	// MountMode creates one track manager per track in the mode, registers each
	// track's scenes, and mounts each track's first scene. Managers are keyed
	// by track index.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for asset loading
	//   - mode: the tracking mode configuration to mount
	//
	// Returns:
	//   - []scene.Manager: the track managers in track order
	//   - error: the first scene switch error encountered
	MountMode(ctx context.Context, mode *config.Mode) ([]scene.Manager, error)

	// Update advances every registered mixer by the given delta time. The
	// animation loop calls this automatically while running; call it directly
	// for manual stepping.
	//
	// Parameters:
	//   - deltaTime: seconds to advance by
	Update(deltaTime float64)

	// Run starts the engine loops and blocks until Quit is called.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close quits the engine and releases the cache when the engine created it.
	//
	// Returns:
	//   - error: any error closing the cache
	Close() error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Services not supplied via options are created with defaults: an in-memory
// cache, a fresh mixer registry, and a loader, pipeline, interaction manager,
// and preloader wired over them.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, cache, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		tracks:          make(map[int]scene.Manager),
		logger:          zap.NewNop(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(e.logger)
	}
	if e.cache == nil {
		c, err := cache.New(cache.WithLogger(e.logger))
		if err != nil {
			e.logger.Error("default cache init failed", zap.Error(err))
		}
		e.cache = c
		e.ownsCache = true
	}
	if e.registry == nil {
		e.registry = mixer.NewRegistry()
	}
	if e.loader == nil {
		e.loader = loader.New(
			loader.WithCache(e.cache),
			loader.WithLogger(e.logger),
		)
	}
	if e.pipeline == nil {
		e.pipeline = asset.NewPipeline(
			asset.WithCache(e.cache),
			asset.WithLoader(e.loader),
			asset.WithRegistry(e.registry),
			asset.WithLogger(e.logger),
		)
	}
	if e.interactions == nil {
		e.interactions = interaction.New(
			interaction.WithLookup(e.lookup),
			interaction.WithCache(e.cache),
			interaction.WithLogger(e.logger),
		)
	}
	if e.preloader == nil {
		e.preloader = config.NewPreloader(
			config.WithCache(e.cache),
			config.WithLogger(e.logger),
		)
	}

	return e
}

func (e *engine) Cache() cache.Cache {
	return e.cache
}

func (e *engine) Registry() mixer.Registry {
	return e.registry
}

func (e *engine) Pipeline() asset.Pipeline {
	return e.pipeline
}

func (e *engine) Loader() loader.Loader {
	return e.loader
}

func (e *engine) Interactions() interaction.Manager {
	return e.interactions
}

func (e *engine) Preloader() config.Preloader {
	return e.preloader
}

func (e *engine) CreateAsset(ctx context.Context, desc asset.Descriptor) (*asset.LiveAsset, error) {
	return e.pipeline.Create(ctx, desc)
}

// lookup resolves a scene-graph node to its owning live asset across every
// mounted track.
func (e *engine) lookup(o object.Object) *asset.LiveAsset {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.tracks {
		if la := m.Lookup(o); la != nil {
			return la
		}
	}
	return nil
}

func (e *engine) AddTrack(key int) scene.Manager {
	m := scene.New(
		scene.WithPipeline(e.pipeline),
		scene.WithRegistry(e.registry),
		scene.WithLogger(e.logger),
	)
	e.mu.Lock()
	e.tracks[key] = m
	e.mu.Unlock()
	return m
}

func (e *engine) RemoveTrack(key int) {
	e.mu.Lock()
	m := e.tracks[key]
	delete(e.tracks, key)
	e.mu.Unlock()
	if m != nil {
		m.Teardown()
	}
}

func (e *engine) Track(key int) scene.Manager {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracks[key]
}

func (e *engine) Tracks() map[int]scene.Manager {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Manager, len(e.tracks))
	for k, v := range e.tracks {
		cp[k] = v
	}
	return cp
}

func (e *engine) MountMode(ctx context.Context, mode *config.Mode) ([]scene.Manager, error) {
	managers := make([]scene.Manager, 0, len(mode.Tracks))
	var firstErr error
	for i, track := range mode.Tracks {
		m := e.AddTrack(i)
		m.SetScenes(track.Scenes)
		if len(track.Scenes) > 0 {
			if err := m.SwitchScene(ctx, track.Scenes[0].SceneID); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		managers = append(managers, m)
	}
	return managers, firstErr
}

func (e *engine) Update(deltaTime float64) {
	e.registry.TickAll(deltaTime)
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Close() error {
	e.Quit()
	if e.ownsCache && e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, animation, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastTick).Seconds()
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) animation loop in its own
// goroutine. Every registered mixer advances before the render callback fires,
// so a frame always observes fully updated animation state.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the animation goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("animation goroutine recovered from panic", zap.Any("panic", r))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := now.Sub(lastRender).Seconds()
			lastRender = now

			e.registry.TickAll(dt)

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Send to channel for immediate update in running engine loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float64)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each animation frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float64)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional animation frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
