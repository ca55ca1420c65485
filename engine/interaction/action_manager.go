// package interaction turns intersection results from an input collaborator
// into asset behavior: the default play/pause toggle, windowed clip playback,
// loop sounds, and dispatch to registered handlers for named interaction
// types.
package interaction

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/asset"
	"github.com/Carmen-Shannon/arc-go/engine/cache"
	"github.com/Carmen-Shannon/arc-go/engine/media"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/object"
)

// windowSlack pads the fallback stop timer past the window's nominal length
// so the boundary crossing in the tick loop normally wins.
const windowSlack = 250 * time.Millisecond

// Hit is one intersection from the input collaborator, nearest-first ordering
// is the caller's responsibility.
type Hit struct {
	// Object is the intersected node.
	Object object.Object

	// Distance is the intersection distance, informational only.
	Distance float64
}

// Lookup resolves a node to the live asset that owns it, nil when unowned.
type Lookup func(object.Object) *asset.LiveAsset

// Handler executes a named interaction type for the tapped asset.
type Handler func(ctx context.Context, m Manager, la *asset.LiveAsset)

// managerImpl is the implementation of the Manager interface.
type managerImpl struct {
	lookup Lookup
	cache  cache.Cache
	logger *zap.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	sounds   map[uint64]*media.AudioHandle
}

// Manager routes taps to asset interactions.
type Manager interface {
	// HandleTap walks the hits nearest-first, resolves each to its owning
	// asset through the node's ancestor chain, and executes the first
	// interactive asset's behavior. Hidden nodes and interaction-free assets
	// are skipped.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for payloads the interaction resolves
	//   - hits: the intersections, nearest first
	//
	// Returns:
	//   - bool: true when an interaction executed
	HandleTap(ctx context.Context, hits []Hit) bool

	// RegisterHandler installs the handler for a named interaction type,
	// replacing any previous registration.
	//
	// Parameters:
	//   - typ: the interaction type name
	//   - h: the handler to run for assets declaring that type
	RegisterHandler(typ string, h Handler)

	// PlayWindow plays [start, end] of the asset's interaction clip. With loop
	// set the window repeats until stopped; otherwise playback pins on the
	// window end and onDone fires exactly once. A fallback timer covers the
	// one-shot case when the tick loop stalls.
	//
	// Parameters:
	//   - la: the asset whose action plays
	//   - start: the window start in seconds
	//   - end: the window end in seconds
	//   - loop: whether the window repeats
	//   - onDone: completion callback for one-shot playback, may be nil
	PlayWindow(la *asset.LiveAsset, start, end float64, loop bool, onDone func())

	// StopInteraction halts the asset's interaction playback and its loop
	// sound.
	//
	// Parameters:
	//   - la: the asset to stop
	StopInteraction(la *asset.LiveAsset)
}

var _ Manager = &managerImpl{}

// New creates a Manager with the provided options applied.
//
// Parameters:
//   - options: functional options for manager configuration (lookup, cache, logger)
//
// Returns:
//   - Manager: the newly created manager
func New(options ...BuilderOption) Manager {
	m := &managerImpl{
		logger:   zap.NewNop(),
		handlers: make(map[string]Handler),
		sounds:   make(map[uint64]*media.AudioHandle),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *managerImpl) RegisterHandler(typ string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[typ] = h
}

func (m *managerImpl) HandleTap(ctx context.Context, hits []Hit) bool {
	for _, hit := range hits {
		if hit.Object == nil || !hit.Object.WorldVisible() {
			continue
		}

		la := m.resolveOwner(hit.Object)
		if la == nil || !la.Alive() || la.Descriptor.Action == nil {
			continue
		}

		action := la.Descriptor.Action
		if action.Type != "" {
			m.mu.Lock()
			h := m.handlers[action.Type]
			m.mu.Unlock()
			if h == nil {
				m.logger.Warn("no handler for interaction type",
					zap.String("asset_id", la.Descriptor.AssetID),
					zap.String("type", action.Type),
				)
				continue
			}
			h(ctx, m, la)
			return true
		}

		m.toggle(ctx, la)
		return true
	}
	return false
}

// resolveOwner finds the asset owning a node by checking the node itself and
// then its ancestors, so taps on nested model nodes land on the asset root.
func (m *managerImpl) resolveOwner(o object.Object) *asset.LiveAsset {
	if m.lookup == nil {
		return nil
	}
	if la := m.lookup(o); la != nil {
		return la
	}
	for _, p := range o.Ancestors() {
		if la := m.lookup(p); la != nil {
			return la
		}
	}
	return nil
}

// toggle is the default interaction: stop the clip if it is running, start it
// otherwise. Assets without a clip toggle their media playback instead.
func (m *managerImpl) toggle(ctx context.Context, la *asset.LiveAsset) {
	a := la.Action
	if a == nil {
		m.toggleMedia(la)
		return
	}

	if a.IsRunning() {
		m.StopInteraction(la)
		return
	}

	spec := la.Descriptor.Action
	if spec.Windowed() {
		start, end := spec.Window(a.Clip().Duration)
		m.PlayWindow(la, start, end, spec.LoopEnabled(), nil)
	} else {
		a.Stop()
		if spec.LoopEnabled() {
			a.SetLoop(mixer.LoopRepeat)
		} else {
			a.SetLoop(mixer.LoopOnce)
			a.SetClampWhenFinished(true)
		}
		a.Play()
	}

	if spec.LoopSound != "" {
		m.playLoopSound(ctx, la)
	}
}

func (m *managerImpl) toggleMedia(la *asset.LiveAsset) {
	playing := (la.Video != nil && la.Video.Playing()) || (la.Audio != nil && la.Audio.Playing())
	if playing {
		la.Pause()
	} else {
		la.Play()
	}
}

func (m *managerImpl) PlayWindow(la *asset.LiveAsset, start, end float64, loop bool, onDone func()) {
	a := la.Action
	if a == nil {
		return
	}

	a.Stop()
	epoch := a.Epoch()

	var once sync.Once
	done := func() {
		once.Do(func() {
			m.stopLoopSound(la)
			if onDone != nil {
				onDone()
			}
		})
	}

	// still wanted: the asset is attached and no later Stop or PlayWindow
	// has claimed the action
	wanted := func() bool {
		return la.Alive() && a.Epoch() == epoch
	}

	a.SetWindowEnd(end)
	a.SetLoopHandler(func() {
		if !wanted() {
			done()
			return
		}
		if loop {
			a.SetTime(start)
			a.Play()
			return
		}
		// pinned on the window end by the boundary crossing
		done()
	})

	if !loop {
		// fallback for a stalled tick loop; a timer on a looping window would
		// kill playback that is meant to keep going
		duration := time.Duration((end-start)*float64(time.Second)) + windowSlack
		time.AfterFunc(duration, func() {
			if wanted() && a.IsRunning() {
				a.Pause()
				a.SetTime(end)
			}
			if a.Epoch() == epoch {
				done()
			}
		})
	}

	a.SetTime(start)
	a.Play()
}

func (m *managerImpl) StopInteraction(la *asset.LiveAsset) {
	if a := la.Action; a != nil {
		a.Stop()
		a.SetWindowEnd(0)
		a.SetLoopHandler(nil)
	}
	m.stopLoopSound(la)
}

// playLoopSound starts the interaction's loop sound, decoding and caching the
// handle on first use.
func (m *managerImpl) playLoopSound(ctx context.Context, la *asset.LiveAsset) {
	key := la.Object.ID()

	m.mu.Lock()
	handle := m.sounds[key]
	m.mu.Unlock()

	if handle == nil {
		if m.cache == nil {
			return
		}
		url := la.Descriptor.Action.LoopSound
		data, err := m.cache.Resolve(ctx, url)
		if err != nil {
			m.logger.Warn("loop sound fetch failed",
				zap.String("asset_id", la.Descriptor.AssetID),
				zap.Error(err),
			)
			return
		}
		handle, err = media.NewAudioHandle(data)
		if err != nil {
			m.logger.Warn("loop sound decode failed",
				zap.String("asset_id", la.Descriptor.AssetID),
				zap.Error(err),
			)
			return
		}
		m.mu.Lock()
		m.sounds[key] = handle
		m.mu.Unlock()
	}

	handle.Play()
}

func (m *managerImpl) stopLoopSound(la *asset.LiveAsset) {
	m.mu.Lock()
	handle := m.sounds[la.Object.ID()]
	m.mu.Unlock()
	if handle != nil {
		handle.Pause()
	}
}
