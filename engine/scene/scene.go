// package scene owns the scene lifecycle: which scene is mounted under the
// tracked anchor, the fan-out that materializes its assets, and the teardown
// that releases them. Scene switches are generation-counted so a slow asset
// load from an abandoned switch can never attach to the scene that replaced it.
package scene

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/asset"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/object"
)

// State is the manager's lifecycle state.
type State int

const (
	// StateEmpty means no scene is mounted.
	StateEmpty State = iota
	// StateLoading means a switch is in progress.
	StateLoading
	// StateActive means a scene is fully mounted.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// NotFoundError reports a switch to a scene id that was never registered.
type NotFoundError struct {
	// SceneID is the unknown scene id.
	SceneID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scene %q not found", e.SceneID)
}

// manager implements the Manager interface.
type manager struct {
	pipeline asset.Pipeline
	registry mixer.Registry
	logger   *zap.Logger
	pool     worker.DynamicWorkerPool
	workers  int

	mu         sync.Mutex
	root       object.Object
	scenes     map[string]asset.SceneDescriptor
	current    string
	state      State
	generation uint64
	live       []*asset.LiveAsset
	owners     map[uint64]*asset.LiveAsset
}

// Manager mounts registered scenes one at a time under a root group node.
// Thread-safe for concurrent access.
type Manager interface {
	// SetScenes registers the switchable scene set, replacing any previous
	// registration. The mounted scene, if any, is left alone.
	//
	// Parameters:
	//   - scenes: the scene declarations, keyed by their scene ids
	SetScenes(scenes []asset.SceneDescriptor)

	// SwitchScene tears down the mounted scene and mounts the named one,
	// returning once every asset has loaded or failed. Assets that fail to
	// load are logged and skipped; the rest of the scene still mounts.
	// Switching to the already-active scene is a no-op.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for asset loading
	//   - sceneID: the id of the scene to mount
	//
	// Returns:
	//   - error: a *NotFoundError when the id was never registered
	SwitchScene(ctx context.Context, sceneID string) error

	// Current returns the id of the mounted scene. The id is recorded only
	// once every asset of the switch has settled, so a switch in flight
	// reports the previous value.
	//
	// Returns:
	//   - string: the scene id, empty when no scene is mounted
	Current() string

	// State returns the manager's lifecycle state.
	//
	// Returns:
	//   - State: the current state
	State() State

	// Live returns the mounted scene's live assets.
	//
	// Returns:
	//   - []*asset.LiveAsset: a copy of the live asset list
	Live() []*asset.LiveAsset

	// Lookup resolves a scene-graph node to the live asset that owns it.
	// Only nodes the manager attached (asset roots and their hit proxies)
	// resolve directly; callers walk ancestors for nested nodes.
	//
	// Parameters:
	//   - o: the node to resolve
	//
	// Returns:
	//   - *asset.LiveAsset: the owning asset, nil when the node is not indexed
	Lookup(o object.Object) *asset.LiveAsset

	// PlayAll starts playback on every live asset whose descriptor allows
	// autoplay. Called when the tracked target comes into view.
	PlayAll()

	// PauseAll suspends playback on every live asset. Called when the tracked
	// target leaves view.
	PauseAll()

	// Root returns the group node scenes mount under. Attach it to the
	// tracking anchor's group.
	//
	// Returns:
	//   - object.Object: the mount point
	Root() object.Object

	// Teardown destroys the mounted scene and returns the manager to empty.
	Teardown()
}

var _ Manager = &manager{}

// New creates a Manager with the provided options applied.
//
// Parameters:
//   - options: functional options for manager configuration (pipeline, registry, logger, workers)
//
// Returns:
//   - Manager: the newly created manager
func New(options ...BuilderOption) Manager {
	m := &manager{
		logger:  zap.NewNop(),
		workers: max(2, runtime.NumCPU()),
		root:    object.New(object.WithName("scene_root")),
		scenes:  make(map[string]asset.SceneDescriptor),
		owners:  make(map[uint64]*asset.LiveAsset),
	}
	for _, option := range options {
		option(m)
	}

	// Queue size of 256 accommodates typical scene asset counts with headroom.
	m.pool = worker.NewDynamicWorkerPool(m.workers, 256, 1*time.Second)
	return m
}

func (m *manager) SetScenes(scenes []asset.SceneDescriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes = make(map[string]asset.SceneDescriptor, len(scenes))
	for _, s := range scenes {
		m.scenes[s.SceneID] = s
	}
}

func (m *manager) SwitchScene(ctx context.Context, sceneID string) error {
	m.mu.Lock()
	if m.current == sceneID && m.state == StateActive {
		m.mu.Unlock()
		return nil
	}

	m.teardownLocked()

	desc, ok := m.scenes[sceneID]
	if !ok {
		m.mu.Unlock()
		return &NotFoundError{SceneID: sceneID}
	}

	m.generation++
	gen := m.generation
	m.state = StateLoading
	m.mu.Unlock()

	m.logger.Info("switching scene",
		zap.String("scene_id", sceneID),
		zap.Int("assets", len(desc.Assets)),
	)

	// Workers are reused across switches. A WaitGroup provides the barrier
	// since the pool has no per-batch completion signal.
	var wg sync.WaitGroup
	for i, d := range desc.Assets {
		wg.Add(1)
		dCap := d
		m.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				la, err := m.pipeline.Create(ctx, dCap)
				if err != nil {
					m.logger.Warn("asset load failed, skipping",
						zap.String("scene_id", sceneID),
						zap.String("asset_id", dCap.AssetID),
						zap.Error(err),
					)
					return nil, err
				}
				if la == nil {
					return nil, nil
				}
				m.attach(gen, la)
				return nil, nil
			},
		})
	}
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		// another switch superseded this one while assets were loading
		return nil
	}
	m.current = sceneID
	m.state = StateActive
	m.logger.Info("scene active",
		zap.String("scene_id", sceneID),
		zap.Int("live_assets", len(m.live)),
	)
	return nil
}

// attach mounts a loaded asset if its switch is still the latest one. Late
// arrivals from superseded switches are destroyed instead of attached.
func (m *manager) attach(gen uint64, la *asset.LiveAsset) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		la.Destroy(m.registry)
		m.logger.Debug("discarded late asset from superseded switch",
			zap.String("asset_id", la.Descriptor.AssetID),
		)
		return
	}

	m.root.Add(la.Object)
	m.live = append(m.live, la)
	m.owners[la.Object.ID()] = la
	if la.HitProxy != nil {
		m.owners[la.HitProxy.ID()] = la
	}
	m.mu.Unlock()

	// media starts the moment it mounts; target-lost pauses it later
	if la.Descriptor.AutoplayEnabled() {
		la.Play()
	}
}

func (m *manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *manager) Live() []*asset.LiveAsset {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]*asset.LiveAsset, len(m.live))
	copy(cp, m.live)
	return cp
}

func (m *manager) Lookup(o object.Object) *asset.LiveAsset {
	if o == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[o.ID()]
}

func (m *manager) PlayAll() {
	for _, la := range m.Live() {
		if la.Descriptor.AutoplayEnabled() {
			la.Play()
		}
	}
}

func (m *manager) PauseAll() {
	for _, la := range m.Live() {
		la.Pause()
	}
}

func (m *manager) Root() object.Object {
	return m.root
}

func (m *manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
}

// teardownLocked destroys every live asset and resets to empty. Bumping the
// generation here orphans any loads still in flight for the old scene.
func (m *manager) teardownLocked() {
	m.generation++
	for _, la := range m.live {
		la.Destroy(m.registry)
	}
	m.live = nil
	m.owners = make(map[uint64]*asset.LiveAsset)
	m.root.Clear()
	m.current = ""
	m.state = StateEmpty
}
