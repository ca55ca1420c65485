package interaction

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/arc-go/engine/asset"
	"github.com/Carmen-Shannon/arc-go/engine/cache"
	"github.com/Carmen-Shannon/arc-go/engine/loader"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/object"
)

const animatedModel = `{
	"asset": {"version": "2.0"},
	"scenes": [{"nodes": [0]}],
	"nodes": [{"name": "rig", "children": [1]}, {"name": "paw"}],
	"accessors": [
		{"componentType": 5126, "count": 2, "type": "SCALAR", "max": [10.0], "min": [0]}
	],
	"animations": [
		{
			"name": "Dance",
			"channels": [{"sampler": 0, "target": {"node": 0, "path": "rotation"}}],
			"samplers": [{"input": 0, "output": 0}]
		}
	]
}`

func mp4Payload(width, height uint32) []byte {
	box := func(name string, payload []byte) []byte {
		b := make([]byte, 8+len(payload))
		binary.BigEndian.PutUint32(b, uint32(len(b)))
		copy(b[4:8], name)
		copy(b[8:], payload)
		return b
	}
	tkhd := make([]byte, 84)
	binary.BigEndian.PutUint32(tkhd[76:], width<<16)
	binary.BigEndian.PutUint32(tkhd[80:], height<<16)
	out := box("ftyp", []byte("isom\x00\x00\x00\x00"))
	return append(out, box("moov", box("trak", box("tkhd", tkhd)))...)
}

type staticFetcher map[string][]byte

func (f staticFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f[url]
	if !ok {
		return nil, &cache.FetchError{URL: url, Status: 404}
	}
	return data, nil
}

// rig bundles the pieces a tap test needs.
type rig struct {
	manager Manager
	owners  map[uint64]*asset.LiveAsset
	create  func(t *testing.T, d asset.Descriptor) *asset.LiveAsset
}

func newRig(t *testing.T) *rig {
	t.Helper()
	c, err := cache.New(cache.WithFetcher(staticFetcher{
		"https://cdn.example/rig.gltf": []byte(animatedModel),
		"https://cdn.example/clip.mp4": mp4Payload(320, 240),
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	pipe := asset.NewPipeline(
		asset.WithCache(c),
		asset.WithLoader(loader.New(loader.WithCache(c))),
		asset.WithRegistry(mixer.NewRegistry()),
	)

	r := &rig{owners: make(map[uint64]*asset.LiveAsset)}
	r.manager = New(
		WithLookup(func(o object.Object) *asset.LiveAsset { return r.owners[o.ID()] }),
		WithCache(c),
	)
	r.create = func(t *testing.T, d asset.Descriptor) *asset.LiveAsset {
		la, err := pipe.Create(context.Background(), d)
		require.NoError(t, err)
		require.NotNil(t, la)
		r.owners[la.Object.ID()] = la
		if la.HitProxy != nil {
			r.owners[la.HitProxy.ID()] = la
		}
		return la
	}
	return r
}

func modelDescriptor(action *asset.Interaction) asset.Descriptor {
	return asset.Descriptor{
		AssetID: "rig",
		Type:    asset.TypeModel,
		Src:     "https://cdn.example/rig.gltf",
		Action:  action,
	}
}

func TestTapTogglesAnimation(t *testing.T) {
	r := newRig(t)
	la := r.create(t, modelDescriptor(&asset.Interaction{AssetAnimation: "Dance"}))

	ctx := context.Background()
	handled := r.manager.HandleTap(ctx, []Hit{{Object: la.HitProxy}})
	assert.True(t, handled)
	assert.True(t, la.Action.IsRunning())

	handled = r.manager.HandleTap(ctx, []Hit{{Object: la.HitProxy}})
	assert.True(t, handled)
	assert.False(t, la.Action.IsRunning())
}

func TestTapSkipsHiddenObjects(t *testing.T) {
	r := newRig(t)
	la := r.create(t, modelDescriptor(&asset.Interaction{AssetAnimation: "Dance"}))
	la.Object.SetVisible(false)

	handled := r.manager.HandleTap(context.Background(), []Hit{{Object: la.HitProxy}})
	assert.False(t, handled)
	assert.False(t, la.Action.IsRunning())
}

func TestTapResolvesNestedNodes(t *testing.T) {
	r := newRig(t)
	la := r.create(t, modelDescriptor(&asset.Interaction{AssetAnimation: "Dance"}))

	// dig out a leaf of the instantiated model subtree
	instance := la.Object.Children()[0]
	leaf := instance.Children()[0].Children()[0]
	assert.Equal(t, "paw", leaf.Name())

	handled := r.manager.HandleTap(context.Background(), []Hit{{Object: leaf}})
	assert.True(t, handled)
	assert.True(t, la.Action.IsRunning())
}

func TestTapFirstInteractiveHitWins(t *testing.T) {
	r := newRig(t)
	inert := r.create(t, asset.Descriptor{
		AssetID: "inert",
		Type:    asset.TypeModel,
		Src:     "https://cdn.example/rig.gltf",
	})
	clickable := r.create(t, modelDescriptor(&asset.Interaction{AssetAnimation: "Dance"}))

	handled := r.manager.HandleTap(context.Background(), []Hit{
		{Object: inert.Object, Distance: 1},
		{Object: clickable.Object, Distance: 2},
	})
	assert.True(t, handled)
	assert.True(t, clickable.Action.IsRunning())
}

func TestTapNoHits(t *testing.T) {
	r := newRig(t)
	assert.False(t, r.manager.HandleTap(context.Background(), nil))
}

func TestWindowedOneShot(t *testing.T) {
	r := newRig(t)
	start, end, loop := 2.0, 3.0, false
	la := r.create(t, modelDescriptor(&asset.Interaction{
		AssetAnimation: "Dance",
		StartTime:      &start,
		EndTime:        &end,
		Loop:           &loop,
	}))

	ctx := context.Background()
	require.True(t, r.manager.HandleTap(ctx, []Hit{{Object: la.HitProxy}}))
	assert.InDelta(t, 2.0, la.Action.Time(), 1e-9)
	assert.True(t, la.Action.IsRunning())

	// drive past the window end, playback pins there
	la.Mixer.Update(1.5)
	assert.InDelta(t, 3.0, la.Action.Time(), 1e-9)
	assert.False(t, la.Action.IsRunning())

	// a later tap restarts from the window start, not from zero
	require.True(t, r.manager.HandleTap(ctx, []Hit{{Object: la.HitProxy}}))
	assert.InDelta(t, 2.0, la.Action.Time(), 1e-9)
	assert.True(t, la.Action.IsRunning())
}

func TestWindowedLoopRepeats(t *testing.T) {
	r := newRig(t)
	start, end := 1.0, 2.0
	la := r.create(t, modelDescriptor(&asset.Interaction{
		AssetAnimation: "Dance",
		StartTime:      &start,
		EndTime:        &end,
	}))

	require.True(t, r.manager.HandleTap(context.Background(), []Hit{{Object: la.HitProxy}}))

	la.Mixer.Update(1.5)
	assert.InDelta(t, 1.0, la.Action.Time(), 1e-9)
	assert.True(t, la.Action.IsRunning())

	la.Mixer.Update(1.5)
	assert.True(t, la.Action.IsRunning())
}

func TestPlayWindowOnDoneFiresOnce(t *testing.T) {
	r := newRig(t)
	la := r.create(t, modelDescriptor(&asset.Interaction{AssetAnimation: "Dance"}))

	var doneCount int
	r.manager.PlayWindow(la, 0, 1, false, func() { doneCount++ })

	la.Mixer.Update(1.5)
	assert.Equal(t, 1, doneCount)
	la.Mixer.Update(1.5)
	assert.Equal(t, 1, doneCount)
}

func TestPlayWindowSupersededByStop(t *testing.T) {
	r := newRig(t)
	la := r.create(t, modelDescriptor(&asset.Interaction{AssetAnimation: "Dance"}))

	r.manager.PlayWindow(la, 0, 1, true, nil)
	require.True(t, la.Action.IsRunning())

	r.manager.StopInteraction(la)
	assert.False(t, la.Action.IsRunning())
	assert.Zero(t, la.Action.Time())

	// ticks after the stop must not revive the window
	la.Mixer.Update(5)
	assert.False(t, la.Action.IsRunning())
}

func TestTypedHandlerDispatch(t *testing.T) {
	r := newRig(t)
	la := r.create(t, modelDescriptor(&asset.Interaction{
		Type:           "slot_game",
		AssetAnimation: "Dance",
	}))

	var got *asset.LiveAsset
	r.manager.RegisterHandler("slot_game", func(_ context.Context, _ Manager, hit *asset.LiveAsset) {
		got = hit
	})

	handled := r.manager.HandleTap(context.Background(), []Hit{{Object: la.HitProxy}})
	assert.True(t, handled)
	assert.Same(t, la, got)
}

func TestUnregisteredTypedHandler(t *testing.T) {
	r := newRig(t)
	la := r.create(t, modelDescriptor(&asset.Interaction{
		Type:           "mystery",
		AssetAnimation: "Dance",
	}))

	handled := r.manager.HandleTap(context.Background(), []Hit{{Object: la.HitProxy}})
	assert.False(t, handled)
	assert.False(t, la.Action.IsRunning())
}

func TestTapTogglesVideoPlayback(t *testing.T) {
	r := newRig(t)
	la := r.create(t, asset.Descriptor{
		AssetID: "clip",
		Type:    asset.TypeVideo,
		Src:     "https://cdn.example/clip.mp4",
		Action:  &asset.Interaction{},
	})

	ctx := context.Background()
	require.True(t, r.manager.HandleTap(ctx, []Hit{{Object: la.HitProxy}}))
	assert.True(t, la.Video.Playing())

	require.True(t, r.manager.HandleTap(ctx, []Hit{{Object: la.HitProxy}}))
	assert.False(t, la.Video.Playing())
}
