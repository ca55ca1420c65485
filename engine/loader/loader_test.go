package loader

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
)

const gltfNoBufferFixture = `{
	"asset": {"version": "2.0"},
	"scene": 0,
	"scenes": [{"nodes": [0]}],
	"nodes": [
		{"name": "root", "children": [1], "translation": [0, 1, 0]},
		{"name": "wheel", "rotation": [0, 0, 0.7071068, 0.7071068]}
	],
	"accessors": [
		{"componentType": 5126, "count": 3, "type": "SCALAR", "max": [2.5], "min": [0]}
	],
	"animations": [
		{
			"name": "spin",
			"channels": [{"sampler": 0, "target": {"node": 1, "path": "rotation"}}],
			"samplers": [{"input": 0, "output": 0}]
		}
	]
}`

func TestLoadBytesBuildsBlueprint(t *testing.T) {
	l := New()
	m, err := l.LoadBytes("https://cdn.example/wheel.gltf", []byte(gltfNoBufferFixture))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/wheel.gltf", m.Name)
	require.Len(t, m.Nodes, 2)
	assert.Equal(t, []int{0}, m.Roots)
	assert.Equal(t, float32(1), m.Nodes[0].Translation.Y())

	// 90 degrees about Z
	assert.InDelta(t, math.Pi/2, float64(m.Nodes[1].Rotation.Z()), 1e-4)

	require.Len(t, m.Clips, 1)
	assert.Equal(t, "spin", m.Clips[0].Name)
	assert.InDelta(t, 2.5, m.Clips[0].Duration, 1e-9)

	got, ok := l.Get("https://cdn.example/wheel.gltf")
	require.True(t, ok)
	assert.Same(t, m, got)
}

// fixtureWithKeyframeBuffer builds a document whose animation input times live
// in an embedded base64 buffer, with no accessor max to shortcut from.
func fixtureWithKeyframeBuffer() string {
	times := []float32{0, 0.5, 1.25}
	raw := make([]byte, 4*len(times))
	for i, v := range times {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw)

	return fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"nodes": [{"name": "solo"}],
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": %d}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "SCALAR"}
		],
		"animations": [
			{
				"name": "bounce",
				"channels": [{"sampler": 0, "target": {"node": 0, "path": "translation"}}],
				"samplers": [{"input": 0, "output": 0}]
			}
		]
	}`, uri, len(raw), len(raw))
}

func TestLoadBytesReadsKeyframeTimes(t *testing.T) {
	l := New()
	m, err := l.LoadBytes("bounce.gltf", []byte(fixtureWithKeyframeBuffer()))
	require.NoError(t, err)

	require.Len(t, m.Clips, 1)
	assert.InDelta(t, 1.25, m.Clips[0].Duration, 1e-6)

	// no scenes in the document, parentless nodes become roots
	assert.Equal(t, []int{0}, m.Roots)
}

// glbFixture wraps glTF JSON in a GLB container.
func glbFixture(jsonDoc []byte) []byte {
	// chunks pad to 4-byte alignment
	padded := jsonDoc
	for len(padded)%4 != 0 {
		padded = append(padded, ' ')
	}

	total := 12 + 8 + len(padded)
	out := make([]byte, 0, total)

	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:], gltfGLBMagic)
	binary.LittleEndian.PutUint32(header[4:], gltfGLBVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(total))
	out = append(out, header...)

	chunk := make([]byte, 8)
	binary.LittleEndian.PutUint32(chunk[0:], uint32(len(padded)))
	binary.LittleEndian.PutUint32(chunk[4:], gltfGLBChunkJSON)
	out = append(out, chunk...)
	out = append(out, padded...)
	return out
}

func TestLoadBytesDetectsGLB(t *testing.T) {
	l := New()
	m, err := l.LoadBytes("wheel.glb", glbFixture([]byte(gltfNoBufferFixture)))
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 2)
	assert.Len(t, m.Clips, 1)
}

func TestLoadBytesRejectsBadVersion(t *testing.T) {
	l := New()
	_, err := l.LoadBytes("old.gltf", []byte(`{"asset": {"version": "1.0"}}`))
	assert.ErrorIs(t, err, errInvalidGLTFVersion)
}

type staticFetcher map[string][]byte

func (f staticFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f[url]
	if !ok {
		return nil, &cache.FetchError{URL: url, Status: 404}
	}
	return data, nil
}

func TestLoadResolvesThroughCache(t *testing.T) {
	c, err := cache.New(cache.WithFetcher(staticFetcher{
		"https://cdn.example/wheel.gltf": []byte(gltfNoBufferFixture),
	}))
	require.NoError(t, err)
	defer c.Close()

	l := New(WithCache(c))

	ctx := context.Background()
	m, err := l.Load(ctx, "https://cdn.example/wheel.gltf")
	require.NoError(t, err)
	assert.Len(t, m.Clips, 1)
	assert.True(t, c.Contains(ctx, "https://cdn.example/wheel.gltf"))

	again, err := l.Load(ctx, "https://cdn.example/wheel.gltf")
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestLoadMissingURL(t *testing.T) {
	c, err := cache.New(cache.WithFetcher(staticFetcher{}))
	require.NoError(t, err)
	defer c.Close()

	l := New(WithCache(c))
	_, err = l.Load(context.Background(), "https://cdn.example/gone.glb")
	var fe *cache.FetchError
	assert.ErrorAs(t, err, &fe)
}
