// package loader turns cached glTF/GLB payloads into model blueprints: the
// node hierarchy plus named animation clips with their real durations. Parsed
// blueprints are memoized per URL so repeated placements share one parse.
package loader

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/model"
)

// loaderImpl is the implementation of the Loader interface.
type loaderImpl struct {
	cache  cache.Cache
	logger *zap.Logger

	mu     sync.RWMutex
	models map[string]*model.Model
}

// Loader resolves model URLs into parsed, shared blueprints.
type Loader interface {
	// Load resolves the payload behind a model URL and parses it into a
	// blueprint. Parsed blueprints are memoized, so only the first call per
	// URL pays for the parse.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for the payload resolution
	//   - url: the model URL
	//
	// Returns:
	//   - *model.Model: the parsed blueprint
	//   - error: any error resolving or parsing the payload
	Load(ctx context.Context, url string) (*model.Model, error)

	// LoadBytes parses an in-memory payload into a blueprint without touching
	// the cache. The blueprint is memoized under the given name.
	//
	// Parameters:
	//   - name: the key to memoize the blueprint under
	//   - data: the raw glTF or GLB payload
	//
	// Returns:
	//   - *model.Model: the parsed blueprint
	//   - error: any error parsing the payload
	LoadBytes(name string, data []byte) (*model.Model, error)

	// Get returns a previously parsed blueprint without loading anything.
	//
	// Parameters:
	//   - url: the URL or name the blueprint was loaded under
	//
	// Returns:
	//   - *model.Model: the blueprint, nil when absent
	//   - bool: true when the blueprint exists
	Get(url string) (*model.Model, bool)
}

var _ Loader = &loaderImpl{}

// New creates a Loader with the provided options applied.
//
// Parameters:
//   - options: functional options for loader configuration (cache, logger)
//
// Returns:
//   - Loader: the newly created loader
func New(options ...BuilderOption) Loader {
	l := &loaderImpl{
		logger: zap.NewNop(),
		models: make(map[string]*model.Model),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loaderImpl) Load(ctx context.Context, url string) (*model.Model, error) {
	if m, ok := l.Get(url); ok {
		return m, nil
	}
	if l.cache == nil {
		return nil, fmt.Errorf("load model %q: loader has no cache", url)
	}

	data, err := l.cache.Resolve(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", url, err)
	}
	return l.LoadBytes(url, data)
}

func (l *loaderImpl) LoadBytes(name string, data []byte) (*model.Model, error) {
	p := newGLTFParser()
	if err := p.Parse(data); err != nil {
		return nil, fmt.Errorf("parse model %q: %w", name, err)
	}

	m, err := buildModel(name, p)
	if err != nil {
		return nil, fmt.Errorf("build model %q: %w", name, err)
	}

	l.mu.Lock()
	l.models[name] = m
	l.mu.Unlock()

	l.logger.Debug("model parsed",
		zap.String("name", name),
		zap.Int("nodes", len(m.Nodes)),
		zap.Int("clips", len(m.Clips)),
	)
	return m, nil
}

func (l *loaderImpl) Get(url string) (*model.Model, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.models[url]
	return m, ok
}

// buildModel converts a parsed document into a blueprint.
func buildModel(name string, p gltfParser) (*model.Model, error) {
	doc := p.Document()

	m := &model.Model{
		Name:  name,
		Nodes: make([]model.Node, len(doc.Nodes)),
	}

	for i, n := range doc.Nodes {
		node := model.Node{
			Name:  n.Name,
			Scale: mgl32.Vec3{1, 1, 1},
		}
		if n.Translation != nil {
			node.Translation = mgl32.Vec3{n.Translation[0], n.Translation[1], n.Translation[2]}
		}
		if n.Rotation != nil {
			node.Rotation = eulerFromQuat(*n.Rotation)
		}
		if n.Scale != nil {
			node.Scale = mgl32.Vec3{n.Scale[0], n.Scale[1], n.Scale[2]}
		}
		node.Children = append(node.Children, n.Children...)
		m.Nodes[i] = node
	}

	m.Roots = documentRoots(doc)

	for i, anim := range doc.Animations {
		dur, err := animationDuration(p, &doc.Animations[i])
		if err != nil {
			return nil, err
		}
		clipName := anim.Name
		if clipName == "" {
			clipName = fmt.Sprintf("clip_%d", i)
		}
		m.Clips = append(m.Clips, mixer.Clip{Name: clipName, Duration: dur})
	}

	return m, nil
}

// documentRoots returns the root node indices: the default scene's node list
// when present, otherwise every node no other node claims as a child.
func documentRoots(doc *gltfDocument) []int {
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx >= 0 && sceneIdx < len(doc.Scenes) && len(doc.Scenes[sceneIdx].Nodes) > 0 {
		return doc.Scenes[sceneIdx].Nodes
	}

	claimed := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			claimed[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !claimed[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// animationDuration returns the clip length: the largest keyframe time across
// the animation's samplers. The accessor max is used when the document carries
// it, otherwise the keyframe times are scanned.
func animationDuration(p gltfParser, anim *gltfAnimation) (float64, error) {
	doc := p.Document()
	var dur float64
	for _, s := range anim.Samplers {
		if s.Input < 0 || s.Input >= len(doc.Accessors) {
			return 0, fmt.Errorf("animation %q: input accessor %d out of range", anim.Name, s.Input)
		}
		acc := &doc.Accessors[s.Input]
		if len(acc.Max) > 0 {
			dur = math.Max(dur, float64(acc.Max[0]))
			continue
		}
		times, err := p.ReadScalarAccessor(s.Input)
		if err != nil {
			return 0, fmt.Errorf("animation %q: %w", anim.Name, err)
		}
		for _, t := range times {
			dur = math.Max(dur, float64(t))
		}
	}
	return dur, nil
}

// eulerFromQuat converts a unit quaternion (x, y, z, w) to Euler angles in
// radians, extracted in ZYX order.
func eulerFromQuat(q [4]float32) mgl32.Vec3 {
	x, y, z, w := float64(q[0]), float64(q[1]), float64(q[2]), float64(q[3])

	sinrCosp := 2 * (w*x + y*z)
	cosrCosp := 1 - 2*(x*x+y*y)
	roll := math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (w*y - z*x)
	var pitch float64
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (w*z + x*y)
	cosyCosp := 1 - 2*(y*y+z*z)
	yaw := math.Atan2(sinyCosp, cosyCosp)

	return mgl32.Vec3{float32(roll), float32(pitch), float32(yaw)}
}
