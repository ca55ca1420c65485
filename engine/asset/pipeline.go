package asset

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/arc-go/engine/cache"
	"github.com/Carmen-Shannon/arc-go/engine/loader"
	"github.com/Carmen-Shannon/arc-go/engine/media"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/object"
)

// hitProxyOffset pushes the proxy slightly in front of the payload so it wins
// intersection ties, and hitProxyScale oversizes it for fat-finger taps.
const (
	hitProxyOffset = 0.05
	hitProxyScale  = 1.5
)

// LoadError reports a failure to materialize one asset. The scene fan-out
// inspects these to skip the failed asset while keeping the rest.
type LoadError struct {
	// AssetID identifies the failed asset.
	AssetID string
	// URL is the payload URL that failed.
	URL string
	// Err is the underlying cause.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load asset %q from %s: %v", e.AssetID, e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// pipelineImpl is the implementation of the Pipeline interface.
type pipelineImpl struct {
	cache    cache.Cache
	loader   loader.Loader
	registry mixer.Registry
	logger   *zap.Logger
}

// Pipeline materializes descriptors into live assets.
type Pipeline interface {
	// Create resolves the descriptor's payload and assembles a live asset of
	// the matching type. A descriptor with an unrecognized type yields
	// (nil, nil) so scene assembly can skip it without failing the scene.
	//
	// Parameters:
	//   - ctx: cancellation/timeout control for payload resolution
	//   - desc: the asset declaration
	//
	// Returns:
	//   - *LiveAsset: the materialized asset, nil for unrecognized types
	//   - error: a *LoadError when the payload cannot be resolved or decoded
	Create(ctx context.Context, desc Descriptor) (*LiveAsset, error)
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates a Pipeline with the provided options applied.
//
// Parameters:
//   - options: functional options for pipeline configuration (cache, loader, registry, logger)
//
// Returns:
//   - Pipeline: the newly created pipeline
func NewPipeline(options ...PipelineOption) Pipeline {
	p := &pipelineImpl{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipelineImpl) Create(ctx context.Context, desc Descriptor) (*LiveAsset, error) {
	if err := desc.Validate(); err != nil {
		return nil, &LoadError{AssetID: desc.AssetID, URL: desc.Src, Err: err}
	}

	la := &LiveAsset{
		Descriptor: desc,
		Object: object.New(
			object.WithName(desc.AssetID),
			object.WithTransform(desc.Transform()),
		),
	}

	var err error
	switch desc.Type {
	case TypeImage:
		err = p.buildImage(ctx, la)
	case TypeVideo:
		err = p.buildVideo(ctx, la)
	case TypeModel:
		err = p.buildModel(ctx, la)
	case TypeAudio:
		err = p.buildAudio(ctx, la)
	default:
		p.logger.Warn("unknown asset type, skipping",
			zap.String("asset_id", desc.AssetID),
			zap.String("type", string(desc.Type)),
		)
		return nil, nil
	}
	if err != nil {
		return nil, &LoadError{AssetID: desc.AssetID, URL: desc.Src, Err: err}
	}

	if desc.Action != nil {
		la.HitProxy = newHitProxy(la)
		la.Object.Add(la.HitProxy)
	}

	la.alive.Store(true)
	p.logger.Debug("asset created",
		zap.String("asset_id", desc.AssetID),
		zap.String("type", string(desc.Type)),
	)
	return la, nil
}

// buildImage probes the payload and sizes a planar surface from its aspect
// ratio: the descriptor's first scale component is the width, the height
// follows the intrinsic proportions.
func (p *pipelineImpl) buildImage(ctx context.Context, la *LiveAsset) error {
	data, err := p.cache.Resolve(ctx, la.Descriptor.Src)
	if err != nil {
		return err
	}
	dims, err := media.ProbeImage(data)
	if err != nil {
		return err
	}
	la.Surface = surfaceFor(&la.Descriptor, dims.Aspect())
	return nil
}

func (p *pipelineImpl) buildVideo(ctx context.Context, la *LiveAsset) error {
	data, err := p.cache.Resolve(ctx, la.Descriptor.Src)
	if err != nil {
		return err
	}
	handle, err := media.NewVideoHandle(data)
	if err != nil {
		return err
	}
	la.Video = handle
	la.Surface = surfaceFor(&la.Descriptor, handle.AspectRatio())
	return nil
}

func (p *pipelineImpl) buildModel(ctx context.Context, la *LiveAsset) error {
	if p.loader == nil {
		return fmt.Errorf("pipeline has no model loader")
	}
	bp, err := p.loader.Load(ctx, la.Descriptor.Src)
	if err != nil {
		return err
	}
	la.Model = bp
	la.Object.Add(bp.NewInstance())

	if len(bp.Clips) == 0 {
		return nil
	}

	// the interaction clip when named, otherwise the first clip
	clip := bp.Clips[0]
	if a := la.Descriptor.Action; a != nil && a.AssetAnimation != "" {
		named, ok := bp.Clip(a.AssetAnimation)
		if !ok {
			return fmt.Errorf("animation %q not in model", a.AssetAnimation)
		}
		clip = named
	}

	// the mixer enters the tick set only once the build can no longer fail,
	// so a discarded asset never leaves one behind
	la.Mixer = mixer.NewMixer()
	if p.registry != nil {
		p.registry.Register(la.Mixer)
	}
	la.Action = la.Mixer.ClipAction(clip)
	la.Action.SetLoop(mixer.LoopRepeat)

	if la.Descriptor.AutoplayEnabled() && la.Descriptor.Action == nil {
		la.Action.Play()
	}
	return nil
}

func (p *pipelineImpl) buildAudio(ctx context.Context, la *LiveAsset) error {
	data, err := p.cache.Resolve(ctx, la.Descriptor.Src)
	if err != nil {
		return err
	}
	handle, err := media.NewAudioHandle(data)
	if err != nil {
		return err
	}
	la.Audio = handle
	return nil
}

// surfaceFor derives the planar extents: width comes from the descriptor's
// scale, height from the payload's aspect ratio. A degenerate aspect falls
// back to a square surface.
func surfaceFor(desc *Descriptor, aspect float64) *Surface {
	width := desc.Scale[0]
	if width == 0 {
		width = 1
	}
	height := width
	if aspect > 0 {
		height = width / aspect
	}
	return &Surface{Width: width, Height: height, Opacity: desc.OpacityValue()}
}

// newHitProxy builds the oversized invisible-payload child in front of the
// asset. The node itself stays visible so intersection tests still see it.
func newHitProxy(la *LiveAsset) object.Object {
	return object.New(
		object.WithName(la.Descriptor.AssetID+"_hit"),
		object.WithPosition(mgl32.Vec3{0, 0, hitProxyOffset}),
		object.WithScale(mgl32.Vec3{hitProxyScale, hitProxyScale, 1}),
	)
}
