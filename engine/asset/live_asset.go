package asset

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/arc-go/engine/media"
	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/model"
	"github.com/Carmen-Shannon/arc-go/engine/object"
)

// Surface is the computed planar presentation of an image or video asset:
// world-unit extents derived from the payload's aspect ratio, plus opacity.
type Surface struct {
	// Width is the surface width in world units.
	Width float64

	// Height is the surface height in world units.
	Height float64

	// Opacity is the surface opacity in [0, 1].
	Opacity float64
}

// LiveAsset is one placed instance of a descriptor: the scene-graph node plus
// whatever runtime state the asset type needs. Fields not applicable to the
// type stay nil (an image has no mixer, an audio track has no surface).
type LiveAsset struct {
	// Descriptor is the declaration this instance was built from.
	Descriptor Descriptor

	// Object is the asset's scene-graph node.
	Object object.Object

	// HitProxy is the enlarged invisible-payload child used to make small
	// assets tappable, nil when the asset has no interaction.
	HitProxy object.Object

	// Surface is the planar presentation, nil for models and audio.
	Surface *Surface

	// Model is the shared blueprint this instance was built from, nil for
	// non-model assets.
	Model *model.Model

	// Mixer drives the instance's animations, nil for assets without clips.
	Mixer *mixer.Mixer

	// Action is the interaction clip's action, nil when there is none.
	Action *mixer.Action

	// Video is the playback handle for video assets.
	Video *media.VideoHandle

	// Audio is the playback handle for audio assets.
	Audio *media.AudioHandle

	alive atomic.Bool
}

// Alive reports whether the asset is still attached and usable. Interaction
// and playback paths check this before acting on late callbacks.
//
// Returns:
//   - bool: true until Destroy runs
func (la *LiveAsset) Alive() bool {
	return la.alive.Load()
}

// Play starts the asset's media playback. Models are driven by their actions
// and are unaffected. Idempotent.
func (la *LiveAsset) Play() {
	if !la.Alive() {
		return
	}
	if la.Video != nil {
		la.Video.Play()
	}
	if la.Audio != nil {
		la.Audio.Play()
	}
}

// Pause suspends the asset's media playback. Idempotent.
func (la *LiveAsset) Pause() {
	if la.Video != nil {
		la.Video.Pause()
	}
	if la.Audio != nil {
		la.Audio.Pause()
	}
}

// Destroy releases the asset exactly once: playback stops, the mixer leaves
// the tick set, and the node detaches from its parent. Later calls and late
// callbacks observing Alive() == false are no-ops.
//
// Parameters:
//   - registry: the tick registry the asset's mixer was registered with
func (la *LiveAsset) Destroy(registry mixer.Registry) {
	if !la.alive.CompareAndSwap(true, false) {
		return
	}

	la.Pause()
	if la.Mixer != nil {
		la.Mixer.StopAll()
		if registry != nil {
			registry.Unregister(la.Mixer)
		}
	}
	if la.Object != nil {
		if p := la.Object.Parent(); p != nil {
			p.Remove(la.Object)
		}
	}
}
