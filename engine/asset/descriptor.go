// package asset covers the asset lifecycle: declarative descriptors in, live
// scene-attached instances out. The pipeline resolves payloads through the
// cache, probes or parses them per type, and assembles the runtime state each
// asset needs (surface sizing, animation mixer, media handles, hit proxy).
package asset

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/arc-go/common"
)

// Type discriminates how an asset's payload is interpreted.
type Type string

// Asset type values as they appear in scene documents.
const (
	TypeImage Type = "Image"
	TypeVideo Type = "Video"
	TypeModel Type = "3D Model"
	TypeAudio Type = "Audio"
)

// Window is a named sub-range of an animation clip in seconds.
type Window struct {
	// Start is the window's start time within the clip.
	Start float64 `json:"start_time" yaml:"start_time"`

	// End is the window's end time within the clip.
	End float64 `json:"end_time" yaml:"end_time"`
}

// Interaction describes what a tap on the asset does. An empty Type means the
// default toggle behavior; named types dispatch to registered handlers.
type Interaction struct {
	// Type selects a registered interaction handler, empty for the default toggle.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// AssetAnimation names the clip the interaction drives.
	AssetAnimation string `json:"asset_animation,omitempty" yaml:"asset_animation,omitempty"`

	// StartTime optionally restricts playback to a window starting here.
	StartTime *float64 `json:"start_time,omitempty" yaml:"start_time,omitempty"`

	// EndTime optionally restricts playback to a window ending here.
	EndTime *float64 `json:"end_time,omitempty" yaml:"end_time,omitempty"`

	// Loop controls whether windowed playback repeats. Defaults to true.
	Loop *bool `json:"loop,omitempty" yaml:"loop,omitempty"`

	// AnimationMap maps outcome keys to clip windows for outcome-driven
	// interactions.
	AnimationMap map[string]Window `json:"animation_map,omitempty" yaml:"animation_map,omitempty"`

	// LoopSound is the URL of a sound looped while the interaction runs.
	LoopSound string `json:"loop_sound,omitempty" yaml:"loop_sound,omitempty"`
}

// Windowed reports whether the interaction restricts playback to a sub-range.
//
// Returns:
//   - bool: true when a start or end time is set
func (i *Interaction) Windowed() bool {
	return i != nil && (i.StartTime != nil || i.EndTime != nil)
}

// Window returns the playback window, with the start defaulting to 0 and the
// end defaulting to the given clip duration.
//
// Parameters:
//   - clipDuration: the full clip length used when no end time is set
//
// Returns:
//   - float64: the window start in seconds
//   - float64: the window end in seconds
func (i *Interaction) Window(clipDuration float64) (float64, float64) {
	start, end := 0.0, clipDuration
	if i != nil && i.StartTime != nil {
		start = *i.StartTime
	}
	if i != nil && i.EndTime != nil {
		end = *i.EndTime
	}
	return start, end
}

// LoopEnabled reports whether windowed playback repeats. Unset means true.
//
// Returns:
//   - bool: true when playback should loop
func (i *Interaction) LoopEnabled() bool {
	return i == nil || i.Loop == nil || *i.Loop
}

// Descriptor declares one asset of a scene: what to load, where to place it,
// and how it reacts to taps. Descriptors come straight out of scene documents.
type Descriptor struct {
	// AssetID identifies the asset within its scene.
	AssetID string `json:"asset_id" yaml:"asset_id"`

	// Type discriminates the payload kind.
	Type Type `json:"type" yaml:"type"`

	// Src is the payload URL.
	Src string `json:"src" yaml:"src"`

	// Position is the placement translation.
	Position [3]float64 `json:"position,omitempty" yaml:"position,omitempty"`

	// Rotation holds Euler angles in radians (x, y, z).
	Rotation [3]float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`

	// Scale is the per-axis scale. Planar assets read only the first component
	// as their width reference.
	Scale [3]float64 `json:"scale,omitempty" yaml:"scale,omitempty"`

	// Opacity is the surface opacity in [0, 1]. Unset means fully opaque.
	Opacity *float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`

	// Autoplay controls whether playback starts on scene activation.
	// Unset means true.
	Autoplay *bool `json:"autoplay,omitempty" yaml:"autoplay,omitempty"`

	// Action is the asset's tap behavior, nil for inert assets.
	Action *Interaction `json:"action,omitempty" yaml:"action,omitempty"`
}

// Transform converts the descriptor's placement into a common.Transform.
// A zero scale is promoted to unit scale so un-annotated assets keep their
// natural size.
//
// Returns:
//   - common.Transform: the placement transform
func (d *Descriptor) Transform() common.Transform {
	t := common.Transform{
		Position: mgl32.Vec3{float32(d.Position[0]), float32(d.Position[1]), float32(d.Position[2])},
		Rotation: mgl32.Vec3{float32(d.Rotation[0]), float32(d.Rotation[1]), float32(d.Rotation[2])},
		Scale:    mgl32.Vec3{float32(d.Scale[0]), float32(d.Scale[1]), float32(d.Scale[2])},
	}
	if t.Scale == (mgl32.Vec3{}) {
		t.Scale = mgl32.Vec3{1, 1, 1}
	}
	return t
}

// OpacityValue returns the surface opacity, clamped to [0, 1], defaulting to 1.
//
// Returns:
//   - float64: the effective opacity
func (d *Descriptor) OpacityValue() float64 {
	if d.Opacity == nil {
		return 1
	}
	return common.Clamp(*d.Opacity, 0, 1)
}

// AutoplayEnabled reports whether the asset starts playing on activation.
// Unset means true.
//
// Returns:
//   - bool: true when playback starts automatically
func (d *Descriptor) AutoplayEnabled() bool {
	return d.Autoplay == nil || *d.Autoplay
}

// Validate checks the descriptor for structural problems before any payload
// is resolved.
//
// Returns:
//   - error: the first problem found, nil when the descriptor is well formed
func (d *Descriptor) Validate() error {
	if d.Src == "" {
		return fmt.Errorf("asset %q: missing src", d.AssetID)
	}
	if d.Opacity != nil && (*d.Opacity < 0 || *d.Opacity > 1) {
		return fmt.Errorf("asset %q: opacity %v outside [0, 1]", d.AssetID, *d.Opacity)
	}
	if a := d.Action; a != nil {
		if a.StartTime != nil && a.EndTime != nil && *a.StartTime > *a.EndTime {
			return fmt.Errorf("asset %q: window start %v after end %v", d.AssetID, *a.StartTime, *a.EndTime)
		}
		for key, w := range a.AnimationMap {
			if w.Start > w.End {
				return fmt.Errorf("asset %q: animation map %q start %v after end %v", d.AssetID, key, w.Start, w.End)
			}
		}
	}
	return nil
}

// SceneDescriptor declares one scene: an identifier plus the assets to place
// under its anchor.
type SceneDescriptor struct {
	// SceneID identifies the scene within its track.
	SceneID string `json:"scene_id" yaml:"scene_id"`

	// Assets are the scene's asset declarations.
	Assets []Descriptor `json:"assets" yaml:"assets"`
}
