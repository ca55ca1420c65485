package media

import (
	"sync"

	"github.com/Carmen-Shannon/arc-go/common"
)

// VideoHandle is the playback surface for a video asset. The runtime does not
// decode frames; the handle carries the probed dimensions and the play state
// that a presenting collaborator drives the actual playback from.
//
// Videos present as looping, muted, inline surfaces.
type VideoHandle struct {
	mu      sync.Mutex
	playing bool

	dims common.Dimensions

	// Loop, Muted, and Inline mirror the presentation attributes applied to
	// every video surface.
	Loop   bool
	Muted  bool
	Inline bool
}

// NewVideoHandle probes the payload and returns a handle carrying its
// intrinsic dimensions.
//
// Parameters:
//   - data: the raw video payload
//
// Returns:
//   - *VideoHandle: the new handle, paused
//   - error: any error probing the payload
func NewVideoHandle(data []byte) (*VideoHandle, error) {
	dims, err := ProbeVideo(data)
	if err != nil {
		return nil, err
	}
	return &VideoHandle{
		dims:   dims,
		Loop:   true,
		Muted:  true,
		Inline: true,
	}, nil
}

// Play marks the video as playing. Idempotent.
func (v *VideoHandle) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = true
}

// Pause marks the video as paused. Idempotent.
func (v *VideoHandle) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
}

// Playing reports whether the video is currently marked playing.
//
// Returns:
//   - bool: true when playing
func (v *VideoHandle) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// Dimensions returns the probed intrinsic dimensions.
//
// Returns:
//   - common.Dimensions: the intrinsic width and height in pixels
func (v *VideoHandle) Dimensions() common.Dimensions {
	return v.dims
}

// AspectRatio returns the probed width/height ratio.
//
// Returns:
//   - float64: the aspect ratio, 0 when degenerate
func (v *VideoHandle) AspectRatio() float64 {
	return v.dims.Aspect()
}
