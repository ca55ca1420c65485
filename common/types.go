// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/go-gl/mathgl/mgl32"

// Transform bundles the spatial placement shared by asset descriptors and scene objects.
// Rotation is expressed as Euler angles in radians, applied in XYZ order.
type Transform struct {
	// Position is the object's translation in scene space.
	Position mgl32.Vec3
	// Rotation holds Euler angles in radians (x, y, z).
	Rotation mgl32.Vec3
	// Scale is the per-axis scale factor. Planar assets interpret only the first
	// component (as a width reference); models use all three.
	Scale mgl32.Vec3
}

// DefaultTransform returns an identity transform (zero position/rotation, unit scale).
//
// Returns:
//   - Transform: position and rotation zeroed, scale set to (1, 1, 1)
func DefaultTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Dimensions holds intrinsic pixel dimensions of a decoded media payload.
type Dimensions struct {
	// Width is the intrinsic width in pixels.
	Width int
	// Height is the intrinsic height in pixels.
	Height int
}

// Aspect returns the width/height ratio, or 0 when the dimensions are degenerate.
//
// Returns:
//   - float64: the aspect ratio (w/h), 0 if either dimension is <= 0
func (d Dimensions) Aspect() float64 {
	if d.Width <= 0 || d.Height <= 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}
