package object

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/arc-go/common"
)

// BuilderOption is a functional option for configuring an Object via New.
type BuilderOption func(*object)

// WithName is an option builder that sets the node's name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - BuilderOption: a function that applies the name to a node
func WithName(name string) BuilderOption {
	return func(o *object) {
		o.name = name
	}
}

// WithPosition is an option builder that sets the node's translation.
//
// Parameters:
//   - p: the position in parent space
//
// Returns:
//   - BuilderOption: a function that applies the position to a node
func WithPosition(p mgl32.Vec3) BuilderOption {
	return func(o *object) {
		o.position = p
	}
}

// WithRotation is an option builder that sets the node's Euler rotation (radians, XYZ order).
//
// Parameters:
//   - r: the rotation angles
//
// Returns:
//   - BuilderOption: a function that applies the rotation to a node
func WithRotation(r mgl32.Vec3) BuilderOption {
	return func(o *object) {
		o.rotation = r
	}
}

// WithScale is an option builder that sets the node's per-axis scale.
//
// Parameters:
//   - s: the scale factors
//
// Returns:
//   - BuilderOption: a function that applies the scale to a node
func WithScale(s mgl32.Vec3) BuilderOption {
	return func(o *object) {
		o.scale = s
	}
}

// WithTransform is an option builder that applies a full common.Transform.
//
// Parameters:
//   - t: the transform holding position, rotation, and scale
//
// Returns:
//   - BuilderOption: a function that applies the transform to a node
func WithTransform(t common.Transform) BuilderOption {
	return func(o *object) {
		o.position = t.Position
		o.rotation = t.Rotation
		o.scale = t.Scale
	}
}

// WithVisible is an option builder that sets the node's initial visibility.
//
// Parameters:
//   - visible: true to start visible
//
// Returns:
//   - BuilderOption: a function that applies the visibility to a node
func WithVisible(visible bool) BuilderOption {
	return func(o *object) {
		o.visible = visible
	}
}
