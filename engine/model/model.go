// package model holds parsed 3D model blueprints. A blueprint is immutable and
// shared; every placement in a scene instantiates its own node tree and its
// own animation state, so two scenes never fight over one object graph.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/arc-go/engine/mixer"
	"github.com/Carmen-Shannon/arc-go/engine/object"
)

// Node is one blueprint node: a local transform plus child indices into the
// owning Model's node table.
type Node struct {
	// Name is the node's name from the source document, may be empty.
	Name string

	// Translation is the node's local translation.
	Translation mgl32.Vec3

	// Rotation holds Euler angles in radians (x, y, z).
	Rotation mgl32.Vec3

	// Scale is the node's local scale.
	Scale mgl32.Vec3

	// Children are indices of child nodes in the model's node table.
	Children []int
}

// Model is a parsed, immutable model blueprint: the node hierarchy and the
// animation clips the document defines.
type Model struct {
	// Name identifies the model, usually derived from its source URL.
	Name string

	// Clips are the animation clips defined by the document.
	Clips []mixer.Clip

	// Nodes is the flattened node table.
	Nodes []Node

	// Roots are indices of the top-level nodes.
	Roots []int
}

// Clip looks up an animation clip by name.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - mixer.Clip: the matching clip
//   - bool: true when a clip with that name exists
func (m *Model) Clip(name string) (mixer.Clip, bool) {
	for _, c := range m.Clips {
		if c.Name == name {
			return c, true
		}
	}
	return mixer.Clip{}, false
}

// NewInstance builds a fresh object tree from the blueprint. Every call
// returns an independent hierarchy, so mutating one instance's transforms or
// visibility never leaks into another.
//
// Returns:
//   - object.Object: the root of the new instance, named after the model
func (m *Model) NewInstance() object.Object {
	root := object.New(object.WithName(m.Name))
	for _, idx := range m.Roots {
		if child := m.instantiate(idx); child != nil {
			root.Add(child)
		}
	}
	return root
}

func (m *Model) instantiate(idx int) object.Object {
	if idx < 0 || idx >= len(m.Nodes) {
		return nil
	}
	n := m.Nodes[idx]
	o := object.New(
		object.WithName(n.Name),
		object.WithPosition(n.Translation),
		object.WithRotation(n.Rotation),
		object.WithScale(n.Scale),
	)
	for _, c := range n.Children {
		if child := m.instantiate(c); child != nil {
			o.Add(child)
		}
	}
	return o
}
