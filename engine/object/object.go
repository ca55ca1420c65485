package object

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

var nextObjectID atomic.Uint64

// object implements the Object interface.
type object struct {
	id uint64

	mu       sync.RWMutex
	name     string
	visible  bool
	parent   Object
	children []Object

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3
}

// Object is a node in the scene-graph abstraction the runtime owns. It carries
// identity, a transform, visibility, and an explicit parent/child hierarchy.
// Rendering collaborators consume these nodes; the runtime never draws them itself.
//
// The ancestor chain is an ownership-chain query: interaction lookup walks it to
// find the owning asset of an arbitrary intersected node.
type Object interface {
	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uint64: the node ID, unique per process
	ID() uint64

	// Name returns the node's display/lookup name.
	//
	// Returns:
	//   - string: the node name
	Name() string

	// SetName sets the node's display/lookup name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Parent returns the node this node is attached to, or nil if detached.
	//
	// Returns:
	//   - Object: the parent node or nil
	Parent() Object

	// Children returns a copy of the node's direct children.
	//
	// Returns:
	//   - []Object: the child nodes
	Children() []Object

	// Add attaches a child to this node. A child already attached elsewhere is
	// detached from its previous parent first.
	//
	// Parameters:
	//   - child: the node to attach
	Add(child Object)

	// Remove detaches a direct child from this node. No-op if the node is not a child.
	//
	// Parameters:
	//   - child: the node to detach
	Remove(child Object)

	// Clear detaches every direct child and returns the detached set.
	//
	// Returns:
	//   - []Object: the nodes that were detached
	Clear() []Object

	// Ancestors returns the chain of parents from this node's direct parent up to
	// the root, nearest first.
	//
	// Returns:
	//   - []Object: the ancestor chain, empty when detached
	Ancestors() []Object

	// Position returns the node's translation in parent space.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition sets the node's translation in parent space.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Rotation returns the node's Euler rotation in radians (XYZ order).
	//
	// Returns:
	//   - mgl32.Vec3: the rotation angles
	Rotation() mgl32.Vec3

	// SetRotation sets the node's Euler rotation in radians (XYZ order).
	//
	// Parameters:
	//   - r: the new rotation angles
	SetRotation(r mgl32.Vec3)

	// Scale returns the node's per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale factors
	Scale() mgl32.Vec3

	// SetScale sets the node's per-axis scale.
	//
	// Parameters:
	//   - s: the new scale factors
	SetScale(s mgl32.Vec3)

	// Visible returns whether this node itself is flagged visible.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// SetVisible flags this node visible or hidden.
	//
	// Parameters:
	//   - visible: the new visibility
	SetVisible(visible bool)

	// WorldVisible reports whether this node and every ancestor are visible.
	// Hit processing uses this so nodes under a hidden anchor cannot be clicked.
	//
	// Returns:
	//   - bool: true when the whole chain up to the root is visible
	WorldVisible() bool

	setParent(p Object)
}

var _ Object = &object{}

// New creates a new scene-graph node with the provided options applied.
// Nodes default to visible with an identity transform (unit scale).
//
// Parameters:
//   - options: functional options for node configuration (name, transform, visibility)
//
// Returns:
//   - Object: the newly created node
func New(options ...BuilderOption) Object {
	o := &object{
		id:      nextObjectID.Add(1),
		visible: true,
		scale:   mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *object) ID() uint64 {
	return o.id
}

func (o *object) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.name
}

func (o *object) SetName(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.name = name
}

func (o *object) Parent() Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.parent
}

func (o *object) setParent(p Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.parent = p
}

func (o *object) Children() []Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	cp := make([]Object, len(o.children))
	copy(cp, o.children)
	return cp
}

func (o *object) Add(child Object) {
	if child == nil || child == Object(o) {
		return
	}
	if prev := child.Parent(); prev != nil {
		prev.Remove(child)
	}

	o.mu.Lock()
	o.children = append(o.children, child)
	o.mu.Unlock()

	child.setParent(o)
}

func (o *object) Remove(child Object) {
	if child == nil {
		return
	}

	o.mu.Lock()
	removed := false
	for i, c := range o.children {
		if c.ID() == child.ID() {
			o.children = append(o.children[:i], o.children[i+1:]...)
			removed = true
			break
		}
	}
	o.mu.Unlock()

	if removed {
		child.setParent(nil)
	}
}

func (o *object) Clear() []Object {
	o.mu.Lock()
	detached := o.children
	o.children = nil
	o.mu.Unlock()

	for _, c := range detached {
		c.setParent(nil)
	}
	return detached
}

func (o *object) Ancestors() []Object {
	var chain []Object
	for p := o.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p)
	}
	return chain
}

func (o *object) Position() mgl32.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.position
}

func (o *object) SetPosition(p mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = p
}

func (o *object) Rotation() mgl32.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rotation
}

func (o *object) SetRotation(r mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = r
}

func (o *object) Scale() mgl32.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scale
}

func (o *object) SetScale(s mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scale = s
}

func (o *object) Visible() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.visible
}

func (o *object) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = visible
}

func (o *object) WorldVisible() bool {
	if !o.Visible() {
		return false
	}
	for p := o.Parent(); p != nil; p = p.Parent() {
		if !p.Visible() {
			return false
		}
	}
	return true
}
