package scene

import (
	"sync"

	"github.com/Carmen-Shannon/arc-go/engine/object"
)

// trackingAnchor implements the Anchor interface.
type trackingAnchor struct {
	mu    sync.Mutex
	group object.Object
	found []func()
	lost  []func()
}

// Anchor is the bridge to an image-tracking collaborator: a group node that
// follows a tracked target, plus found/lost notifications. The tracking layer
// calls Found and Lost; the runtime reacts through the registered handlers.
type Anchor interface {
	// Group returns the node that follows the tracked target.
	//
	// Returns:
	//   - object.Object: the anchor's group node
	Group() object.Object

	// OnTargetFound registers a handler for target acquisition.
	//
	// Parameters:
	//   - fn: called every time the target comes into view
	OnTargetFound(fn func())

	// OnTargetLost registers a handler for target loss.
	//
	// Parameters:
	//   - fn: called every time the target leaves view
	OnTargetLost(fn func())

	// Found reports target acquisition: the group becomes visible and the
	// found handlers fire.
	Found()

	// Lost reports target loss: the group hides and the lost handlers fire.
	Lost()
}

var _ Anchor = &trackingAnchor{}

// NewAnchor creates an anchor whose group starts hidden, matching a target
// that is not yet in view.
//
// Parameters:
//   - name: the group node's name
//
// Returns:
//   - Anchor: the newly created anchor
func NewAnchor(name string) Anchor {
	return &trackingAnchor{
		group: object.New(object.WithName(name), object.WithVisible(false)),
	}
}

func (a *trackingAnchor) Group() object.Object {
	return a.group
}

func (a *trackingAnchor) OnTargetFound(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.found = append(a.found, fn)
}

func (a *trackingAnchor) OnTargetLost(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lost = append(a.lost, fn)
}

func (a *trackingAnchor) Found() {
	a.group.SetVisible(true)
	for _, fn := range a.handlers(true) {
		fn()
	}
}

func (a *trackingAnchor) Lost() {
	a.group.SetVisible(false)
	for _, fn := range a.handlers(false) {
		fn()
	}
}

func (a *trackingAnchor) handlers(found bool) []func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	src := a.lost
	if found {
		src = a.found
	}
	cp := make([]func(), len(src))
	copy(cp, src)
	return cp
}

// Bind mounts the manager's root under the anchor and wires target
// notifications to scene-wide play/pause.
//
// Parameters:
//   - a: the tracking anchor
//   - m: the scene manager to drive
func Bind(a Anchor, m Manager) {
	a.Group().Add(m.Root())
	a.OnTargetFound(m.PlayAll)
	a.OnTargetLost(m.PauseAll)
}
