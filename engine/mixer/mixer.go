// package mixer drives clip-based animation playback on the runtime clock.
// A Mixer owns one Action per clip and advances them on Update; the Registry
// ticks every live Mixer once per frame so playback stays in lockstep with
// the render loop.
package mixer

import (
	"math"
	"sync"
)

// LoopMode selects what an Action does when its cursor reaches the end boundary.
type LoopMode int

const (
	// LoopRepeat wraps the cursor back to zero and keeps playing.
	LoopRepeat LoopMode = iota
	// LoopOnce stops at the boundary. With clamping enabled the cursor stays
	// pinned on the final frame instead of snapping back to zero.
	LoopOnce
)

// Clip describes a named animation track and its length in seconds.
type Clip struct {
	Name     string
	Duration float64
}

// Action is the playback state for a single clip: a time cursor, run/pause
// flags, loop mode, and an optional window boundary for playing a sub-range
// of the clip.
//
// Handlers are single-slot. Setting a loop handler replaces the previous one,
// so repeated interactive playback never accumulates stale callbacks.
type Action struct {
	mu   sync.Mutex
	clip Clip

	time    float64
	running bool
	paused  bool

	loop              LoopMode
	clampWhenFinished bool
	windowEnd         float64

	epoch uint64

	loopHandler     func()
	finishedHandler func()
}

// Clip returns the clip this action plays.
//
// Returns:
//   - Clip: the underlying clip
func (a *Action) Clip() Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clip
}

// Play starts or resumes playback. The cursor is not reset; use SetTime or
// Reset to reposition it first.
func (a *Action) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
	a.paused = false
}

// Pause suspends playback, leaving the cursor where it is.
func (a *Action) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = true
}

// Stop halts playback and rewinds the cursor to zero. Stopping invalidates the
// current playback epoch, so deferred work keyed to the old epoch is discarded.
func (a *Action) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
	a.paused = false
	a.time = 0
	a.epoch++
}

// Reset rewinds the cursor to zero without changing the run state, and
// invalidates the current playback epoch.
func (a *Action) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.time = 0
	a.epoch++
}

// Time returns the current cursor position in seconds.
//
// Returns:
//   - float64: the cursor position
func (a *Action) Time() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.time
}

// SetTime moves the cursor to t seconds.
//
// Parameters:
//   - t: the new cursor position
func (a *Action) SetTime(t float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.time = t
}

// IsRunning reports whether the action is actively advancing. A paused action
// is not running, so interactive toggles treat it as restartable.
//
// Returns:
//   - bool: true when playing and not paused
func (a *Action) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running && !a.paused
}

// SetLoop sets the loop mode applied at the clip's end boundary.
//
// Parameters:
//   - mode: LoopRepeat or LoopOnce
func (a *Action) SetLoop(mode LoopMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loop = mode
}

// SetClampWhenFinished controls whether a LoopOnce action holds its final
// frame after finishing instead of rewinding.
//
// Parameters:
//   - clamp: true to pin the cursor at the boundary when finished
func (a *Action) SetClampWhenFinished(clamp bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clampWhenFinished = clamp
}

// SetWindowEnd installs an early end boundary so only a sub-range of the clip
// plays. When the cursor crosses the boundary the action pauses, pins the
// cursor, and fires the loop handler, which decides whether to rewind and
// continue or stay stopped. Pass 0 to clear the window.
//
// Parameters:
//   - end: the boundary in seconds, or 0 for the full clip
func (a *Action) SetWindowEnd(end float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.windowEnd = end
}

// SetLoopHandler installs the boundary callback, replacing any previous one.
//
// Parameters:
//   - fn: called after the cursor crosses the loop/window boundary, nil to clear
func (a *Action) SetLoopHandler(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loopHandler = fn
}

// SetFinishedHandler installs the completion callback for LoopOnce playback,
// replacing any previous one.
//
// Parameters:
//   - fn: called once when a LoopOnce action reaches its boundary, nil to clear
func (a *Action) SetFinishedHandler(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finishedHandler = fn
}

// Epoch returns the current playback epoch. The epoch increments on Stop and
// Reset; deferred callbacks capture it and bail out when it has moved on.
//
// Returns:
//   - uint64: the current epoch
func (a *Action) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.epoch
}

// advance moves the cursor forward by dt and applies boundary behavior.
// Handlers fire outside the action lock so they can call back into the action.
func (a *Action) advance(dt float64) {
	a.mu.Lock()
	if !a.running || a.paused {
		a.mu.Unlock()
		return
	}
	a.time += dt

	boundary := a.clip.Duration
	if a.windowEnd > 0 && a.windowEnd < boundary {
		boundary = a.windowEnd
	}

	var fire func()
	if boundary > 0 && a.time >= boundary {
		switch {
		case a.windowEnd > 0 && a.loopHandler != nil:
			a.time = boundary
			a.paused = true
			fire = a.loopHandler
		case a.loop == LoopRepeat:
			a.time = math.Mod(a.time, boundary)
			fire = a.loopHandler
		default:
			if a.clampWhenFinished {
				a.time = boundary
				a.paused = true
			} else {
				a.time = 0
				a.running = false
			}
			fire = a.finishedHandler
		}
	}
	a.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// Mixer owns the actions for one animated asset and advances them together.
type Mixer struct {
	mu      sync.Mutex
	actions map[string]*Action
}

// NewMixer creates an empty mixer.
//
// Returns:
//   - *Mixer: the new mixer
func NewMixer() *Mixer {
	return &Mixer{actions: make(map[string]*Action)}
}

// ClipAction returns the action for the given clip, creating it on first use.
// Subsequent calls with the same clip name return the same action.
//
// Parameters:
//   - clip: the clip to play
//
// Returns:
//   - *Action: the action bound to the clip
func (m *Mixer) ClipAction(clip Clip) *Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actions[clip.Name]; ok {
		return a
	}
	a := &Action{clip: clip}
	m.actions[clip.Name] = a
	return a
}

// Action looks up an existing action by clip name.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - *Action: the action, or nil if no action exists for the name
func (m *Mixer) Action(name string) *Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actions[name]
}

// Update advances every action owned by this mixer by dt seconds.
//
// Parameters:
//   - dt: elapsed time in seconds
func (m *Mixer) Update(dt float64) {
	m.mu.Lock()
	actions := make([]*Action, 0, len(m.actions))
	for _, a := range m.actions {
		actions = append(actions, a)
	}
	m.mu.Unlock()

	for _, a := range actions {
		a.advance(dt)
	}
}

// StopAll stops every action owned by this mixer.
func (m *Mixer) StopAll() {
	m.mu.Lock()
	actions := make([]*Action, 0, len(m.actions))
	for _, a := range m.actions {
		actions = append(actions, a)
	}
	m.mu.Unlock()

	for _, a := range actions {
		a.Stop()
	}
}
