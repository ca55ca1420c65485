package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipActionReusesAction(t *testing.T) {
	m := NewMixer()
	clip := Clip{Name: "spin", Duration: 2}

	a := m.ClipAction(clip)
	b := m.ClipAction(clip)
	assert.Same(t, a, b)
	assert.Same(t, a, m.Action("spin"))
	assert.Nil(t, m.Action("missing"))
}

func TestActionAdvancesOnlyWhileRunning(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "spin", Duration: 10})

	m.Update(0.5)
	assert.Zero(t, a.Time())

	a.Play()
	m.Update(0.5)
	assert.InDelta(t, 0.5, a.Time(), 1e-9)

	a.Pause()
	assert.False(t, a.IsRunning())
	m.Update(0.5)
	assert.InDelta(t, 0.5, a.Time(), 1e-9)

	a.Play()
	assert.True(t, a.IsRunning())
}

func TestLoopRepeatWraps(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "spin", Duration: 1})
	a.SetLoop(LoopRepeat)

	var loops int
	a.SetLoopHandler(func() { loops++ })

	a.Play()
	m.Update(1.25)
	assert.InDelta(t, 0.25, a.Time(), 1e-9)
	assert.True(t, a.IsRunning())
	assert.Equal(t, 1, loops)
}

func TestLoopOnceClampsAndFinishes(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "open", Duration: 1})
	a.SetLoop(LoopOnce)
	a.SetClampWhenFinished(true)

	var finished int
	a.SetFinishedHandler(func() { finished++ })

	a.Play()
	m.Update(1.5)
	assert.InDelta(t, 1.0, a.Time(), 1e-9)
	assert.False(t, a.IsRunning())
	assert.Equal(t, 1, finished)

	// pinned on the final frame, further updates do nothing
	m.Update(1)
	assert.InDelta(t, 1.0, a.Time(), 1e-9)
	assert.Equal(t, 1, finished)
}

func TestLoopOnceWithoutClampRewinds(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "open", Duration: 1})
	a.SetLoop(LoopOnce)

	a.Play()
	m.Update(2)
	assert.Zero(t, a.Time())
	assert.False(t, a.IsRunning())
}

func TestWindowBoundaryFiresHandlerAndPins(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "reel", Duration: 10})
	a.SetWindowEnd(3)

	var hits int
	a.SetLoopHandler(func() {
		hits++
		// rewind to the window start and keep going
		a.SetTime(2)
		a.Play()
	})

	a.SetTime(2)
	a.Play()
	m.Update(1.5)
	require.Equal(t, 1, hits)
	assert.InDelta(t, 2.0, a.Time(), 1e-9)
	assert.True(t, a.IsRunning())

	m.Update(1.5)
	assert.Equal(t, 2, hits)
}

func TestWindowOneShotStaysPinned(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "reel", Duration: 10})
	a.SetWindowEnd(3)
	a.SetLoopHandler(func() {})

	a.SetTime(2)
	a.Play()
	m.Update(5)
	assert.InDelta(t, 3.0, a.Time(), 1e-9)
	assert.False(t, a.IsRunning())
}

func TestLoopHandlerReplacedNotAccumulated(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "reel", Duration: 10})
	a.SetWindowEnd(1)

	var first, second int
	a.SetLoopHandler(func() { first++ })
	a.SetLoopHandler(func() { second++ })

	a.Play()
	m.Update(2)
	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestStopResetsAndBumpsEpoch(t *testing.T) {
	m := NewMixer()
	a := m.ClipAction(Clip{Name: "reel", Duration: 10})

	a.Play()
	m.Update(2)
	before := a.Epoch()

	a.Stop()
	assert.Zero(t, a.Time())
	assert.False(t, a.IsRunning())
	assert.Equal(t, before+1, a.Epoch())

	a.Reset()
	assert.Equal(t, before+2, a.Epoch())
}

func TestRegistryTicksAllMixers(t *testing.T) {
	r := NewRegistry()
	m1 := NewMixer()
	m2 := NewMixer()
	a1 := m1.ClipAction(Clip{Name: "a", Duration: 100})
	a2 := m2.ClipAction(Clip{Name: "b", Duration: 100})
	a1.Play()
	a2.Play()

	r.Register(m1)
	r.Register(m2)
	r.Register(m1) // duplicate is a no-op
	assert.Equal(t, 2, r.Len())

	r.TickAll(0.25)
	assert.InDelta(t, 0.25, a1.Time(), 1e-9)
	assert.InDelta(t, 0.25, a2.Time(), 1e-9)

	r.Unregister(m1)
	r.Unregister(m1)
	assert.Equal(t, 1, r.Len())

	r.TickAll(0.25)
	assert.InDelta(t, 0.25, a1.Time(), 1e-9)
	assert.InDelta(t, 0.5, a2.Time(), 1e-9)
}
