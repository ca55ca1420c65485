package object

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	o := New()
	assert.NotZero(t, o.ID())
	assert.True(t, o.Visible())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, o.Scale())
	assert.Equal(t, mgl32.Vec3{}, o.Position())
	assert.Nil(t, o.Parent())
	assert.Empty(t, o.Children())
}

func TestNewWithOptions(t *testing.T) {
	o := New(
		WithName("anchor-0"),
		WithPosition(mgl32.Vec3{1, 2, 3}),
		WithRotation(mgl32.Vec3{0.5, 0, 0}),
		WithScale(mgl32.Vec3{2, 2, 2}),
		WithVisible(false),
	)
	assert.Equal(t, "anchor-0", o.Name())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, o.Position())
	assert.Equal(t, mgl32.Vec3{0.5, 0, 0}, o.Rotation())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, o.Scale())
	assert.False(t, o.Visible())
}

func TestUniqueIDs(t *testing.T) {
	a := New()
	b := New()
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestAddRemove(t *testing.T) {
	parent := New(WithName("parent"))
	child := New(WithName("child"))

	parent.Add(child)
	require.Len(t, parent.Children(), 1)
	assert.Equal(t, parent.ID(), child.Parent().ID())

	parent.Remove(child)
	assert.Empty(t, parent.Children())
	assert.Nil(t, child.Parent())
}

func TestAddReparents(t *testing.T) {
	first := New()
	second := New()
	child := New()

	first.Add(child)
	second.Add(child)

	assert.Empty(t, first.Children())
	require.Len(t, second.Children(), 1)
	assert.Equal(t, second.ID(), child.Parent().ID())
}

func TestClearDetachesAll(t *testing.T) {
	parent := New()
	a := New()
	b := New()
	parent.Add(a)
	parent.Add(b)

	detached := parent.Clear()
	assert.Len(t, detached, 2)
	assert.Empty(t, parent.Children())
	assert.Nil(t, a.Parent())
	assert.Nil(t, b.Parent())
}

func TestAncestors(t *testing.T) {
	root := New(WithName("root"))
	mid := New(WithName("mid"))
	leaf := New(WithName("leaf"))
	root.Add(mid)
	mid.Add(leaf)

	chain := leaf.Ancestors()
	require.Len(t, chain, 2)
	assert.Equal(t, "mid", chain[0].Name())
	assert.Equal(t, "root", chain[1].Name())

	assert.Empty(t, root.Ancestors())
}

func TestWorldVisible(t *testing.T) {
	root := New()
	mid := New()
	leaf := New()
	root.Add(mid)
	mid.Add(leaf)

	assert.True(t, leaf.WorldVisible())

	root.SetVisible(false)
	assert.True(t, leaf.Visible())
	assert.False(t, leaf.WorldVisible())

	root.SetVisible(true)
	leaf.SetVisible(false)
	assert.False(t, leaf.WorldVisible())
}
