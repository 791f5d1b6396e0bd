package scene

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
)

func TestScenePositionResolvesParentChain(t *testing.T) {
	root := NewEntity("root")
	root.Position = geom.NewVector(10, 0, 0)

	middle := NewEntity("middle")
	middle.Position = geom.NewVector(0, 5, 0)
	middle.Parent = root

	leaf := NewEntity("leaf")
	leaf.Position = geom.NewVector(0, 0, 2)
	leaf.Parent = middle

	assert.Equal(t, geom.NewVector(10, 5, 2), leaf.ScenePosition())
}

func TestMassCaching(t *testing.T) {
	e := NewEntity("cube")
	e.Scale = geom.NewVector(2, 2, 2)

	assert.InDelta(t, 8000.0, e.Mass(), 1e-9)

	// Without invalidation the cached value sticks.
	e.Scale = geom.NewVector(1, 1, 1)
	assert.InDelta(t, 8000.0, e.Mass(), 1e-9)

	e.InvalidateMass()
	assert.InDelta(t, 1000.0, e.Mass(), 1e-9)
}

func TestShapeKey(t *testing.T) {
	a := NewEntity("a")
	b := NewEntity("b")
	assert.Equal(t, a.ShapeKey(), b.ShapeKey(), "same proxy and scale share a shape")

	b.Scale = geom.NewVector(1, 1, 1)
	assert.NotEqual(t, a.ShapeKey(), b.ShapeKey())

	// Sub-millimeter jitter maps to the same key.
	c := NewEntity("c")
	c.Scale = a.Scale.Add(geom.NewVector(1e-7, 0, 0))
	assert.Equal(t, a.ShapeKey(), c.ShapeKey())

	d := NewEntity("d")
	d.Proxy = ProxyMesh
	d.MeshAsset = uuid.New()
	assert.NotEqual(t, a.ShapeKey(), d.ShapeKey())
}

func TestAABBFollowsParent(t *testing.T) {
	parent := NewEntity("parent")
	parent.Position = geom.NewVector(10, 10, 10)

	child := NewEntity("child")
	child.Parent = parent
	child.Scale = geom.NewVector(2, 2, 2)

	box := child.AABB()
	assert.Equal(t, geom.NewVector(9, 9, 9), box.Min)
	assert.Equal(t, geom.NewVector(11, 11, 11), box.Max)
}

func TestPresenceBackref(t *testing.T) {
	p := NewPresence("avatar")
	got, ok := p.Entity.Presence()
	assert.True(t, ok)
	assert.Same(t, p, got)

	e := NewEntity("cube")
	_, ok = e.Presence()
	assert.False(t, ok)
}

func TestPresenceInput(t *testing.T) {
	p := NewPresence("avatar")

	vel, state := p.Input()
	assert.True(t, vel.IsZero())
	assert.Equal(t, MoveWalking, state)

	p.SetInput(geom.NewVector(1, 2, 3), MoveFlying)
	vel, state = p.Input()
	assert.Equal(t, geom.NewVector(1, 2, 3), vel)
	assert.Equal(t, MoveFlying, state)
}
