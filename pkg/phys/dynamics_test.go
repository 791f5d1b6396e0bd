package phys

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

func TestImpulsesEmitEvents(t *testing.T) {
	_, sim := newTestSim(&mockTerrain{})
	e := scene.NewEntity("box")

	var impulses []Impulse
	sim.ImpulseApplied.Notify(func(i Impulse) { impulses = append(impulses, i) })
	sim.TorqueSet.Notify(func(i Impulse) { impulses = append(impulses, i) })

	sim.ApplyImpulse(e, geom.NewVector(1, 0, 0))
	sim.SetTorque(e, geom.NewVector(0, 1, 0))

	assert.Len(t, impulses, 2)
	assert.Same(t, e, impulses[0].Entity)
	assert.Equal(t, 1.0, impulses[0].Vector.X)
	assert.Equal(t, 1.0, impulses[1].Vector.Y)
}

func TestSetRotationAxis(t *testing.T) {
	_, sim := newTestSim(&mockTerrain{})

	box := scene.NewEntity("box")
	err := sim.SetRotationAxis(box, geom.NewVector(0, 0, 1))
	assert.NoError(t, err)
	assert.Equal(t, 1.0, box.RotationAxis.Z)

	mesh := scene.NewEntity("mesh")
	mesh.Proxy = scene.ProxyMesh
	err = sim.SetRotationAxis(mesh, geom.NewVector(0, 0, 1))
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.True(t, mesh.RotationAxis.IsZero())
}
