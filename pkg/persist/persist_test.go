package persist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
	"github.com/openmetaversefoundation/simian-sub002/pkg/scene"
)

func TestRecordForMapsFields(t *testing.T) {
	parent := scene.NewEntity("parent")

	e := scene.NewEntity("cube")
	e.Parent = parent
	e.Position = geom.NewVector(1, 2, 3)
	e.Scale = geom.NewVector(4, 5, 6)
	e.DynamicsEnabled = true
	e.Proxy = scene.ProxyMesh
	e.MeshAsset = uuid.New()

	record := recordFor(e, scene.NewScene().KinematicState(e))

	assert.Equal(t, e.ID.String(), record.ID)
	assert.Equal(t, parent.ID.String(), record.ParentID)
	assert.Equal(t, 1.0, record.PositionX)
	assert.Equal(t, 3.0, record.PositionZ)
	assert.Equal(t, 6.0, record.ScaleZ)
	assert.True(t, record.DynamicsEnabled)
	assert.Equal(t, uint8(scene.ProxyMesh), record.Proxy)
	assert.Equal(t, e.MeshAsset.String(), record.MeshAsset)
}

func TestRecordForRootEntity(t *testing.T) {
	e := scene.NewEntity("cube")
	record := recordFor(e, scene.NewScene().KinematicState(e))

	assert.Empty(t, record.ParentID)
	assert.Empty(t, record.MeshAsset, "a nil mesh asset stores as empty")
}
