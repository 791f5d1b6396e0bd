package terrain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatTerrain(t *testing.T) {
	ground := NewFlat(16, 16, 1.0)

	assert.Equal(t, 0.0, ground.HeightAt(4.5, 9.2))

	_, hasWater := ground.WaterHeight()
	assert.False(t, hasWater)

	ground.SetWaterHeight(20)
	level, hasWater := ground.WaterHeight()
	assert.True(t, hasWater)
	assert.Equal(t, 20.0, level)
}

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := New(make([]float32, 10), 4, 4, 1.0)
	assert.Error(t, err)
}

func TestSetHeightSamples(t *testing.T) {
	ground := NewFlat(8, 8, 1.0)
	ground.SetHeight(3, 3, 12)

	assert.Equal(t, 12.0, ground.HeightAt(3, 3))

	// Halfway to the untouched neighbour.
	assert.InDelta(t, 6.0, ground.HeightAt(3.5, 3), 1e-6)

	// Writes outside the grid are dropped.
	ground.SetHeight(-1, 0, 99)
	ground.SetHeight(8, 0, 99)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ground := NewFlat(8, 8, 2.0)
	ground.SetHeight(2, 5, 31.5)
	ground.SetWaterHeight(4)

	var buffer bytes.Buffer
	assert.NoError(t, ground.Encode(&buffer))

	restored, err := Decode(&buffer)
	assert.NoError(t, err)

	heights, width, height, cellSize := restored.Heightmap()
	assert.Equal(t, 8, width)
	assert.Equal(t, 8, height)
	assert.Equal(t, 2.0, cellSize)
	assert.Equal(t, float32(31.5), heights[5*8+2])

	level, hasWater := restored.WaterHeight()
	assert.True(t, hasWater)
	assert.Equal(t, 4.0, level)
}

func TestSnapshotWithoutWater(t *testing.T) {
	ground := NewFlat(4, 4, 1.0)

	var buffer bytes.Buffer
	assert.NoError(t, ground.Encode(&buffer))

	restored, err := Decode(&buffer)
	assert.NoError(t, err)

	_, hasWater := restored.WaterHeight()
	assert.False(t, hasWater)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a terrain")))
	assert.Error(t, err)
}
