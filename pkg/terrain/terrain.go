package terrain

import (
	"fmt"

	"github.com/sasha-s/go-deadlock"

	"github.com/openmetaversefoundation/simian-sub002/pkg/geom"
)

// Terrain is a regular-grid heightfield plus the region water level. Reads
// vastly outnumber writes (the integrator samples heights every frame; edits
// come from occasional terraforming), so the grid sits behind an RWMutex.
type Terrain struct {
	mutex    deadlock.RWMutex
	heights  []float32
	width    int
	height   int
	cellSize float64
	water    float64
	hasWater bool
}

// NewFlat builds a flat terrain at height zero.
func NewFlat(width, height int, cellSize float64) *Terrain {
	return &Terrain{
		heights:  make([]float32, width*height),
		width:    width,
		height:   height,
		cellSize: cellSize,
	}
}

// New wraps an existing height grid. It returns an error when the grid does
// not match the given dimensions.
func New(heights []float32, width, height int, cellSize float64) (*Terrain, error) {
	if len(heights) != width*height {
		return nil, fmt.Errorf("heightmap is %d samples, want %dx%d", len(heights), width, height)
	}
	return &Terrain{
		heights:  heights,
		width:    width,
		height:   height,
		cellSize: cellSize,
	}, nil
}

// SetWaterHeight enables water at the given level.
func (t *Terrain) SetWaterHeight(level float64) {
	t.mutex.Lock()
	t.water = level
	t.hasWater = true
	t.mutex.Unlock()
}

// WaterHeight returns the water level; ok is false when the region has no
// water.
func (t *Terrain) WaterHeight() (float64, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.water, t.hasWater
}

// HeightAt bilinearly samples the terrain at world coordinates.
func (t *Terrain) HeightAt(x, y float64) float64 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return geom.SampleHeightfield(t.heights, t.width, t.height, t.cellSize, x, y)
}

// SetHeight writes one grid sample. Out-of-range coordinates are ignored.
func (t *Terrain) SetHeight(gx, gy int, h float32) {
	t.mutex.Lock()
	if gx >= 0 && gx < t.width && gy >= 0 && gy < t.height {
		t.heights[gy*t.width+gx] = h
	}
	t.mutex.Unlock()
}

// Heightmap returns the raw grid for bulk consumers (terrain raycasts, the
// snapshot codec). Callers must treat the slice as read-only.
func (t *Terrain) Heightmap() ([]float32, int, int, float64) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.heights, t.width, t.height, t.cellSize
}
