package geom

// SampleHeightfield bilinearly interpolates a regular-grid heightfield at
// world coordinates (x, y). Coordinates outside the grid are clamped to the
// border cells.
func SampleHeightfield(heights []float32, width, height int, cellSize, x, y float64) float64 {
	if width <= 0 || height <= 0 || len(heights) < width*height || cellSize <= 0 {
		return 0
	}

	gx := clamp(x/cellSize, 0, float64(width-1))
	gy := clamp(y/cellSize, 0, float64(height-1))

	x0 := int(gx)
	y0 := int(gy)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > width-1 {
		x1 = width - 1
	}
	if y1 > height-1 {
		y1 = height - 1
	}

	fx := gx - float64(x0)
	fy := gy - float64(y0)

	h00 := float64(heights[y0*width+x0])
	h10 := float64(heights[y0*width+x1])
	h01 := float64(heights[y1*width+x0])
	h11 := float64(heights[y1*width+x1])

	top := h00 + (h10-h00)*fx
	bottom := h01 + (h11-h01)*fx
	return top + (bottom-top)*fy
}

// heightfieldStep is the march increment for RayHeightfield, in multiples of
// the cell size. Small enough not to tunnel through single-cell ridges.
const heightfieldStep = 0.25

// RayHeightfield intersects a ray with a regular-grid heightfield by marching
// along the ray and bisecting the crossing interval once the ray dips below
// the surface. It returns whether the surface was hit within maxDist and the
// distance to the hit. The test is deterministic for identical inputs.
func RayHeightfield(r Ray, heights []float32, width, height int, cellSize, maxDist float64) (bool, float64) {
	if width <= 0 || height <= 0 || len(heights) < width*height || maxDist <= 0 {
		return false, 0
	}

	sample := func(p Vector) float64 {
		return SampleHeightfield(heights, width, height, cellSize, p.X, p.Y)
	}

	// Fast path: straight down. This is the gravity raycast, so it gets an
	// analytic answer instead of a march.
	if r.Direction.X == 0 && r.Direction.Y == 0 && r.Direction.Z < 0 {
		h := sample(r.Origin)
		d := (r.Origin.Z - h) / -r.Direction.Z
		if d < 0 {
			return true, 0
		}
		if d <= maxDist {
			return true, d
		}
		return false, 0
	}

	step := cellSize * heightfieldStep
	prev := 0.0
	prevAbove := r.Origin.Z >= sample(r.Origin)
	if !prevAbove {
		return true, 0
	}

	for t := step; t <= maxDist; t += step {
		p := r.Origin.Add(r.Direction.Mul(t))
		if p.Z >= sample(p) {
			prev = t
			continue
		}

		// Crossed the surface between prev and t; bisect.
		lo, hi := prev, t
		for i := 0; i < 16; i++ {
			mid := (lo + hi) / 2
			q := r.Origin.Add(r.Direction.Mul(mid))
			if q.Z >= sample(q) {
				lo = mid
			} else {
				hi = mid
			}
		}
		return true, hi
	}

	// One final sample exactly at maxDist so short rays are not cut off by
	// the stride.
	end := r.Origin.Add(r.Direction.Mul(maxDist))
	if end.Z < sample(end) {
		return true, maxDist
	}
	return false, 0
}
