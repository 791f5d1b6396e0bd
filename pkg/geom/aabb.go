package geom

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vector
}

// NewAABB builds a box from a center point and full extents.
func NewAABB(center, size Vector) AABB {
	half := size.Mul(0.5)
	return AABB{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}

func (b AABB) Center() Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Contains(p Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Ray is an origin plus a unit-length direction. Distances returned by the
// intersection tests are measured in multiples of the direction, so callers
// must normalize before testing.
type Ray struct {
	Origin    Vector
	Direction Vector
}

// IntersectRay performs the slab-method ray/box test. It returns whether the
// ray hits the box along its positive extent, the entry distance and the exit
// distance. Axis-parallel rays (a zero direction component) are treated as
// inside the slab when the origin lies between the two planes, so no division
// by zero can occur.
func (b AABB) IntersectRay(r Ray) (bool, float64, float64) {
	tNear := math.Inf(-1)
	tFar := math.Inf(1)

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	min := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	max := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			// Parallel to this slab: either always inside it or never.
			if origin[i] < min[i] || origin[i] > max[i] {
				return false, 0, 0
			}
			continue
		}

		inv := 1.0 / dir[i]
		t1 := (min[i] - origin[i]) * inv
		t2 := (max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar || tFar < 0 {
			return false, 0, 0
		}
	}

	if tNear < 0 {
		// Origin inside the box.
		tNear = 0
	}
	return true, tNear, tFar
}

// IntersectSphere reports whether a sphere overlaps the box, using the
// closest point on the box to the sphere center.
func (b AABB) IntersectSphere(center Vector, radius float64) bool {
	closest := Vector{
		clamp(center.X, b.Min.X, b.Max.X),
		clamp(center.Y, b.Min.Y, b.Max.Y),
		clamp(center.Z, b.Min.Z, b.Max.Z),
	}
	return closest.Sub(center).LengthSquared() <= radius*radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
