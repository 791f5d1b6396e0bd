package geom

import (
	"math"
	"testing"
)

func TestIntersectRayHit(t *testing.T) {
	box := NewAABB(Vector{X: 5, Y: 0, Z: 0}, Vector{X: 2, Y: 2, Z: 2})
	ray := Ray{Origin: Vector{}, Direction: Vector{X: 1}}

	hit, near, far := box.IntersectRay(ray)
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(near-4) > 1e-9 {
		t.Errorf("near = %f, want 4", near)
	}
	if math.Abs(far-6) > 1e-9 {
		t.Errorf("far = %f, want 6", far)
	}
}

func TestIntersectRayMiss(t *testing.T) {
	box := NewAABB(Vector{X: 5, Y: 0, Z: 0}, Vector{X: 2, Y: 2, Z: 2})
	ray := Ray{Origin: Vector{}, Direction: Vector{X: -1}}

	hit, _, _ := box.IntersectRay(ray)
	if hit {
		t.Error("ray pointing away should miss")
	}
}

// A ray parallel to an axis has a zero direction component; the slab test
// must treat that axis as always inside rather than dividing by zero.
func TestIntersectRayAxisParallel(t *testing.T) {
	box := NewAABB(Vector{X: 0, Y: 0, Z: 5}, Vector{X: 4, Y: 4, Z: 2})

	down := Ray{Origin: Vector{X: 1, Y: -1, Z: 10}, Direction: Vector{Z: -1}}
	hit, near, _ := box.IntersectRay(down)
	if !hit {
		t.Fatal("straight-down ray inside the column should hit")
	}
	if math.Abs(near-4) > 1e-9 {
		t.Errorf("near = %f, want 4", near)
	}

	outside := Ray{Origin: Vector{X: 10, Y: 0, Z: 10}, Direction: Vector{Z: -1}}
	hit, _, _ = box.IntersectRay(outside)
	if hit {
		t.Error("straight-down ray outside the column should miss")
	}
}

func TestIntersectRayOriginInside(t *testing.T) {
	box := NewAABB(Vector{}, Vector{X: 4, Y: 4, Z: 4})
	ray := Ray{Origin: Vector{X: 0.5, Y: 0, Z: 0}, Direction: Vector{X: 1}}

	hit, near, far := box.IntersectRay(ray)
	if !hit {
		t.Fatal("expected hit from inside")
	}
	if near != 0 {
		t.Errorf("near = %f, want 0 when origin is inside", near)
	}
	if math.Abs(far-1.5) > 1e-9 {
		t.Errorf("far = %f, want 1.5", far)
	}
}

func TestIntersectSphere(t *testing.T) {
	box := NewAABB(Vector{}, Vector{X: 2, Y: 2, Z: 2})

	if !box.IntersectSphere(Vector{X: 1.5, Y: 0, Z: 0}, 1.0) {
		t.Error("sphere overlapping a face should intersect")
	}
	if box.IntersectSphere(Vector{X: 3, Y: 0, Z: 0}, 1.0) {
		t.Error("sphere past the face should not intersect")
	}
	// The closest point to a corner is the corner itself.
	if !box.IntersectSphere(Vector{X: 1.5, Y: 1.5, Z: 1.5}, 1.0) {
		t.Error("sphere near a corner should intersect")
	}
	if box.IntersectSphere(Vector{X: 2, Y: 2, Z: 2}, 1.0) {
		t.Error("sphere beyond corner reach should not intersect")
	}
}
