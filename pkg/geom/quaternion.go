package geom

import "math"

// Quaternion represents an entity rotation. Only the operations the update
// pipeline needs are provided; this is not a general rotation library.
type Quaternion struct {
	X, Y, Z, W float64
}

func IdentityQuaternion() Quaternion {
	return Quaternion{0, 0, 0, 1}
}

func (q Quaternion) ApproxEqual(o Quaternion, tol float64) bool {
	return math.Abs(q.X-o.X) <= tol &&
		math.Abs(q.Y-o.Y) <= tol &&
		math.Abs(q.Z-o.Z) <= tol &&
		math.Abs(q.W-o.W) <= tol
}

// Plane is a ground-contact plane in normal/offset form, shipped to clients
// for movement prediction.
type Plane struct {
	Normal Vector
	Offset float64
}
