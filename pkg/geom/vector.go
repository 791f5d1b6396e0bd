package geom

import "math"

// Vector is a 3-component double precision vector. All simulation math is
// carried out in float64; narrowing to wire precision happens at the
// serialization boundary, never here.
type Vector struct {
	X, Y, Z float64
}

func NewVector(x, y, z float64) Vector {
	return Vector{x, y, z}
}

func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector) Mul(k float64) Vector {
	return Vector{v.X * k, v.Y * k, v.Z * k}
}

func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Scale returns v stretched or shrunk to length k. Vectors shorter than the
// degeneracy threshold are returned unchanged.
func (v Vector) Scale(k float64) Vector {
	if mag := v.Magnitude(); mag > 1e-6 {
		return v.Mul(k / mag)
	}
	return v
}

func (v Vector) Normalize() Vector {
	return v.Scale(1)
}

// Horizontal zeroes the Z component.
func (v Vector) Horizontal() Vector {
	return Vector{v.X, v.Y, 0}
}

// ApproxEqual reports whether every component of v is within tol of o.
func (v Vector) ApproxEqual(o Vector, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol &&
		math.Abs(v.Y-o.Y) <= tol &&
		math.Abs(v.Z-o.Z) <= tol
}

func Distance(from, to Vector) float64 {
	return from.Sub(to).Magnitude()
}
