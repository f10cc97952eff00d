package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// TransformPoints maps body frame points into the world: R·p + x for every p in local.
// local is read only; the result is always a fresh slice. R is used as given, so a
// non-orthonormal matrix simply produces whatever that linear map produces.
func TransformPoints(p Pose, local []r3.Vector) []r3.Vector {
	rm := p.Orientation().RotationMatrix()
	x := p.Point()
	world := make([]r3.Vector, len(local))
	for i, pt := range local {
		world[i] = rm.Mul(pt).Add(x)
	}
	return world
}

// TransformPoint maps a single body frame point into the world.
func TransformPoint(p Pose, local r3.Vector) r3.Vector {
	return p.Orientation().RotationMatrix().Mul(local).Add(p.Point())
}

// RotateVector rotates a free vector; no translation is applied.
func RotateVector(o Orientation, v r3.Vector) r3.Vector {
	return o.RotationMatrix().Mul(v)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than tol.
func R3VectorAlmostEqual(a, b r3.Vector, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

// Centroid returns the mean of the given points, or the zero vector for an empty slice.
func Centroid(pts []r3.Vector) r3.Vector {
	if len(pts) == 0 {
		return r3.Vector{}
	}
	var sum r3.Vector
	for _, pt := range pts {
		sum = sum.Add(pt)
	}
	return sum.Mul(1 / float64(len(pts)))
}
