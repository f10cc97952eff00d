package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Pose represents the placement of a rigid body in world coordinates: a point and an orientation.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation *RotationMatrix
}

// NewPose builds a pose from a point and any orientation parameterization.
// The orientation is converted to a rotation matrix once, here.
func NewPose(pt r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewIdentityRotation()
	}
	return &pose{point: pt, orientation: o.RotationMatrix()}
}

// NewPoseFromPoint returns a pose at pt with no rotation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return &pose{point: pt, orientation: NewIdentityRotation()}
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return NewPoseFromPoint(r3.Vector{})
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	return p.orientation
}

func (p *pose) String() string {
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f R:%v}", p.point.X, p.point.Y, p.point.Z, p.orientation)
}

// Compose returns the pose of b expressed in the frame that a is expressed in.
func Compose(a, b Pose) Pose {
	ra := a.Orientation().RotationMatrix()
	return &pose{
		point:       ra.Mul(b.Point()).Add(a.Point()),
		orientation: ra.MulRM(b.Orientation().RotationMatrix()),
	}
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose, tol float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), tol) &&
		QuaternionAlmostEqual(a.Orientation().Quaternion(), b.Orientation().Quaternion(), tol)
}
