package spatial

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/kinstate/spatialmath"
)

// Transform places a child frame in its parent: Rot holds the child axes in parent coordinates
// and Pos the child origin in parent coordinates.
type Transform struct {
	Rot mgl64.Mat3
	Pos mgl64.Vec3
}

// TransformFromPose converts a pose of the child frame in the parent frame.
func TransformFromPose(p spatialmath.Pose) Transform {
	rm := p.Orientation().RotationMatrix()
	var rot mgl64.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rot.Set(r, c, rm.At(r, c))
		}
	}
	return Transform{Rot: rot, Pos: VecFromR3(p.Point())}
}

// ToChild expresses a parent frame motion vector in the child frame.
func (x Transform) ToChild(m MotionVector) MotionVector {
	rt := x.Rot.Transpose()
	return MotionVector{
		Angular: rt.Mul3x1(m.Angular),
		Linear:  rt.Mul3x1(m.Linear.Add(m.Angular.Cross(x.Pos))),
	}
}

// ToParentForce expresses a child frame force vector in the parent frame.
func (x Transform) ToParentForce(f ForceVector) ForceVector {
	force := x.Rot.Mul3x1(f.Force)
	return ForceVector{
		Moment: x.Rot.Mul3x1(f.Moment).Add(x.Pos.Cross(force)),
		Force:  force,
	}
}

// VecFromR3 converts an r3 vector.
func VecFromR3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// VecToR3 converts to an r3 vector.
func VecToR3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}
