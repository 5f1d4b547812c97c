package referenceframe

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/kinstate/spatialmath"
)

// RotationalInertia is the symmetric 3x3 inertia tensor of a body, in kg*m^2.
type RotationalInertia struct {
	XX, XY, XZ, YY, YZ, ZZ float64
}

// Mat3 returns the tensor as a mathgl matrix.
func (ri RotationalInertia) Mat3() mgl64.Mat3 {
	// mgl64 matrices are column major; the tensor is symmetric so the order is moot.
	return mgl64.Mat3{
		ri.XX, ri.XY, ri.XZ,
		ri.XY, ri.YY, ri.YZ,
		ri.XZ, ri.YZ, ri.ZZ,
	}
}

func rotationalInertiaFromMat3(m mgl64.Mat3) RotationalInertia {
	return RotationalInertia{XX: m.At(0, 0), XY: m.At(0, 1), XZ: m.At(0, 2), YY: m.At(1, 1), YZ: m.At(1, 2), ZZ: m.At(2, 2)}
}

// Inertia holds the inertial parameters of a segment expressed in the segment frame. Moment is
// taken about the center of mass.
type Inertia struct {
	Mass         float64
	CenterOfMass r3.Vector
	Moment       RotationalInertia
}

// IsZero reports whether the inertia carries no mass and no moment.
func (in Inertia) IsZero() bool {
	return in.Mass == 0 && in.Moment == (RotationalInertia{})
}

// Rotate expresses the inertia in a frame rotated by o relative to the current one: the center of
// mass becomes R*c and the moment R*I*R^T.
func (in Inertia) Rotate(o spatialmath.Orientation) Inertia {
	rm := o.RotationMatrix()
	rot := mgl64.Mat3{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rot.Set(r, c, rm.At(r, c))
		}
	}
	moment := rot.Mul3(in.Moment.Mat3()).Mul3(rot.Transpose())
	return Inertia{
		Mass:         in.Mass,
		CenterOfMass: rm.Mul(in.CenterOfMass),
		Moment:       rotationalInertiaFromMat3(moment),
	}
}
