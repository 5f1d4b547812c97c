package spatial

import (
	"github.com/go-gl/mathgl/mgl64"
)

// RigidBodyInertia is the spatial inertia of a body about the origin of the frame it is expressed
// in. H is the first moment of mass, mass times the center of mass. Inertia is the rotational
// inertia about the frame origin.
type RigidBodyInertia struct {
	Mass    float64
	H       mgl64.Vec3
	Inertia mgl64.Mat3
}

// NewRigidBodyInertia builds the spatial inertia of a body of mass m whose center of mass sits at
// com with rotational inertia icom about the center of mass.
func NewRigidBodyInertia(m float64, com mgl64.Vec3, icom mgl64.Mat3) RigidBodyInertia {
	return RigidBodyInertia{
		Mass:    m,
		H:       com.Mul(m),
		Inertia: icom.Add(parallelAxis(m, com)),
	}
}

// parallelAxis returns m(|c|^2 1 - c c^T), the shift of a rotational inertia by c.
func parallelAxis(m float64, c mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Ident3().Mul(c.Dot(c)).Sub(c.OuterProd3(c)).Mul(m)
}

// Apply returns the momentum of the body moving with spatial velocity v.
func (rbi RigidBodyInertia) Apply(v MotionVector) ForceVector {
	return ForceVector{
		Moment: rbi.Inertia.Mul3x1(v.Angular).Add(rbi.H.Cross(v.Linear)),
		Force:  v.Linear.Mul(rbi.Mass).Sub(rbi.H.Cross(v.Angular)),
	}
}

// Add returns the inertia of the two bodies rigidly joined. Both must be expressed in the same frame.
func (rbi RigidBodyInertia) Add(other RigidBodyInertia) RigidBodyInertia {
	return RigidBodyInertia{
		Mass:    rbi.Mass + other.Mass,
		H:       rbi.H.Add(other.H),
		Inertia: rbi.Inertia.Add(other.Inertia),
	}
}

// ToParent expresses the inertia, given in the child frame of x, in the parent frame.
func (rbi RigidBodyInertia) ToParent(x Transform) RigidBodyInertia {
	rt := x.Rot.Transpose()
	if rbi.Mass == 0 {
		return RigidBodyInertia{
			H:       x.Rot.Mul3x1(rbi.H),
			Inertia: x.Rot.Mul3(rbi.Inertia).Mul3(rt),
		}
	}
	com := rbi.H.Mul(1 / rbi.Mass)
	icom := rbi.Inertia.Sub(parallelAxis(rbi.Mass, com))

	parentCom := x.Rot.Mul3x1(com).Add(x.Pos)
	return NewRigidBodyInertia(rbi.Mass, parentCom, x.Rot.Mul3(icom).Mul3(rt))
}
