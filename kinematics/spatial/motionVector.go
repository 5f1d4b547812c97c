// Package spatial implements 6D spatial vector algebra: motion and force vectors, rigid transforms
// between body frames and rigid body inertias.
package spatial

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MotionVector is a spatial velocity or acceleration, angular part first.
type MotionVector struct {
	Angular mgl64.Vec3
	Linear  mgl64.Vec3
}

// Cross is the spatial cross product of a motion vector with a force vector.
func (m MotionVector) Cross(other ForceVector) ForceVector {
	var res ForceVector
	res.Moment = m.Angular.Cross(other.Moment).Add(m.Linear.Cross(other.Force))
	res.Force = m.Angular.Cross(other.Force)
	return res
}

// CrossMotion is the spatial cross product of two motion vectors.
func (m MotionVector) CrossMotion(other MotionVector) MotionVector {
	var res MotionVector
	res.Angular = m.Angular.Cross(other.Angular)
	res.Linear = m.Angular.Cross(other.Linear).Add(m.Linear.Cross(other.Angular))
	return res
}

// Dot is the scalar product with a force vector, i.e. power.
func (m MotionVector) Dot(other ForceVector) float64 {
	return m.Angular.Dot(other.Moment) + m.Linear.Dot(other.Force)
}

// Add returns m + other.
func (m MotionVector) Add(other MotionVector) MotionVector {
	return MotionVector{m.Angular.Add(other.Angular), m.Linear.Add(other.Linear)}
}

// Scale returns s*m.
func (m MotionVector) Scale(s float64) MotionVector {
	return MotionVector{m.Angular.Mul(s), m.Linear.Mul(s)}
}

// IsFinite reports whether no component is NaN or infinite.
func (m MotionVector) IsFinite() bool {
	return vecFinite(m.Angular) && vecFinite(m.Linear)
}
