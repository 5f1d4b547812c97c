package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// R4AA is a rotation of Theta radians about the axis (RX, RY, RZ). Revolute joint motion is
// expressed this way, with the joint axis and the joint position.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA returns the identity rotation, about +z.
func NewR4AA() *R4AA {
	return &R4AA{RZ: 1}
}

// NewR4AAFromAxis returns a rotation of theta about axis. The axis need not be unit length.
func NewR4AAFromAxis(theta float64, axis r3.Vector) *R4AA {
	return &R4AA{Theta: theta, RX: axis.X, RY: axis.Y, RZ: axis.Z}
}

// R3ToR4 converts a rotation vector, whose norm is the angle, to axis angle form.
func R3ToR4(aa r3.Vector) *R4AA {
	theta := aa.Norm()
	if theta == 0 {
		return NewR4AA()
	}
	return NewR4AAFromAxis(theta, aa.Mul(1/theta))
}

func (r4 *R4AA) AxisAngles() *R4AA {
	return r4
}

func (r4 *R4AA) Quaternion() quat.Number {
	return r4.ToQuat()
}

func (r4 *R4AA) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(r4.ToQuat())
}

func (r4 *R4AA) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(r4.ToQuat())
}

// ToR3 returns the rotation vector, axis scaled by angle.
func (r4 *R4AA) ToR3() r3.Vector {
	return r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}.Mul(r4.Theta)
}

// ToQuat returns the unit quaternion of the rotation. r4 itself is not modified.
func (r4 *R4AA) ToQuat() quat.Number {
	axis := r4.unitAxis()
	sin, cos := math.Sincos(r4.Theta / 2)
	return quat.Number{Real: cos, Imag: axis.X * sin, Jmag: axis.Y * sin, Kmag: axis.Z * sin}
}

// Normalize rescales the axis to unit length in place. A zero axis becomes +z.
func (r4 *R4AA) Normalize() {
	axis := r4.unitAxis()
	r4.RX, r4.RY, r4.RZ = axis.X, axis.Y, axis.Z
}

func (r4 *R4AA) unitAxis() r3.Vector {
	axis := r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}
	norm := axis.Norm()
	if norm == 0 {
		return r3.Vector{Z: 1}
	}
	return axis.Mul(1 / norm)
}
