// Package spatialmath defines spatial mathematical operations: orientations in several
// parameterizations and rigid poses backed by unit dual quaternions.
package spatialmath

import (
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is a rotation in 3D space that can be read back in any of the supported
// parameterizations.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
	RotationMatrix() *RotationMatrix
}

// NewZeroOrientation returns the identity rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{Real: 1}
}

// OrientationAlmostEqual reports whether two orientations describe the same rotation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return OrientationAlmostEqualEps(o1, o2, 1e-5)
}

// OrientationAlmostEqualEps compares the unit quaternions of o1 and o2 component-wise within
// epsilon. q and -q are the same rotation, so o2 is flipped onto o1's hemisphere first.
func OrientationAlmostEqualEps(o1, o2 Orientation, epsilon float64) bool {
	q1, q2 := Normalize(o1.Quaternion()), Normalize(o2.Quaternion())
	if q1.Real*q2.Real+q1.Imag*q2.Imag+q1.Jmag*q2.Jmag+q1.Kmag*q2.Kmag < 0 {
		q2 = quat.Scale(-1, q2)
	}
	return QuaternionAlmostEqual(q1, q2, epsilon)
}
