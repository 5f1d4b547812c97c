package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/kinstate/spatialmath"
)

// JointType describes how a segment moves relative to its parent.
type JointType int

// The joint types. NoneJoint is the zero value and, like FixedJoint and UnknownJoint, contributes no
// degree of freedom.
const (
	NoneJoint JointType = iota
	FixedJoint
	RevoluteJoint
	PrismaticJoint
	UnknownJoint
)

// String returns the URDF spelling of the joint type.
func (jt JointType) String() string {
	switch jt {
	case NoneJoint:
		return "none"
	case FixedJoint:
		return "fixed"
	case RevoluteJoint:
		return "revolute"
	case PrismaticJoint:
		return "prismatic"
	case UnknownJoint:
		return "unknown"
	default:
		return "unknown"
	}
}

// IsActuated reports whether a joint of this type contributes a degree of freedom.
func (jt JointType) IsActuated() bool {
	return jt == RevoluteJoint || jt == PrismaticJoint
}

// Limit represents the limits of motion for a joint. Both are inclusive. Revolute limits are
// in radians and prismatic limits in metres.
type Limit struct {
	Min float64
	Max float64
}

// UnboundedLimit is the limit used for joints without bounds, e.g. continuous joints.
func UnboundedLimit() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Contains reports whether a value lies within the limit.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Joint is the degree of freedom connecting a segment to its parent.
type Joint struct {
	Name  string
	Type  JointType
	Axis  r3.Vector
	Limit Limit
}

// NewFixedJoint returns a joint that contributes no motion.
func NewFixedJoint(name string) Joint {
	return Joint{Name: name, Type: FixedJoint}
}

// NewRevoluteJoint returns a revolute joint about axis. The axis is normalized.
func NewRevoluteJoint(name string, axis r3.Vector, limit Limit) (Joint, error) {
	return newMovingJoint(name, RevoluteJoint, axis, limit)
}

// NewPrismaticJoint returns a prismatic joint along axis. The axis is normalized.
func NewPrismaticJoint(name string, axis r3.Vector, limit Limit) (Joint, error) {
	return newMovingJoint(name, PrismaticJoint, axis, limit)
}

func newMovingJoint(name string, jt JointType, axis r3.Vector, limit Limit) (Joint, error) {
	if axis.Norm() < 1e-9 {
		return Joint{}, errors.Errorf("joint %q has a zero length axis", name)
	}
	if limit.Min > limit.Max {
		return Joint{}, errors.Errorf("joint %q has min limit %f greater than max limit %f", name, limit.Min, limit.Max)
	}
	return Joint{Name: name, Type: jt, Axis: axis.Normalize(), Limit: limit}, nil
}

// Motion returns the transform produced by the joint at value q. Non actuated joints return
// the identity.
func (j Joint) Motion(q float64) spatialmath.Pose {
	switch j.Type {
	case RevoluteJoint:
		return spatialmath.NewPoseFromOrientation(spatialmath.NewR4AAFromAxis(q, j.Axis))
	case PrismaticJoint:
		return spatialmath.NewPoseFromPoint(j.Axis.Mul(q))
	case NoneJoint, FixedJoint, UnknownJoint:
	}
	return spatialmath.NewZeroPose()
}
