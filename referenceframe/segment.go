package referenceframe

import (
	"go.viam.com/kinstate/spatialmath"
)

// Segment is a rigid body attached to its parent frame through a joint. Name is the frame at the
// distal end of the segment. Origin is the fixed transform from the parent frame to the joint,
// applied before the joint motion. Inertia is expressed in the segment frame.
type Segment struct {
	Name    string
	Joint   Joint
	Origin  spatialmath.Pose
	Inertia Inertia
}

// Transform returns the pose of the segment frame in its parent frame at joint value q.
func (s Segment) Transform(q float64) spatialmath.Pose {
	origin := s.Origin
	if origin == nil {
		origin = spatialmath.NewZeroPose()
	}
	if !s.Joint.Type.IsActuated() {
		return origin
	}
	return spatialmath.Compose(origin, s.Joint.Motion(q))
}
