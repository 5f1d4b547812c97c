// Package robotstate aggregates joint samples and the derived kinematic and dynamic terms into a
// single coherent robot state snapshot.
package robotstate

import (
	"github.com/pkg/errors"
)

// ErrJointCountMismatch is returned when a joint sample does not match the chain's joint count.
var ErrJointCountMismatch = errors.New("joint count mismatch")

// State is one snapshot of the robot. Every field describes the same joint sample. Matrices are
// flattened row-major.
type State struct {
	Q    []float64 `json:"q"`
	DQ   []float64 `json:"dq"`
	TauJ []float64 `json:"tau_J"`
	// EndEffector is the 4x4 homogeneous pose of the tip frame in the root frame.
	EndEffector [16]float64 `json:"O_T_EE"`
	// Jacobian is the 6xN zero Jacobian.
	Jacobian   []float64 `json:"jacobian"`
	Gravity    []float64 `json:"gravity"`
	Coriolis   []float64 `json:"coriolis"`
	MassMatrix []float64 `json:"mass_matrix"`
}

// NewState allocates a state for n joints. The end effector starts as the identity.
func NewState(n int) *State {
	return &State{
		Q:           make([]float64, n),
		DQ:          make([]float64, n),
		TauJ:        make([]float64, n),
		EndEffector: identity4(),
		Jacobian:    make([]float64, 6*n),
		Gravity:     make([]float64, n),
		Coriolis:    make([]float64, n),
		MassMatrix:  make([]float64, n*n),
	}
}

func identity4() [16]float64 {
	return [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// NumJoints returns the joint count the state was allocated for.
func (s *State) NumJoints() int {
	return len(s.Q)
}

// CopyFrom copies every field of other into s, reusing s's storage when the sizes match.
func (s *State) CopyFrom(other *State) {
	s.Q = copyInto(s.Q, other.Q)
	s.DQ = copyInto(s.DQ, other.DQ)
	s.TauJ = copyInto(s.TauJ, other.TauJ)
	s.EndEffector = other.EndEffector
	s.Jacobian = copyInto(s.Jacobian, other.Jacobian)
	s.Gravity = copyInto(s.Gravity, other.Gravity)
	s.Coriolis = copyInto(s.Coriolis, other.Coriolis)
	s.MassMatrix = copyInto(s.MassMatrix, other.MassMatrix)
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	clone := &State{}
	clone.CopyFrom(s)
	return clone
}

func copyInto(dst, src []float64) []float64 {
	if len(dst) != len(src) {
		dst = make([]float64, len(src))
	}
	copy(dst, src)
	return dst
}
