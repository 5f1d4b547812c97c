// Package kinematics builds kinematic chains from a tree and solves their forward kinematics,
// Jacobian and inverse dynamics terms.
package kinematics

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/kinstate/referenceframe"
)

// TreeProvider supplies the ordered root to tip segment path of a kinematic tree.
type TreeProvider interface {
	ChainBetween(root, tip string) ([]referenceframe.Segment, error)
}

// Chain is an immutable sequence of segments from a root frame to a tip frame. The order of
// JointNames is the joint index convention for every joint vector of the chain.
type Chain struct {
	root       string
	tip        string
	segments   []referenceframe.Segment
	jointNames []string
	limits     []referenceframe.Limit
}

// NewChain builds a chain from the root to tip segments. At least one segment must be actuated.
func NewChain(root, tip string, segments []referenceframe.Segment) (*Chain, error) {
	if len(segments) == 0 {
		return nil, errors.Errorf("chain from %q to %q has no segments", root, tip)
	}
	segs := append([]referenceframe.Segment(nil), segments...)
	actuated := lo.Filter(segs, func(s referenceframe.Segment, _ int) bool {
		return s.Joint.Type.IsActuated()
	})
	if len(actuated) == 0 {
		return nil, errors.Wrapf(ErrNoActuatedJoints, "chain from %q to %q", root, tip)
	}
	return &Chain{
		root:     root,
		tip:      tip,
		segments: segs,
		jointNames: lo.Map(actuated, func(s referenceframe.Segment, _ int) string {
			return s.Joint.Name
		}),
		limits: lo.Map(actuated, func(s referenceframe.Segment, _ int) referenceframe.Limit {
			return s.Joint.Limit
		}),
	}, nil
}

// Root returns the root frame name.
func (c *Chain) Root() string {
	return c.root
}

// Tip returns the tip frame name.
func (c *Chain) Tip() string {
	return c.tip
}

// Segments returns a copy of the ordered segments.
func (c *Chain) Segments() []referenceframe.Segment {
	return append([]referenceframe.Segment(nil), c.segments...)
}

// NumJoints returns the number of actuated joints.
func (c *Chain) NumJoints() int {
	return len(c.jointNames)
}

// JointNames returns the actuated joint names in traversal order.
func (c *Chain) JointNames() []string {
	return append([]string(nil), c.jointNames...)
}

// Limits returns the joint limits in joint order.
func (c *Chain) Limits() []referenceframe.Limit {
	return append([]referenceframe.Limit(nil), c.limits...)
}
