package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinstate/kinematics/spatial"
	"go.viam.com/kinstate/referenceframe"
	"go.viam.com/kinstate/spatialmath"
	"go.viam.com/kinstate/utils"
)

// DefaultGravity is standard gravity along -z of the root frame, in m/s^2.
var DefaultGravity = r3.Vector{Z: -9.81}

// body is the per segment data the dynamics recursions need, precomputed once per chain.
type body struct {
	segment  referenceframe.Segment
	inertia  spatial.RigidBodyInertia
	subspace spatial.MotionVector
	// index into joint vectors, -1 for segments without a degree of freedom
	joint int
}

// ChainSolver solves forward kinematics, the geometric Jacobian and the inverse dynamics terms of
// one chain. A solver holds no state between calls beyond its chain and may be shared.
type ChainSolver struct {
	chain   *Chain
	gravity mgl64.Vec3
	bodies  []body
}

// SolverOption configures a ChainSolver.
type SolverOption func(*ChainSolver)

// WithGravity sets the gravity vector, in root frame coordinates, used by Gravity.
func WithGravity(g r3.Vector) SolverOption {
	return func(cs *ChainSolver) {
		cs.gravity = spatial.VecFromR3(g)
	}
}

// NewChainSolver binds a solver to chain.
func NewChainSolver(chain *Chain, opts ...SolverOption) *ChainSolver {
	cs := &ChainSolver{chain: chain, gravity: spatial.VecFromR3(DefaultGravity)}
	for _, opt := range opts {
		opt(cs)
	}

	joint := 0
	for _, seg := range chain.segments {
		b := body{
			segment: seg,
			inertia: spatial.NewRigidBodyInertia(
				seg.Inertia.Mass,
				spatial.VecFromR3(seg.Inertia.CenterOfMass),
				seg.Inertia.Moment.Mat3(),
			),
			joint: -1,
		}
		// The joint axis is unchanged by the joint's own motion, so the motion subspace is
		// constant in the segment frame.
		switch seg.Joint.Type {
		case referenceframe.RevoluteJoint:
			b.subspace = spatial.MotionVector{Angular: spatial.VecFromR3(seg.Joint.Axis)}
			b.joint = joint
			joint++
		case referenceframe.PrismaticJoint:
			b.subspace = spatial.MotionVector{Linear: spatial.VecFromR3(seg.Joint.Axis)}
			b.joint = joint
			joint++
		case referenceframe.NoneJoint, referenceframe.FixedJoint, referenceframe.UnknownJoint:
		}
		cs.bodies = append(cs.bodies, b)
	}
	return cs
}

// Chain returns the chain the solver is bound to.
func (cs *ChainSolver) Chain() *Chain {
	return cs.chain
}

func (cs *ChainSolver) checkInputs(vectors ...[]float64) error {
	for _, v := range vectors {
		if len(v) != cs.chain.NumJoints() {
			return referenceframe.NewIncorrectDoFError(len(v), cs.chain.NumJoints())
		}
		if !utils.AllFinite(v...) {
			return errors.Wrap(ErrSolveFailure, "non-finite joint input")
		}
	}
	return nil
}

func (b *body) value(q []float64) float64 {
	if b.joint < 0 {
		return 0
	}
	return q[b.joint]
}

// segmentPoses returns the pose of every segment frame relative to its parent.
func (cs *ChainSolver) segmentPoses(q []float64) ([]spatialmath.Pose, error) {
	poses := make([]spatialmath.Pose, len(cs.bodies))
	for i := range cs.bodies {
		b := &cs.bodies[i]
		pose := b.segment.Transform(b.value(q))
		if !spatialmath.PoseIsFinite(pose) {
			return nil, errors.Wrapf(ErrSolveFailure, "segment %q transform is undefined", b.segment.Name)
		}
		poses[i] = pose
	}
	return poses, nil
}

func (cs *ChainSolver) segmentTransforms(q []float64) ([]spatial.Transform, error) {
	poses, err := cs.segmentPoses(q)
	if err != nil {
		return nil, err
	}
	transforms := make([]spatial.Transform, len(poses))
	for i, pose := range poses {
		transforms[i] = spatial.TransformFromPose(pose)
	}
	return transforms, nil
}

// ForwardPosition returns the pose of the tip frame in the root frame at configuration q.
func (cs *ChainSolver) ForwardPosition(q []float64) (spatialmath.Pose, error) {
	if err := cs.checkInputs(q); err != nil {
		return nil, err
	}
	poses, err := cs.segmentPoses(q)
	if err != nil {
		return nil, err
	}
	result := spatialmath.NewZeroPose()
	for _, pose := range poses {
		result = spatialmath.Compose(result, pose)
	}
	if !spatialmath.PoseIsFinite(result) {
		return nil, errors.Wrap(ErrSolveFailure, "tip pose is undefined")
	}
	return result, nil
}

// Jacobian returns the 6xN geometric Jacobian at q. Rows 0-2 map joint velocities to the linear
// velocity of the tip origin and rows 3-5 to the angular velocity, both in root coordinates.
func (cs *ChainSolver) Jacobian(q []float64) (*mat.Dense, error) {
	dst := mat.NewDense(6, cs.chain.NumJoints(), nil)
	if err := cs.JacobianTo(dst, q); err != nil {
		return nil, err
	}
	return dst, nil
}

// JacobianTo writes the Jacobian at q into dst, which must be 6xN. dst is only written on success.
func (cs *ChainSolver) JacobianTo(dst *mat.Dense, q []float64) error {
	if r, c := dst.Dims(); r != 6 || c != cs.chain.NumJoints() {
		return errors.Errorf("jacobian destination is %dx%d, expected 6x%d", r, c, cs.chain.NumJoints())
	}
	if err := cs.checkInputs(q); err != nil {
		return err
	}
	poses, err := cs.segmentPoses(q)
	if err != nil {
		return err
	}

	type jointFrame struct {
		axis  r3.Vector
		point r3.Vector
		kind  referenceframe.JointType
	}
	frames := make([]jointFrame, 0, cs.chain.NumJoints())
	current := spatialmath.NewZeroPose()
	for i := range cs.bodies {
		b := &cs.bodies[i]
		if b.joint >= 0 {
			// The joint sits at the parent pose composed with the fixed origin, before any motion.
			origin := b.segment.Origin
			if origin == nil {
				origin = spatialmath.NewZeroPose()
			}
			jointPose := spatialmath.Compose(current, origin)
			frames = append(frames, jointFrame{
				axis:  jointPose.Orientation().RotationMatrix().Mul(b.segment.Joint.Axis),
				point: jointPose.Point(),
				kind:  b.segment.Joint.Type,
			})
		}
		current = spatialmath.Compose(current, poses[i])
	}

	tip := current.Point()
	cols := make([][6]float64, len(frames))
	for i, f := range frames {
		var linear, angular r3.Vector
		if f.kind == referenceframe.RevoluteJoint {
			linear = f.axis.Cross(tip.Sub(f.point))
			angular = f.axis
		} else {
			linear = f.axis
		}
		cols[i] = [6]float64{linear.X, linear.Y, linear.Z, angular.X, angular.Y, angular.Z}
		if !utils.AllFinite(cols[i][:]...) {
			return errors.Wrap(ErrSolveFailure, "jacobian is undefined")
		}
	}
	for c, col := range cols {
		for r, v := range col {
			dst.Set(r, c, v)
		}
	}
	return nil
}

// Gravity returns the joint torques that balance gravity at q.
func (cs *ChainSolver) Gravity(q []float64) ([]float64, error) {
	dst := make([]float64, cs.chain.NumJoints())
	if err := cs.GravityTo(dst, q); err != nil {
		return nil, err
	}
	return dst, nil
}

// GravityTo writes the gravity torques at q into dst. dst is only written on success.
func (cs *ChainSolver) GravityTo(dst, q []float64) error {
	if err := cs.checkInputs(q, dst); err != nil {
		return err
	}
	return cs.inverseDynamics(dst, q, make([]float64, len(q)), cs.gravity)
}

// Coriolis returns the Coriolis and centrifugal joint torques at q moving with velocity dq.
func (cs *ChainSolver) Coriolis(q, dq []float64) ([]float64, error) {
	dst := make([]float64, cs.chain.NumJoints())
	if err := cs.CoriolisTo(dst, q, dq); err != nil {
		return nil, err
	}
	return dst, nil
}

// CoriolisTo writes the Coriolis torques into dst. dst is only written on success.
func (cs *ChainSolver) CoriolisTo(dst, q, dq []float64) error {
	if err := cs.checkInputs(q, dq, dst); err != nil {
		return err
	}
	return cs.inverseDynamics(dst, q, dq, mgl64.Vec3{})
}

// inverseDynamics is the recursive Newton-Euler algorithm with zero joint acceleration. Gravity
// enters as an upward acceleration of the root.
func (cs *ChainSolver) inverseDynamics(dst, q, dq []float64, gravity mgl64.Vec3) error {
	transforms, err := cs.segmentTransforms(q)
	if err != nil {
		return err
	}

	n := len(cs.bodies)
	forces := make([]spatial.ForceVector, n)
	var vel spatial.MotionVector
	acc := spatial.MotionVector{Linear: gravity.Mul(-1)}
	for i := range cs.bodies {
		b := &cs.bodies[i]
		jointVel := b.subspace.Scale(b.value(dq))
		vel = transforms[i].ToChild(vel).Add(jointVel)
		acc = transforms[i].ToChild(acc).Add(vel.CrossMotion(jointVel))
		forces[i] = b.inertia.Apply(acc).Add(vel.Cross(b.inertia.Apply(vel)))
	}

	torques := make([]float64, len(dst))
	for i := n - 1; i >= 0; i-- {
		b := &cs.bodies[i]
		if b.joint >= 0 {
			torques[b.joint] = b.subspace.Dot(forces[i])
		}
		if i > 0 {
			forces[i-1] = forces[i-1].Add(transforms[i].ToParentForce(forces[i]))
		}
	}
	if !utils.AllFinite(torques...) {
		return errors.Wrap(ErrSolveFailure, "inverse dynamics is undefined")
	}
	copy(dst, torques)
	return nil
}

// MassMatrix returns the NxN joint space inertia matrix at q.
func (cs *ChainSolver) MassMatrix(q []float64) (*mat.SymDense, error) {
	dst := mat.NewSymDense(cs.chain.NumJoints(), nil)
	if err := cs.MassMatrixTo(dst, q); err != nil {
		return nil, err
	}
	return dst, nil
}

// MassMatrixTo writes the mass matrix at q into dst, which must be NxN, using the composite rigid
// body algorithm. dst is only written on success.
func (cs *ChainSolver) MassMatrixTo(dst *mat.SymDense, q []float64) error {
	if dst.SymmetricDim() != cs.chain.NumJoints() {
		return referenceframe.NewIncorrectDoFError(dst.SymmetricDim(), cs.chain.NumJoints())
	}
	if err := cs.checkInputs(q); err != nil {
		return err
	}
	transforms, err := cs.segmentTransforms(q)
	if err != nil {
		return err
	}

	n := len(cs.bodies)
	composite := make([]spatial.RigidBodyInertia, n)
	for i := range cs.bodies {
		composite[i] = cs.bodies[i].inertia
	}
	for i := n - 1; i > 0; i-- {
		composite[i-1] = composite[i-1].Add(composite[i].ToParent(transforms[i]))
	}

	dof := cs.chain.NumJoints()
	h := make([]float64, dof*dof)
	for i := n - 1; i >= 0; i-- {
		bi := &cs.bodies[i]
		if bi.joint < 0 {
			continue
		}
		force := composite[i].Apply(bi.subspace)
		h[bi.joint*dof+bi.joint] = bi.subspace.Dot(force)
		for j := i; j > 0; {
			force = transforms[j].ToParentForce(force)
			j--
			if bj := &cs.bodies[j]; bj.joint >= 0 {
				v := bj.subspace.Dot(force)
				h[bi.joint*dof+bj.joint] = v
				h[bj.joint*dof+bi.joint] = v
			}
		}
	}
	if !utils.AllFinite(h...) {
		return errors.Wrap(ErrSolveFailure, "mass matrix is undefined")
	}
	for r := 0; r < dof; r++ {
		for c := r; c < dof; c++ {
			dst.SetSym(r, c, h[r*dof+c])
		}
	}
	return nil
}
