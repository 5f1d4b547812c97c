package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinstate/referenceframe"
	"go.viam.com/kinstate/spatialmath"
	"go.viam.com/kinstate/utils"
)

func loadChain(t *testing.T, file, root, tip string) *Chain {
	t.Helper()
	tree, err := referenceframe.ParseURDFFile(utils.ResolveFile("referenceframe/testdata/" + file))
	test.That(t, err, test.ShouldBeNil)
	segs, err := tree.ChainBetween(root, tip)
	test.That(t, err, test.ShouldBeNil)
	chain, err := NewChain(root, tip, segs)
	test.That(t, err, test.ShouldBeNil)
	return chain
}

func planarChain(t *testing.T) *Chain {
	t.Helper()
	return loadChain(t, "planar2.urdf", "base", "tip")
}

func pandaChain(t *testing.T) *Chain {
	t.Helper()
	return loadChain(t, "panda.urdf", "panda_link0", "panda_link7")
}

func singleJointChain(t *testing.T, jt referenceframe.JointType, axis r3.Vector) *Chain {
	t.Helper()
	var joint referenceframe.Joint
	var err error
	if jt == referenceframe.RevoluteJoint {
		joint, err = referenceframe.NewRevoluteJoint("j", axis, referenceframe.UnboundedLimit())
	} else {
		joint, err = referenceframe.NewPrismaticJoint("j", axis, referenceframe.Limit{Min: -1, Max: 1})
	}
	test.That(t, err, test.ShouldBeNil)
	segs := []referenceframe.Segment{
		{Name: "l1", Joint: joint, Inertia: referenceframe.Inertia{
			Mass: 2, CenterOfMass: r3.Vector{X: 1}, Moment: referenceframe.RotationalInertia{XX: 0.01, YY: 0.01, ZZ: 0.01},
		}},
	}
	chain, err := NewChain("base", "l1", segs)
	test.That(t, err, test.ShouldBeNil)
	return chain
}

func TestChainJointNames(t *testing.T) {
	chain := planarChain(t)
	test.That(t, chain.Root(), test.ShouldEqual, "base")
	test.That(t, chain.Tip(), test.ShouldEqual, "tip")
	test.That(t, chain.NumJoints(), test.ShouldEqual, 2)
	test.That(t, chain.JointNames(), test.ShouldResemble, []string{"joint1", "joint2"})
	test.That(t, len(chain.Segments()), test.ShouldEqual, 3)

	panda := pandaChain(t)
	test.That(t, panda.NumJoints(), test.ShouldEqual, 7)
	test.That(t, panda.JointNames()[6], test.ShouldEqual, "panda_joint7")

	_, err := NewChain("a", "b", []referenceframe.Segment{{Name: "b", Joint: referenceframe.NewFixedJoint("f")}})
	test.That(t, errors.Is(err, ErrNoActuatedJoints), test.ShouldBeTrue)
	_, err = NewChain("a", "b", nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlanarForwardPosition(t *testing.T) {
	solver := NewChainSolver(planarChain(t))

	pose, err := solver.ForwardPosition([]float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 2}, 1e-9), test.ShouldBeTrue)

	pose, err = solver.ForwardPosition([]float64{math.Pi / 2, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{Y: 2}, 1e-9), test.ShouldBeTrue)

	pose, err = solver.ForwardPosition([]float64{0, math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 1, Y: 1}, 1e-9), test.ShouldBeTrue)
}

func TestPlanarJacobian(t *testing.T) {
	solver := NewChainSolver(planarChain(t))
	jac, err := solver.Jacobian([]float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	r, c := jac.Dims()
	test.That(t, r, test.ShouldEqual, 6)
	test.That(t, c, test.ShouldEqual, 2)

	expected := mat.NewDense(6, 2, []float64{
		0, 0,
		2, 1,
		0, 0,
		0, 0,
		0, 0,
		1, 1,
	})
	test.That(t, mat.EqualApprox(jac, expected, 1e-9), test.ShouldBeTrue)
}

func TestSingleJointJacobian(t *testing.T) {
	axis := r3.Vector{X: 0, Y: 0.6, Z: 0.8}

	rev := NewChainSolver(singleJointChain(t, referenceframe.RevoluteJoint, axis))
	jac, err := rev.Jacobian([]float64{0})
	test.That(t, err, test.ShouldBeNil)
	angular := mat.Col(nil, 0, jac.Slice(3, 6, 0, 1))
	test.That(t, floats.EqualApprox(angular, []float64{0, 0.6, 0.8}, 1e-12), test.ShouldBeTrue)
	// The tip is on the axis, so it does not translate.
	test.That(t, floats.Norm(mat.Col(nil, 0, jac.Slice(0, 3, 0, 1)), 2), test.ShouldAlmostEqual, 0.)

	pri := NewChainSolver(singleJointChain(t, referenceframe.PrismaticJoint, axis))
	jac, err = pri.Jacobian([]float64{0})
	test.That(t, err, test.ShouldBeNil)
	linear := mat.Col(nil, 0, jac.Slice(0, 3, 0, 1))
	test.That(t, floats.EqualApprox(linear, []float64{0, 0.6, 0.8}, 1e-12), test.ShouldBeTrue)
	test.That(t, floats.Norm(mat.Col(nil, 0, jac.Slice(3, 6, 0, 1)), 2), test.ShouldEqual, 0.)
}

func TestPlanarGravity(t *testing.T) {
	chain := planarChain(t)

	// Gravity along the joint axes produces no torque.
	g, err := NewChainSolver(chain).Gravity([]float64{0.3, -1.2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g[0], test.ShouldAlmostEqual, 0.)
	test.That(t, g[1], test.ShouldAlmostEqual, 0.)

	inPlane := NewChainSolver(chain, WithGravity(r3.Vector{Y: -9.81}))
	g, err = inPlane.Gravity([]float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g[0], test.ShouldAlmostEqual, 3*9.81)
	test.That(t, g[1], test.ShouldAlmostEqual, 9.81)

	// Pointing straight down there is no moment arm.
	g, err = inPlane.Gravity([]float64{-math.Pi / 2, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g[0], test.ShouldAlmostEqual, 0.)
	test.That(t, g[1], test.ShouldAlmostEqual, 0.)
}

func TestPendulumGravity(t *testing.T) {
	solver := NewChainSolver(singleJointChain(t, referenceframe.RevoluteJoint, r3.Vector{Z: 1}), WithGravity(r3.Vector{Y: -9.81}))
	for _, q := range []float64{0, 0.4, 1.3, -2.5} {
		g, err := solver.Gravity([]float64{q})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g[0], test.ShouldAlmostEqual, 2*9.81*math.Cos(q))
	}
}

func TestPlanarCoriolis(t *testing.T) {
	solver := NewChainSolver(planarChain(t))

	c, err := solver.Coriolis([]float64{0, math.Pi / 2}, []float64{1, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c[0], test.ShouldAlmostEqual, -3.)
	test.That(t, c[1], test.ShouldAlmostEqual, 1.)

	c, err = solver.Coriolis([]float64{0.5, 0.5}, []float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldResemble, []float64{0, 0})
}

func TestPlanarMassMatrix(t *testing.T) {
	solver := NewChainSolver(planarChain(t))

	m, err := solver.MassMatrix([]float64{0.7, 0})
	test.That(t, err, test.ShouldBeNil)
	expected := mat.NewSymDense(2, []float64{5.2, 2.1, 2.1, 1.1})
	test.That(t, mat.EqualApprox(m, expected, 1e-9), test.ShouldBeTrue)

	m, err = solver.MassMatrix([]float64{0, math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	expected = mat.NewSymDense(2, []float64{3.2, 1.1, 1.1, 1.1})
	test.That(t, mat.EqualApprox(m, expected, 1e-9), test.ShouldBeTrue)
}

func TestPandaProperties(t *testing.T) {
	chain := pandaChain(t)
	solver := NewChainSolver(chain)
	//nolint:gosec
	randSeed := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		q := GenerateRandomJointPositions(chain, randSeed)
		test.That(t, WithinLimits(chain, q), test.ShouldBeTrue)

		pose, err := solver.ForwardPosition(q)
		test.That(t, err, test.ShouldBeNil)
		h := spatialmath.PoseToHomogeneous(pose)
		rot := mat.NewDense(3, 3, []float64{h[0], h[1], h[2], h[4], h[5], h[6], h[8], h[9], h[10]})
		var rrt mat.Dense
		rrt.Mul(rot, rot.T())
		test.That(t, mat.EqualApprox(&rrt, mat.NewDiagDense(3, []float64{1, 1, 1}), 1e-9), test.ShouldBeTrue)
		test.That(t, mat.Det(rot), test.ShouldAlmostEqual, 1.)
		test.That(t, h[12:], test.ShouldResemble, []float64{0, 0, 0, 1})

		jac, err := solver.Jacobian(q)
		test.That(t, err, test.ShouldBeNil)
		r, c := jac.Dims()
		test.That(t, r, test.ShouldEqual, 6)
		test.That(t, c, test.ShouldEqual, 7)

		m, err := solver.MassMatrix(q)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mat.EqualApprox(m, m.T(), 1e-12), test.ShouldBeTrue)
		var chol mat.Cholesky
		test.That(t, chol.Factorize(m), test.ShouldBeTrue)
	}
}

func TestPandaJacobianMatchesFiniteDifference(t *testing.T) {
	chain := pandaChain(t)
	solver := NewChainSolver(chain)
	//nolint:gosec
	randSeed := rand.New(rand.NewSource(7))
	q := GenerateRandomJointPositions(chain, randSeed)

	jac, err := solver.Jacobian(q)
	test.That(t, err, test.ShouldBeNil)

	const eps = 1e-6
	for j := 0; j < chain.NumJoints(); j++ {
		plus := append([]float64(nil), q...)
		minus := append([]float64(nil), q...)
		plus[j] += eps
		minus[j] -= eps
		pPlus, err := solver.ForwardPosition(plus)
		test.That(t, err, test.ShouldBeNil)
		pMinus, err := solver.ForwardPosition(minus)
		test.That(t, err, test.ShouldBeNil)
		diff := pPlus.Point().Sub(pMinus.Point()).Mul(1 / (2 * eps))
		test.That(t, jac.At(0, j), test.ShouldAlmostEqual, diff.X, 1e-6)
		test.That(t, jac.At(1, j), test.ShouldAlmostEqual, diff.Y, 1e-6)
		test.That(t, jac.At(2, j), test.ShouldAlmostEqual, diff.Z, 1e-6)
	}
}

func TestPandaGravityMatchesPotential(t *testing.T) {
	chain := pandaChain(t)
	solver := NewChainSolver(chain)
	//nolint:gosec
	randSeed := rand.New(rand.NewSource(3))
	q := GenerateRandomJointPositions(chain, randSeed)

	// The gravity torque is the gradient of the potential energy m*g*z of every center of mass.
	potential := func(q []float64) float64 {
		var energy float64
		current := spatialmath.NewZeroPose()
		joint := 0
		for _, seg := range chain.Segments() {
			value := 0.
			if seg.Joint.Type.IsActuated() {
				value = q[joint]
				joint++
			}
			current = spatialmath.Compose(current, seg.Transform(value))
			com := spatialmath.Compose(current, spatialmath.NewPoseFromPoint(seg.Inertia.CenterOfMass)).Point()
			energy += seg.Inertia.Mass * 9.81 * com.Z
		}
		return energy
	}

	g, err := solver.Gravity(q)
	test.That(t, err, test.ShouldBeNil)
	const eps = 1e-6
	for j := range q {
		plus := append([]float64(nil), q...)
		minus := append([]float64(nil), q...)
		plus[j] += eps
		minus[j] -= eps
		test.That(t, g[j], test.ShouldAlmostEqual, (potential(plus)-potential(minus))/(2*eps), 1e-4)
	}
}

func TestPandaCoriolisPower(t *testing.T) {
	chain := pandaChain(t)
	solver := NewChainSolver(chain)
	//nolint:gosec
	randSeed := rand.New(rand.NewSource(11))
	q := GenerateRandomJointPositions(chain, randSeed)
	dq := make([]float64, len(q))
	for i := range dq {
		dq[i] = randSeed.Float64()*2 - 1
	}

	// dq . c(q, dq) equals half of dq^T Mdot dq.
	c, err := solver.Coriolis(q, dq)
	test.That(t, err, test.ShouldBeNil)

	const eps = 1e-6
	plus := append([]float64(nil), q...)
	minus := append([]float64(nil), q...)
	floats.AddScaled(plus, eps, dq)
	floats.AddScaled(minus, -eps, dq)
	mPlus, err := solver.MassMatrix(plus)
	test.That(t, err, test.ShouldBeNil)
	mMinus, err := solver.MassMatrix(minus)
	test.That(t, err, test.ShouldBeNil)
	var mDot mat.Dense
	mDot.Sub(mPlus, mMinus)
	mDot.Scale(1/(2*eps), &mDot)

	dqVec := mat.NewVecDense(len(dq), dq)
	test.That(t, floats.Dot(dq, c), test.ShouldAlmostEqual, 0.5*mat.Inner(dqVec, &mDot, dqVec), 1e-4)
}

func TestSolverErrors(t *testing.T) {
	solver := NewChainSolver(planarChain(t))

	_, err := solver.ForwardPosition([]float64{0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "number of dof mismatch")

	_, err = solver.Jacobian([]float64{math.NaN(), 0})
	test.That(t, errors.Is(err, ErrSolveFailure), test.ShouldBeTrue)

	_, err = solver.Coriolis([]float64{0, 0}, []float64{0, math.Inf(1)})
	test.That(t, errors.Is(err, ErrSolveFailure), test.ShouldBeTrue)

	err = solver.JacobianTo(mat.NewDense(3, 2, nil), []float64{0, 0})
	test.That(t, err, test.ShouldNotBeNil)

	err = solver.MassMatrixTo(mat.NewSymDense(3, nil), []float64{0, 0})
	test.That(t, err, test.ShouldNotBeNil)

	dst := []float64{42, 42}
	err = solver.GravityTo(dst, []float64{0, math.NaN()})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, dst, test.ShouldResemble, []float64{42, 42})
}

func TestUndefinedSegmentTransform(t *testing.T) {
	joint, err := referenceframe.NewRevoluteJoint("j", r3.Vector{Z: 1}, referenceframe.UnboundedLimit())
	test.That(t, err, test.ShouldBeNil)
	segs := []referenceframe.Segment{
		{Name: "l1", Joint: joint, Origin: spatialmath.NewPoseFromPoint(r3.Vector{X: math.NaN()})},
	}
	chain, err := NewChain("base", "l1", segs)
	test.That(t, err, test.ShouldBeNil)
	solver := NewChainSolver(chain)

	_, err = solver.ForwardPosition([]float64{0})
	test.That(t, errors.Is(err, ErrSolveFailure), test.ShouldBeTrue)
	_, err = solver.MassMatrix([]float64{0})
	test.That(t, errors.Is(err, ErrSolveFailure), test.ShouldBeTrue)
	_, err = solver.Gravity([]float64{0})
	test.That(t, errors.Is(err, ErrSolveFailure), test.ShouldBeTrue)
}
