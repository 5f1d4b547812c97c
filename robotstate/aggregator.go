package robotstate

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinstate/config"
	"go.viam.com/kinstate/kinematics"
	"go.viam.com/kinstate/logging"
	"go.viam.com/kinstate/spatialmath"
)

// The derived terms, in the order they are computed each cycle.
const (
	termJacobian    = "jacobian"
	termEndEffector = "end_effector"
	termCoriolis    = "coriolis"
	termGravity     = "gravity"
	termMass        = "mass_matrix"
)

// Aggregator owns the robot state of one chain and updates it from joint samples. It is driven
// from a single goroutine: joint arrays are copied first, then each enabled term is solved in
// sequence, so no term ever sees a half written sample.
type Aggregator struct {
	chain  *kinematics.Chain
	solver *kinematics.ChainSolver
	flags  config.Flags
	logger logging.Logger

	state *State

	// scratch destinations, copied into state only when a solve succeeds
	jacobian *mat.Dense
	mass     *mat.SymDense
	gravity  []float64
	coriolis []float64

	failing map[string]bool
}

// NewAggregator builds an aggregator for the chain of tip, which must already be in the registry.
func NewAggregator(registry *kinematics.Registry, tip string, flags config.Flags, logger logging.Logger) (*Aggregator, error) {
	chain, solver, err := registry.Get(tip)
	if err != nil {
		return nil, err
	}
	n := chain.NumJoints()
	return &Aggregator{
		chain:    chain,
		solver:   solver,
		flags:    flags,
		logger:   logger,
		state:    NewState(n),
		jacobian: mat.NewDense(6, n, nil),
		mass:     mat.NewSymDense(n, nil),
		gravity:  make([]float64, n),
		coriolis: make([]float64, n),
		failing:  map[string]bool{},
	}, nil
}

// Chain returns the chain the aggregator solves.
func (a *Aggregator) Chain() *kinematics.Chain {
	return a.chain
}

// Flags returns the enable switches.
func (a *Aggregator) Flags() config.Flags {
	return a.flags
}

// UpdateJointArrays copies a joint sample into the state. A sample whose lengths differ from the
// chain's joint count is rejected and the state is left untouched.
func (a *Aggregator) UpdateJointArrays(positions, velocities, efforts []float64) error {
	n := a.chain.NumJoints()
	if len(positions) != n || len(velocities) != n || len(efforts) != n {
		return errors.Wrapf(ErrJointCountMismatch,
			"got %d positions, %d velocities and %d efforts for %d joints %v",
			len(positions), len(velocities), len(efforts), n, a.chain.JointNames())
	}
	copy(a.state.Q, positions)
	copy(a.state.DQ, velocities)
	copy(a.state.TauJ, efforts)
	return nil
}

// UpdateDerivedTerms solves every enabled term at the current joint sample. A term that fails to
// solve keeps its previous value; the failure is logged and the remaining terms still run.
func (a *Aggregator) UpdateDerivedTerms() {
	q, dq := a.state.Q, a.state.DQ

	if a.flags.StateEnabled {
		a.record(termJacobian, a.updateJacobian(q))
		a.record(termEndEffector, a.updateEndEffector(q))
	}
	if a.flags.CoriolisEnabled {
		a.record(termCoriolis, a.updateVector(a.state.Coriolis, a.coriolis, func() error {
			return a.solver.CoriolisTo(a.coriolis, q, dq)
		}))
	}
	if a.flags.GravityEnabled {
		a.record(termGravity, a.updateVector(a.state.Gravity, a.gravity, func() error {
			return a.solver.GravityTo(a.gravity, q)
		}))
	}
	if a.flags.MassEnabled {
		a.record(termMass, a.updateMassMatrix(q))
	}
}

func (a *Aggregator) updateJacobian(q []float64) error {
	if err := a.solver.JacobianTo(a.jacobian, q); err != nil {
		return err
	}
	n := a.chain.NumJoints()
	for r := 0; r < 6; r++ {
		mat.Row(a.state.Jacobian[r*n:(r+1)*n], r, a.jacobian)
	}
	return nil
}

func (a *Aggregator) updateEndEffector(q []float64) error {
	pose, err := a.solver.ForwardPosition(q)
	if err != nil {
		return err
	}
	a.state.EndEffector = spatialmath.PoseToHomogeneous(pose)
	return nil
}

func (a *Aggregator) updateVector(dst, scratch []float64, solve func() error) error {
	if err := solve(); err != nil {
		return err
	}
	copy(dst, scratch)
	return nil
}

func (a *Aggregator) updateMassMatrix(q []float64) error {
	if err := a.solver.MassMatrixTo(a.mass, q); err != nil {
		return err
	}
	n := a.chain.NumJoints()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			a.state.MassMatrix[r*n+c] = a.mass.At(r, c)
		}
	}
	return nil
}

// record logs the first failure of a term as a warning and repeats at debug until it recovers.
func (a *Aggregator) record(term string, err error) {
	if err == nil {
		if a.failing[term] {
			a.logger.Infow("derived term recovered", "term", term)
			delete(a.failing, term)
		}
		return
	}
	if a.failing[term] {
		a.logger.Debugw("derived term still failing, keeping previous value", "term", term, "error", err)
		return
	}
	a.failing[term] = true
	a.logger.Warnw("failed to solve derived term, keeping previous value", "term", term, "error", err)
}

// State returns the live state. It is only valid until the next update and must not be modified.
func (a *Aggregator) State() *State {
	return a.state
}
