// Package robothw is the hardware layer core: once per control cycle it reads a joint sample,
// refreshes the derived kinematic and dynamic terms and hands the state to the publisher.
package robothw

import (
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/kinstate/config"
	"go.viam.com/kinstate/kinematics"
	"go.viam.com/kinstate/logging"
	"go.viam.com/kinstate/publisher"
	"go.viam.com/kinstate/robotstate"
)

// RobotHW owns one chain's state and drives it from a joint source. Read is called by a single
// driver goroutine.
type RobotHW struct {
	conf   *config.Config
	clk    clock.Clock
	source robotstate.JointSource
	logger logging.Logger

	registry    *kinematics.Registry
	aggregator  *robotstate.Aggregator
	publisher   *publisher.Publisher
	modelHandle *robotstate.ModelHandle
	stateHandle *robotstate.StateHandle
}

// New validates conf, builds the root to tip chain from tree and starts the publisher. Any
// failure here is fatal; nothing is left running on error.
func New(
	conf *config.Config,
	tree kinematics.TreeProvider,
	source robotstate.JointSource,
	sink publisher.Sink,
	clk clock.Clock,
	logger logging.Logger,
) (*RobotHW, error) {
	if err := conf.Validate("robot_hw"); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, errors.New("no robot description given")
	}
	if source == nil {
		return nil, errors.New("no joint source given")
	}
	if sink == nil {
		return nil, errors.New("no publication sink given")
	}

	registry := kinematics.NewRegistry(tree, conf.RootName, logger.Sublogger("kinematics"),
		kinematics.WithGravity(conf.GravityVector()))
	if _, err := registry.CreateChain(conf.TipName); err != nil {
		return nil, errors.Wrap(err, "cannot build kinematic chain")
	}
	aggregator, err := robotstate.NewAggregator(registry, conf.TipName, conf.Flags(),
		logger.Sublogger("robotstate").With("tip", conf.TipName))
	if err != nil {
		return nil, err
	}
	pub, err := publisher.New(conf.PublishRate, sink, logger.Sublogger("publisher"))
	if err != nil {
		return nil, err
	}

	hw := &RobotHW{
		conf:        conf,
		clk:         clk,
		source:      source,
		logger:      logger,
		registry:    registry,
		aggregator:  aggregator,
		publisher:   pub,
		modelHandle: robotstate.NewModelHandle(conf.ModelHandleName(), aggregator),
		stateHandle: robotstate.NewStateHandle(conf.StateHandleName(), aggregator),
	}
	logger.Infow("robot hardware layer ready",
		"root", conf.RootName,
		"tip", conf.TipName,
		"joints", aggregator.Chain().JointNames(),
		"publish_rate", conf.PublishRate,
	)
	return hw, nil
}

// Read runs one control cycle. Only a bad joint sample is reported; solve failures keep the
// previous values and publish contention drops the update.
func (hw *RobotHW) Read() error {
	positions, velocities, efforts := hw.source.JointStates()
	if err := hw.aggregator.UpdateJointArrays(positions, velocities, efforts); err != nil {
		return err
	}
	hw.aggregator.UpdateDerivedTerms()
	if hw.conf.RobotStateNeeded {
		hw.publisher.Tick(hw.clk.Now(), hw.aggregator.State())
	}
	return nil
}

// JointNames returns the actuated joints in sample order.
func (hw *RobotHW) JointNames() []string {
	return hw.aggregator.Chain().JointNames()
}

// ModelHandle returns the handle exposing the dynamic model terms.
func (hw *RobotHW) ModelHandle() *robotstate.ModelHandle {
	return hw.modelHandle
}

// StateHandle returns the handle exposing the full robot state.
func (hw *RobotHW) StateHandle() *robotstate.StateHandle {
	return hw.stateHandle
}

// PublisherStats returns the publisher counters.
func (hw *RobotHW) PublisherStats() publisher.Stats {
	return hw.publisher.Stats()
}

// Close stops publishing.
func (hw *RobotHW) Close() error {
	hw.publisher.Close()
	return hw.logger.Sync()
}
