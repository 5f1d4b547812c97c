package kinematics

import "github.com/pkg/errors"

var (
	// ErrChainExists is returned when a chain for the requested tip was already created.
	ErrChainExists = errors.New("chain already exists")
	// ErrNoSuchPath is returned when the tree has no path from the root to the requested tip.
	ErrNoSuchPath = errors.New("no such path")
	// ErrChainNotFound is returned when no chain was created for the requested tip.
	ErrChainNotFound = errors.New("chain not found")
	// ErrSolveFailure is returned when a solve produces an undefined result.
	ErrSolveFailure = errors.New("solve failure")
	// ErrNoActuatedJoints is returned for chains with no degree of freedom.
	ErrNoActuatedJoints = errors.New("chain has no actuated joints")
)
