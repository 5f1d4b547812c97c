package referenceframe

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoPath is returned when no segment path connects two frames of a tree.
	ErrNoPath = errors.New("no path between frames")
	// ErrFrameMissing is returned when a frame is not part of a tree.
	ErrFrameMissing = errors.New("frame missing from tree")
	// ErrNoModelInformation is used when there is no model information.
	ErrNoModelInformation = errors.New("no model information")
)

// NewFrameMissingError returns an error indicating that the given frame is missing from the tree.
func NewFrameMissingError(frameName string) error {
	return errors.Wrapf(ErrFrameMissing, "frame with name %q", frameName)
}

// NewParentFrameMissingError returns an error indicating that the parent frame of a segment is missing.
func NewParentFrameMissingError(frameName, parentName string) error {
	return errors.Wrapf(ErrFrameMissing, "parent frame %q of frame %q", parentName, frameName)
}

// NewFrameAlreadyExistsError returns an error indicating that a frame of the given name already exists.
func NewFrameAlreadyExistsError(frameName string) error {
	return errors.Errorf("frame with name %q already exists in tree", frameName)
}

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not match
// the degrees of freedom of the chain it is applied to.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of dof mismatch: got %d, expected %d", actual, expected)
}

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}
