package inject

import (
	"github.com/pkg/errors"

	"go.viam.com/kinstate/referenceframe"
)

// TreeProvider is an injected kinematic tree.
type TreeProvider struct {
	ChainBetweenFunc func(root, tip string) ([]referenceframe.Segment, error)
}

// ChainBetween calls the injected ChainBetween. Without one no path exists.
func (tp *TreeProvider) ChainBetween(root, tip string) ([]referenceframe.Segment, error) {
	if tp.ChainBetweenFunc == nil {
		return nil, errors.Wrapf(referenceframe.ErrNoPath, "from %q to %q", root, tip)
	}
	return tp.ChainBetweenFunc(root, tip)
}
