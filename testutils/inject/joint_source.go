// Package inject provides injectable fakes for tests.
package inject

// JointSource is an injected joint sample source.
type JointSource struct {
	JointStatesFunc func() (positions, velocities, efforts []float64)
}

// JointStates calls the injected JointStates. Without one it reports no joints.
func (s *JointSource) JointStates() (positions, velocities, efforts []float64) {
	if s.JointStatesFunc == nil {
		return nil, nil, nil
	}
	return s.JointStatesFunc()
}
