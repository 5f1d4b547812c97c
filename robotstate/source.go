package robotstate

// JointSource supplies one joint sample per cycle. The slices are ordered like the chain's
// actuated joints and are only read until the next call.
type JointSource interface {
	JointStates() (positions, velocities, efforts []float64)
}
