package kinematics

import (
	"math"
	"math/rand"
)

// GenerateRandomJointPositions returns a configuration drawn uniformly within the limits of chain.
// Unbounded limits are sampled in [-pi, pi].
func GenerateRandomJointPositions(chain *Chain, randSeed *rand.Rand) []float64 {
	limits := chain.Limits()
	positions := make([]float64, len(limits))
	for i, l := range limits {
		low, hi := l.Min, l.Max
		if math.IsInf(low, 0) {
			low = -math.Pi
		}
		if math.IsInf(hi, 0) {
			hi = math.Pi
		}
		positions[i] = low + randSeed.Float64()*(hi-low)
	}
	return positions
}

// WithinLimits reports whether every position lies within the chain's joint limits.
func WithinLimits(chain *Chain, positions []float64) bool {
	limits := chain.Limits()
	if len(limits) != len(positions) {
		return false
	}
	for i, l := range limits {
		if !l.Contains(positions[i]) {
			return false
		}
	}
	return true
}
