// Package fake implements a joint source that replays smooth sinusoidal motion.
package fake

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/kinstate/referenceframe"
)

// JointSource moves every joint sinusoidally about the middle of its limits. Positions and
// velocities are exact derivatives of each other; efforts are always zero.
type JointSource struct {
	mu         sync.Mutex
	clk        clock.Clock
	start      time.Time
	centers    []float64
	amplitudes []float64
	frequency  float64

	positions, velocities, efforts []float64
}

// NewJointSource returns a source for joints with the given limits. frequencyHz sets how fast
// the joints oscillate.
func NewJointSource(limits []referenceframe.Limit, frequencyHz float64, clk clock.Clock) *JointSource {
	n := len(limits)
	src := &JointSource{
		clk:        clk,
		start:      clk.Now(),
		centers:    make([]float64, n),
		amplitudes: make([]float64, n),
		frequency:  frequencyHz,
		positions:  make([]float64, n),
		velocities: make([]float64, n),
		efforts:    make([]float64, n),
	}
	for i, l := range limits {
		low, high := l.Min, l.Max
		if math.IsInf(low, 0) || math.IsInf(high, 0) {
			low, high = -math.Pi, math.Pi
		}
		src.centers[i] = (low + high) / 2
		// Stay clear of the limits.
		src.amplitudes[i] = 0.4 * (high - low)
	}
	return src
}

// JointStates returns the joint sample at the clock's current time.
func (src *JointSource) JointStates() (positions, velocities, efforts []float64) {
	src.mu.Lock()
	defer src.mu.Unlock()
	elapsed := src.clk.Since(src.start).Seconds()
	omega := 2 * math.Pi * src.frequency
	for i := range src.positions {
		// Stagger the joints so they do not move in lockstep.
		phase := omega*elapsed + float64(i)
		src.positions[i] = src.centers[i] + src.amplitudes[i]*math.Sin(phase)
		src.velocities[i] = src.amplitudes[i] * omega * math.Cos(phase)
	}
	return src.positions, src.velocities, src.efforts
}
