// Package publisher hands robot state snapshots to a sink at a bounded rate without ever blocking
// the control cycle. Updates that cannot be handed off are dropped, never queued.
package publisher

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// RateGate tracks the last publication and decides whether the next one is due.
type RateGate struct {
	period time.Duration
	last   time.Time
}

// NewRateGate returns a gate for rateHz publications per second.
func NewRateGate(rateHz float64) (*RateGate, error) {
	if math.IsNaN(rateHz) || math.IsInf(rateHz, 0) || rateHz <= 0 {
		return nil, errors.Errorf("publish rate must be a positive number, got %v", rateHz)
	}
	return &RateGate{period: time.Duration(float64(time.Second) / rateHz)}, nil
}

// Period returns the minimum interval between publications.
func (g *RateGate) Period() time.Duration {
	return g.period
}

// Ready reports whether a publication is due at now. Before the first publication it always is.
func (g *RateGate) Ready(now time.Time) bool {
	return g.last.IsZero() || now.Sub(g.last) >= g.period
}

// Mark records a publication at now.
func (g *RateGate) Mark(now time.Time) {
	g.last = now
}

// Last returns the time of the last recorded publication, zero if none.
func (g *RateGate) Last() time.Time {
	return g.last
}
