package fake

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/kinstate/referenceframe"
)

func TestJointSourceStaysWithinLimits(t *testing.T) {
	mock := clock.NewMock()
	limits := []referenceframe.Limit{{Min: -1, Max: 1}, {Min: 0, Max: 3}, referenceframe.UnboundedLimit()}
	src := NewJointSource(limits, 0.5, mock)

	for i := 0; i < 200; i++ {
		pos, vel, eff := src.JointStates()
		test.That(t, len(pos), test.ShouldEqual, 3)
		test.That(t, len(vel), test.ShouldEqual, 3)
		test.That(t, eff, test.ShouldResemble, []float64{0, 0, 0})
		for j, l := range limits {
			test.That(t, l.Contains(pos[j]), test.ShouldBeTrue)
		}
		mock.Add(13 * time.Millisecond)
	}
}

func TestJointSourceVelocityIsDerivative(t *testing.T) {
	mock := clock.NewMock()
	src := NewJointSource([]referenceframe.Limit{{Min: -1, Max: 1}}, 1, mock)
	mock.Add(100 * time.Millisecond)

	pos, vel, _ := src.JointStates()
	before, expectedVel := pos[0], vel[0]
	mock.Add(time.Microsecond)
	pos, _, _ = src.JointStates()
	test.That(t, (pos[0]-before)/1e-6, test.ShouldAlmostEqual, expectedVel, 1e-3)
	test.That(t, math.Abs(expectedVel), test.ShouldBeGreaterThan, 0)
}
