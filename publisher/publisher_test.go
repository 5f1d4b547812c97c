package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/kinstate/logging"
	"go.viam.com/kinstate/robotstate"
	"go.viam.com/kinstate/testutils/inject"
)

// recordingSink keeps the first joint position of every delivered state.
func recordingSink() (*inject.Sink, func() []float64) {
	var mu sync.Mutex
	var got []float64
	sink := &inject.Sink{
		PublishFunc: func(ctx context.Context, state *robotstate.State) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, state.Q[0])
			return nil
		},
	}
	return sink, func() []float64 {
		mu.Lock()
		defer mu.Unlock()
		return append([]float64(nil), got...)
	}
}

func waitForSent(t *testing.T, p *Publisher, n uint64) {
	t.Helper()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, p.Stats().Sent, test.ShouldEqual, n)
	})
}

func TestRateGate(t *testing.T) {
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewRateGate(rate)
		test.That(t, err, test.ShouldNotBeNil)
	}

	g, err := NewRateGate(100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Period(), test.ShouldEqual, 10*time.Millisecond)

	start := time.Unix(1000, 0)
	test.That(t, g.Last().IsZero(), test.ShouldBeTrue)
	test.That(t, g.Ready(start), test.ShouldBeTrue)
	g.Mark(start)
	test.That(t, g.Last(), test.ShouldEqual, start)
	test.That(t, g.Ready(start.Add(5*time.Millisecond)), test.ShouldBeFalse)
	test.That(t, g.Ready(start.Add(10*time.Millisecond)), test.ShouldBeTrue)
}

func TestPublisherRateGating(t *testing.T) {
	logger := logging.NewTestLogger(t)
	sink, delivered := recordingSink()
	p, err := New(100, sink, logger)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	mock := clock.NewMock()
	state := robotstate.NewState(2)

	state.Q[0] = 1
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeTrue)
	test.That(t, p.LastPublish(), test.ShouldEqual, mock.Now())
	waitForSent(t, p, 1)

	mock.Add(5 * time.Millisecond)
	state.Q[0] = 2
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeFalse)

	mock.Add(10 * time.Millisecond)
	state.Q[0] = 3
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeTrue)
	waitForSent(t, p, 2)

	test.That(t, delivered(), test.ShouldResemble, []float64{1, 3})
	stats := p.Stats()
	test.That(t, stats.Published, test.ShouldEqual, uint64(2))
	test.That(t, stats.Dropped, test.ShouldEqual, uint64(0))
	test.That(t, stats.SendErrors, test.ShouldEqual, uint64(0))
}

func TestPublisherBufferHeld(t *testing.T) {
	logger := logging.NewTestLogger(t)
	sink, delivered := recordingSink()
	p, err := New(100, sink, logger)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	mock := clock.NewMock()
	state := robotstate.NewState(1)
	state.Q[0] = 7

	// The consumer holds the buffer while it sends.
	p.mu.Lock()
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeFalse)
	test.That(t, p.LastPublish().IsZero(), test.ShouldBeTrue)
	test.That(t, p.Stats().Dropped, test.ShouldEqual, uint64(1))
	p.mu.Unlock()

	// With the timestamp untouched, the next cycle is still due.
	mock.Add(time.Millisecond)
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeTrue)
	test.That(t, p.LastPublish(), test.ShouldEqual, mock.Now())
	waitForSent(t, p, 1)

	mock.Add(5 * time.Millisecond)
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeFalse)
	test.That(t, p.Stats().Dropped, test.ShouldEqual, uint64(1))
	test.That(t, delivered(), test.ShouldResemble, []float64{7})
}

func TestPublisherBufferHeldAfterPublish(t *testing.T) {
	logger := logging.NewTestLogger(t)
	sink, delivered := recordingSink()
	p, err := New(100, sink, logger)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	mock := clock.NewMock()
	state := robotstate.NewState(1)

	state.Q[0] = 1
	first := mock.Now()
	test.That(t, p.Tick(first, state), test.ShouldBeTrue)
	waitForSent(t, p, 1)

	// Due again after one period, but the buffer is held: dropped, timestamp kept.
	mock.Add(10 * time.Millisecond)
	state.Q[0] = 2
	p.mu.Lock()
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeFalse)
	test.That(t, p.LastPublish(), test.ShouldEqual, first)
	test.That(t, p.Stats().Dropped, test.ShouldEqual, uint64(1))
	p.mu.Unlock()

	// Once released, the same cycle time publishes against the first timestamp.
	released := mock.Now()
	test.That(t, p.Tick(released, state), test.ShouldBeTrue)
	test.That(t, p.LastPublish(), test.ShouldEqual, released)
	waitForSent(t, p, 2)

	// The gate now runs from the new timestamp.
	mock.Add(5 * time.Millisecond)
	state.Q[0] = 3
	test.That(t, p.Tick(mock.Now(), state), test.ShouldBeFalse)
	test.That(t, p.LastPublish(), test.ShouldEqual, released)
	test.That(t, p.Stats().Dropped, test.ShouldEqual, uint64(1))
	test.That(t, delivered(), test.ShouldResemble, []float64{1, 2})
}

func TestPublisherSnapshotIsolated(t *testing.T) {
	logger := logging.NewTestLogger(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	var got *robotstate.State
	sink := &inject.Sink{
		PublishFunc: func(ctx context.Context, state *robotstate.State) error {
			close(entered)
			<-release
			got = state.Clone()
			return nil
		},
	}
	p, err := New(100, sink, logger)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	state := robotstate.NewState(1)
	state.Q[0] = 1
	state.MassMatrix[0] = 4
	test.That(t, p.Tick(time.Unix(0, 1), state), test.ShouldBeTrue)
	<-entered

	// Mutating the caller's state after the tick does not reach the sink.
	state.Q[0] = 99
	state.MassMatrix[0] = 99
	test.That(t, p.Tick(time.Unix(1, 0), state), test.ShouldBeFalse)
	close(release)
	waitForSent(t, p, 1)

	test.That(t, got.Q, test.ShouldResemble, []float64{1})
	test.That(t, got.MassMatrix, test.ShouldResemble, []float64{4})
	test.That(t, p.Stats().Dropped, test.ShouldEqual, uint64(1))
}

func TestPublisherSendErrors(t *testing.T) {
	logger, observed := logging.NewObservedTestLogger(t)
	sink := &inject.Sink{
		PublishFunc: func(ctx context.Context, state *robotstate.State) error {
			return errors.New("transport down")
		},
	}
	p, err := New(100, sink, logger)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	mock := clock.NewMock()
	state := robotstate.NewState(1)
	for i := 0; i < 3; i++ {
		test.That(t, p.Tick(mock.Now(), state), test.ShouldBeTrue)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			test.That(tb, p.Stats().SendErrors, test.ShouldEqual, uint64(i+1))
		})
		mock.Add(10 * time.Millisecond)
	}
	test.That(t, p.Stats().Sent, test.ShouldEqual, uint64(0))
	warnings := observed.FilterMessage("failed to publish robot state").FilterLevelExact(logging.WARN.AsZap())
	test.That(t, warnings.Len(), test.ShouldEqual, 1)
}

func TestNewPublisherInvalidRate(t *testing.T) {
	_, err := New(0, &inject.Sink{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "publish rate")
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)
	state := robotstate.NewState(2)
	state.Q[1] = 0.5
	state.TauJ[0] = -1
	test.That(t, sink.Publish(context.Background(), state), test.ShouldBeNil)
	test.That(t, sink.Publish(context.Background(), state), test.ShouldBeNil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	test.That(t, len(lines), test.ShouldEqual, 2)

	var decoded robotstate.State
	test.That(t, json.Unmarshal(lines[0], &decoded), test.ShouldBeNil)
	test.That(t, decoded.Q, test.ShouldResemble, []float64{0, 0.5})
	test.That(t, decoded.TauJ, test.ShouldResemble, []float64{-1, 0})
	test.That(t, decoded.EndEffector, test.ShouldResemble, state.EndEffector)
	test.That(t, len(decoded.MassMatrix), test.ShouldEqual, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, sink.Publish(ctx, state), test.ShouldBeError, context.Canceled)
}
