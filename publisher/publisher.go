package publisher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"go.viam.com/kinstate/logging"
	"go.viam.com/kinstate/robotstate"
	"go.viam.com/kinstate/utils"
)

// Stats are the publisher counters.
type Stats struct {
	// Published counts snapshots handed to the consumer.
	Published uint64
	// Dropped counts due ticks skipped because the consumer held the buffer.
	Dropped uint64
	// Sent counts successful sink publications.
	Sent uint64
	// SendErrors counts failed sink publications.
	SendErrors uint64
}

// Publisher owns the outgoing buffer. Tick runs on the control cycle; a single consumer goroutine
// holds the buffer while the sink sends it. A snapshot the consumer has not picked up yet is
// overwritten by the next one.
type Publisher struct {
	gate   *RateGate
	sink   Sink
	logger logging.Logger

	mu  sync.Mutex
	msg robotstate.State

	notify  chan struct{}
	workers *utils.StoppableWorkers

	published  atomic.Uint64
	dropped    atomic.Uint64
	sent       atomic.Uint64
	sendErrors atomic.Uint64
}

// New starts a publisher delivering to sink at most rateHz times per second.
func New(rateHz float64, sink Sink, logger logging.Logger) (*Publisher, error) {
	gate, err := NewRateGate(rateHz)
	if err != nil {
		return nil, err
	}
	p := &Publisher{
		gate:   gate,
		sink:   sink,
		logger: logger,
		notify: make(chan struct{}, 1),
	}
	p.workers = utils.NewStoppableWorkers(p.consume)
	return p, nil
}

// Tick publishes state if a publication is due at now and the buffer is free. It never blocks. A
// tick that finds the buffer held returns false and leaves the last publication time unchanged so
// the next cycle tries again.
func (p *Publisher) Tick(now time.Time, state *robotstate.State) bool {
	if !p.gate.Ready(now) {
		return false
	}
	if !p.mu.TryLock() {
		p.dropped.Inc()
		return false
	}
	p.msg.CopyFrom(state)
	p.mu.Unlock()

	p.gate.Mark(now)
	select {
	case p.notify <- struct{}{}:
	default:
		// The consumer has a wakeup pending and will send the newest buffer.
	}
	p.published.Inc()
	return true
}

func (p *Publisher) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.notify:
		}

		p.mu.Lock()
		err := p.sink.Publish(ctx, &p.msg)
		p.mu.Unlock()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if p.sendErrors.Inc() == 1 {
				p.logger.Warnw("failed to publish robot state", "error", err)
			} else {
				p.logger.Debugw("failed to publish robot state", "error", err)
			}
			continue
		}
		p.sent.Inc()
	}
}

// LastPublish returns the time of the last successful tick, zero if none. It must be called from
// the goroutine that calls Tick.
func (p *Publisher) LastPublish() time.Time {
	return p.gate.Last()
}

// Period returns the minimum interval between publications.
func (p *Publisher) Period() time.Duration {
	return p.gate.Period()
}

// Stats returns a snapshot of the counters. It is safe to call from any goroutine.
func (p *Publisher) Stats() Stats {
	return Stats{
		Published:  p.published.Load(),
		Dropped:    p.dropped.Load(),
		Sent:       p.sent.Load(),
		SendErrors: p.sendErrors.Load(),
	}
}

// Close stops the consumer, waiting for an in flight send to return.
func (p *Publisher) Close() {
	p.workers.Stop()
}
