package inject

import (
	"context"

	"go.viam.com/kinstate/robotstate"
)

// Sink is an injected robot state sink.
type Sink struct {
	PublishFunc func(ctx context.Context, state *robotstate.State) error
}

// Publish calls the injected Publish or discards the state.
func (s *Sink) Publish(ctx context.Context, state *robotstate.State) error {
	if s.PublishFunc == nil {
		return nil
	}
	return s.PublishFunc(ctx, state)
}
