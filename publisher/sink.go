package publisher

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/kinstate/robotstate"
)

// Sink transports published states. Publish may block; it runs off the control cycle. The state
// is only valid for the duration of the call.
type Sink interface {
	Publish(ctx context.Context, state *robotstate.State) error
}

// WriterSink writes every state as one JSON line.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

// Publish encodes the state.
func (s *WriterSink) Publish(ctx context.Context, state *robotstate.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrap(s.enc.Encode(state), "failed to write robot state")
}
