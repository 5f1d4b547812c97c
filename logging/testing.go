package logging

import (
	"sync"
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender writes through tb.Log so output is attributed to the running test. Entries that
// arrive after the test finished, e.g. from a background worker still shutting down, are dropped
// because tb.Log panics at that point.
type testAppender struct {
	tb testing.TB

	mu   sync.Mutex
	done bool
}

// NewTestAppender returns an appender logging to tb.
func NewTestAppender(tb testing.TB) Appender {
	tapp := &testAppender{tb: tb}
	tb.Cleanup(func() {
		tapp.mu.Lock()
		tapp.done = true
		tapp.mu.Unlock()
	})
	return tapp
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	tapp.mu.Lock()
	defer tapp.mu.Unlock()
	if !tapp.done {
		tapp.tb.Helper()
		tapp.tb.Log(line)
	}
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}
